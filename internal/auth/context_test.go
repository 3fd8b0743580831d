// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Virtuoso Contributors

package auth_test

import (
	"context"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virtuoso-music/identity/internal/auth"
)

func TestIdentityContext(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		want := auth.Identity{
			AccountID: ulid.Make(),
			Username:  "melody",
			Email:     "melody@example.com",
		}
		ctx := auth.WithIdentity(context.Background(), want)

		got, ok := auth.IdentityFrom(ctx)
		require.True(t, ok)
		assert.Equal(t, want, got)
	})

	t.Run("absent identity never authenticates", func(t *testing.T) {
		_, ok := auth.IdentityFrom(context.Background())
		assert.False(t, ok)
	})
}
