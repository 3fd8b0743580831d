// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Virtuoso Contributors

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/virtuoso-music/identity/pkg/errutil"
)

func TestConnect_InvalidDSN(t *testing.T) {
	_, err := Connect(context.Background(), "://not-a-dsn")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "DB_CONFIG_INVALID")
}

func TestConnect_UnreachableDatabase(t *testing.T) {
	// Canceling the context short-circuits the retry loop so the test does
	// not sit through the full backoff schedule.
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := Connect(ctx, "postgres://127.0.0.1:1/identity")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "DB_CONNECT_FAILED")
}
