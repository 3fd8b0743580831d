// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Virtuoso Contributors

package auth

import (
	"context"

	"github.com/oklog/ulid/v2"
)

// Identity is the verified, signature-checked claim set attached to a single
// in-flight request. It is scoped to that request only and never persisted.
type Identity struct {
	AccountID ulid.ULID
	Username  string
	Email     string
}

type identityKey struct{}

// WithIdentity returns a context carrying the verified identity. Only the
// authentication gate populates this; downstream logic must treat an absent
// identity as unauthenticated, never as public access.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom extracts the verified identity from the context, if any.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
