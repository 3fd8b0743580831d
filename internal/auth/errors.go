// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Virtuoso Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested account does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a uniqueness constraint
// (username or email already taken).
var ErrDuplicate = errors.New("duplicate")
