// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Virtuoso Contributors

// Package httpapi exposes the identity service over HTTP/JSON: the public
// register and login endpoints, the token-gated profile endpoint, and the
// authentication gate middleware that verifies bearer tokens before any
// protected handler runs.
package httpapi
