// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Virtuoso Contributors

// Package auth implements the credential and session engine for the
// Virtuoso identity service: password hashing and verification, signed
// session token issuance and validation, and the register/login/profile
// flows over an external account store.
package auth
