// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Virtuoso Contributors

package auth

import (
	"context"
	"net/mail"
	"regexp"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Username validation constraints.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
)

// Plan tiers recognized by the platform.
const (
	PlanFree    = "free"
	PlanPremium = "premium"
)

// usernameRegex matches usernames that:
// - Start with a letter (a-z, A-Z)
// - Contain only letters, numbers, and underscores
var usernameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// Account represents a listener account. The password is never stored; only
// the one-way verifier produced by a PasswordHasher is.
type Account struct {
	ID           ulid.ULID
	Username     string
	Email        string
	PasswordHash string
	DisplayName  string
	AvatarURL    string
	Plan         string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewAccount creates an account record with a fresh ULID and the free plan.
// The caller supplies the already-hashed verifier, never the plaintext.
func NewAccount(username, email, passwordHash, displayName string) *Account {
	now := time.Now()
	return &Account{
		ID:           ulid.Make(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		DisplayName:  displayName,
		Plan:         PlanFree,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// ValidateUsername validates a username against rules.
// Username requirements:
// - Length: MinUsernameLength to MaxUsernameLength characters
// - Must start with a letter
// - Can contain only letters (a-z, A-Z), numbers (0-9), and underscores (_)
func ValidateUsername(username string) error {
	if username == "" {
		return oops.Code("AUTH_MISSING_FIELD").Errorf("username is required")
	}
	if len(username) < MinUsernameLength {
		return oops.Code("AUTH_INVALID_USERNAME").
			With("min", MinUsernameLength).
			Errorf("username must be at least %d characters", MinUsernameLength)
	}
	if len(username) > MaxUsernameLength {
		return oops.Code("AUTH_INVALID_USERNAME").
			With("max", MaxUsernameLength).
			Errorf("username must be at most %d characters", MaxUsernameLength)
	}
	if !usernameRegex.MatchString(username) {
		return oops.Code("AUTH_INVALID_USERNAME").
			Errorf("username must start with a letter and contain only letters, numbers, and underscores")
	}
	return nil
}

// ValidateEmail checks that the email is present and parseable as a single
// RFC 5322 address.
func ValidateEmail(email string) error {
	if email == "" {
		return oops.Code("AUTH_MISSING_FIELD").Errorf("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return oops.Code("AUTH_INVALID_EMAIL").Errorf("email address is not valid")
	}
	return nil
}

// AccountRepository manages account persistence. It is the only shared
// mutable resource the engine touches; every method is a single independent
// store call.
type AccountRepository interface {
	// Create stores a new account. Returns ErrDuplicate (wrapped) when the
	// username or email is already taken.
	Create(ctx context.Context, account *Account) error

	// GetByID retrieves an account by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*Account, error)

	// GetByLogin retrieves an account whose username or email matches the
	// given login identifier (case-insensitive).
	GetByLogin(ctx context.Context, login string) (*Account, error)

	// Exists reports whether an account with the given username or email
	// already exists (case-insensitive).
	Exists(ctx context.Context, username, email string) (bool, error)
}
