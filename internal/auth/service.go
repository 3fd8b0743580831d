// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Virtuoso Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// dummyVerifier is used when an account doesn't exist to prevent timing
// attacks. We still run password verification so response time stays
// consistent between unknown accounts and wrong passwords.
//
//nolint:gosec // G101: intentionally fake verifier for timing attack prevention, not a credential.
const dummyVerifier = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// RegisterInput carries the fields submitted at registration. Password
// exists only transiently; it is hashed immediately and never stored or
// logged.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
}

// Session is the outcome of a successful register or login: the account and
// a freshly issued bearer token.
type Session struct {
	Account *Account
	Token   string
}

// Service coordinates hashing, account lookup, and token issuance to
// implement the register, login, and profile flows.
type Service struct {
	accounts AccountRepository
	hasher   PasswordHasher
	issuer   *TokenIssuer
	logger   *slog.Logger
}

// NewService creates a Service with a no-op logger.
// Returns an error if any required dependency is nil.
func NewService(accounts AccountRepository, hasher PasswordHasher, issuer *TokenIssuer) (*Service, error) {
	if accounts == nil {
		return nil, oops.Errorf("account repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if issuer == nil {
		return nil, oops.Errorf("token issuer is required")
	}
	return &Service{
		accounts: accounts,
		hasher:   hasher,
		issuer:   issuer,
		logger:   slog.New(slog.DiscardHandler),
	}, nil
}

// NewServiceWithLogger creates a Service with the provided logger.
// Returns an error if any required dependency is nil.
func NewServiceWithLogger(accounts AccountRepository, hasher PasswordHasher, issuer *TokenIssuer, logger *slog.Logger) (*Service, error) {
	svc, err := NewService(accounts, hasher, issuer)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	svc.logger = logger
	return svc, nil
}

// Register creates a new account and issues its first session token.
//
// The duplicate check and the insert are two independent store calls; a
// concurrent register slipping between them surfaces as the store's
// uniqueness violation, which maps to the same conflict outcome.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if err := ValidateUsername(in.Username); err != nil {
		RecordAuthAttempt("register", StatusRejected)
		return nil, err
	}
	if err := ValidateEmail(in.Email); err != nil {
		RecordAuthAttempt("register", StatusRejected)
		return nil, err
	}
	if in.Password == "" {
		RecordAuthAttempt("register", StatusRejected)
		return nil, oops.Code("AUTH_MISSING_FIELD").Errorf("password is required")
	}

	taken, err := s.accounts.Exists(ctx, in.Username, in.Email)
	if err != nil {
		RecordAuthAttempt("register", StatusError)
		return nil, oops.Code("AUTH_STORE_FAILED").
			With("operation", "check account existence").
			Wrap(err)
	}
	if taken {
		RecordAuthAttempt("register", StatusConflict)
		return nil, oops.Code("AUTH_ACCOUNT_EXISTS").
			Errorf("username or email already registered")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		RecordAuthAttempt("register", StatusError)
		return nil, oops.Code("AUTH_HASH_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	account := NewAccount(in.Username, in.Email, hash, in.DisplayName)
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, ErrDuplicate) {
			// Lost the race between the existence check and the insert.
			RecordAuthAttempt("register", StatusConflict)
			return nil, oops.Code("AUTH_ACCOUNT_EXISTS").
				Errorf("username or email already registered")
		}
		RecordAuthAttempt("register", StatusError)
		return nil, oops.Code("AUTH_STORE_FAILED").
			With("operation", "create account").
			Wrap(err)
	}

	token, err := s.issuer.Issue(account)
	if err != nil {
		RecordAuthAttempt("register", StatusError)
		return nil, err
	}

	s.logger.InfoContext(ctx, "account registered",
		"account_id", account.ID.String(),
		"username", account.Username,
	)
	RecordAuthAttempt("register", StatusSuccess)
	return &Session{Account: account, Token: token}, nil
}

// Login verifies credentials for the account matching the login identifier
// (username or email) and issues a session token.
//
// Unknown accounts and wrong passwords produce the same outcome, and a dummy
// verification runs for unknown accounts so response time does not reveal
// whether the account exists. Inactive accounts are a distinct outcome.
func (s *Service) Login(ctx context.Context, login, password string) (*Session, error) {
	if login == "" {
		RecordAuthAttempt("login", StatusRejected)
		return nil, oops.Code("AUTH_MISSING_FIELD").Errorf("username is required")
	}
	if password == "" {
		RecordAuthAttempt("login", StatusRejected)
		return nil, oops.Code("AUTH_MISSING_FIELD").Errorf("password is required")
	}

	account, lookupErr := s.accounts.GetByLogin(ctx, login)
	if lookupErr != nil {
		if !errors.Is(lookupErr, ErrNotFound) {
			RecordAuthAttempt("login", StatusError)
			return nil, oops.Code("AUTH_STORE_FAILED").
				With("operation", "get account by login").
				Wrap(lookupErr)
		}
		// Burn a verification against the dummy verifier anyway.
		_, _ = s.hasher.Verify(password, dummyVerifier) //nolint:errcheck // timing equalization only
		RecordAuthAttempt("login", StatusDenied)
		return nil, oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("invalid credentials")
	}

	if !account.Active {
		RecordAuthAttempt("login", StatusDenied)
		return nil, oops.Code("AUTH_ACCOUNT_DISABLED").
			With("account_id", account.ID.String()).
			Errorf("account is deactivated")
	}

	ok, err := s.hasher.Verify(password, account.PasswordHash)
	if err != nil {
		RecordAuthAttempt("login", StatusError)
		return nil, oops.Code("AUTH_HASH_FAILED").
			With("operation", "verify password").
			Wrap(err)
	}
	if !ok {
		RecordAuthAttempt("login", StatusDenied)
		return nil, oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("invalid credentials")
	}

	token, err := s.issuer.Issue(account)
	if err != nil {
		RecordAuthAttempt("login", StatusError)
		return nil, err
	}

	s.logger.InfoContext(ctx, "login succeeded",
		"account_id", account.ID.String(),
		"username", account.Username,
	)
	RecordAuthAttempt("login", StatusSuccess)
	return &Session{Account: account, Token: token}, nil
}

// Profile re-reads the account behind an already-verified identity. A
// missing account here means the account vanished after the token was
// issued; that is a not-found outcome, not a crash.
func (s *Service) Profile(ctx context.Context, accountID ulid.ULID) (*Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("AUTH_ACCOUNT_NOT_FOUND").
				With("account_id", accountID.String()).
				Errorf("account not found")
		}
		return nil, oops.Code("AUTH_STORE_FAILED").
			With("operation", "get account by id").
			Wrap(err)
	}
	return account, nil
}
