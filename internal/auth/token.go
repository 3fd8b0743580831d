// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Virtuoso Contributors

package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Token verification failure sentinels. Verify returns exactly one of these
// (wrapped with diagnostic context) for every non-valid token.
var (
	// ErrTokenMissing means no token was presented.
	ErrTokenMissing = errors.New("token missing")

	// ErrTokenMalformed means the token could not be decoded at all.
	ErrTokenMalformed = errors.New("token malformed")

	// ErrTokenSignatureInvalid means the signature does not match the
	// claims. This covers any tampering with the claims segment.
	ErrTokenSignatureInvalid = errors.New("token signature invalid")

	// ErrTokenExpired means the signature is valid but the token's expiry
	// has passed.
	ErrTokenExpired = errors.New("token expired")
)

// Claims is the signed claim set embedded in a session token.
type Claims struct {
	jwt.RegisteredClaims
	AccountID string `json:"account_id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
}

// Identity returns the verified identity described by the claims.
func (c *Claims) Identity() (Identity, error) {
	id, err := ulid.Parse(c.AccountID)
	if err != nil {
		return Identity{}, oops.Code("TOKEN_MALFORMED").
			With("account_id", c.AccountID).
			Wrap(ErrTokenMalformed)
	}
	return Identity{
		AccountID: id,
		Username:  c.Username,
		Email:     c.Email,
	}, nil
}

// TokenIssuer mints signed, time-bounded session tokens. Tokens are
// stateless: no issuance record is kept, and an account may hold many
// simultaneously valid tokens. The TTL is fixed at construction so callers
// cannot mint arbitrarily long-lived tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer creates a TokenIssuer signing with the given HMAC secret.
func NewTokenIssuer(secret []byte, ttl time.Duration) (*TokenIssuer, error) {
	if len(secret) == 0 {
		return nil, oops.Code("TOKEN_CONFIG_INVALID").Errorf("signing secret is required")
	}
	if ttl == 0 {
		return nil, oops.Code("TOKEN_CONFIG_INVALID").Errorf("token TTL is required")
	}
	return &TokenIssuer{secret: secret, ttl: ttl}, nil
}

// TTL returns the configured token lifetime.
func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}

// Issue signs a token for the account with issued-at now and expiry
// now + TTL.
func (i *TokenIssuer) Issue(account *Account) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		AccountID: account.ID.String(),
		Username:  account.Username,
		Email:     account.Email,
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", oops.Code("AUTH_TOKEN_ISSUE_FAILED").
			With("operation", "sign token").
			Wrap(err)
	}
	return signed, nil
}

// TokenVerifier validates session tokens issued with the same secret.
type TokenVerifier struct {
	secret []byte
}

// NewTokenVerifier creates a TokenVerifier for the given HMAC secret.
func NewTokenVerifier(secret []byte) (*TokenVerifier, error) {
	if len(secret) == 0 {
		return nil, oops.Code("TOKEN_CONFIG_INVALID").Errorf("signing secret is required")
	}
	return &TokenVerifier{secret: secret}, nil
}

// Verify decodes and validates a token string. On success it returns the
// decoded claims; otherwise the error matches (errors.Is) exactly one of
// ErrTokenMissing, ErrTokenMalformed, ErrTokenSignatureInvalid, or
// ErrTokenExpired.
//
// The signature is validated before any claim is trusted; expiry is only
// inspected on tokens whose signature checks out, so a forged expiry can
// never turn a tampered token into a merely "expired" one.
func (v *TokenVerifier) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, oops.Code("TOKEN_MISSING").Wrap(ErrTokenMissing)
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, v.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, oops.Code("TOKEN_INVALID_SIGNATURE").Wrap(ErrTokenSignatureInvalid)
		case errors.Is(err, jwt.ErrTokenMalformed), errors.Is(err, jwt.ErrTokenUnverifiable):
			return nil, oops.Code("TOKEN_MALFORMED").Wrap(ErrTokenMalformed)
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, oops.Code("TOKEN_EXPIRED").Wrap(ErrTokenExpired)
		default:
			return nil, oops.Code("TOKEN_MALFORMED").Wrap(ErrTokenMalformed)
		}
	}
	if !token.Valid {
		return nil, oops.Code("TOKEN_INVALID_SIGNATURE").Wrap(ErrTokenSignatureInvalid)
	}

	return claims, nil
}

func (v *TokenVerifier) keyFunc(_ *jwt.Token) (any, error) {
	return v.secret, nil
}
