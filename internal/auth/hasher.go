// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Virtuoso Contributors

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
)

// HashParams holds the argon2id cost parameters used when producing new
// verifiers. The parameters are embedded in every verifier string, so they
// can be raised later without invalidating existing verifiers: verification
// always uses the parameters recorded in the verifier itself.
type HashParams struct {
	Memory  uint32 // memory in KiB
	Time    uint32 // iterations
	Threads uint8  // parallelism
}

// DefaultHashParams returns the OWASP-recommended argon2id parameters.
func DefaultHashParams() HashParams {
	return HashParams{
		Memory:  64 * 1024,
		Time:    1,
		Threads: 4,
	}
}

// Salt and key lengths are fixed; only the cost parameters are tunable.
const (
	argon2SaltLen = 16
	argon2KeyLen  = 32
)

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = oops.Code("AUTH_EMPTY_PASSWORD").Errorf("password cannot be empty")

// PasswordHasher turns plaintext passwords into stored verifiers and checks
// candidates against them.
type PasswordHasher interface {
	// Hash produces a salted argon2id verifier of the password.
	Hash(password string) (string, error)

	// Verify checks if the password matches the verifier.
	// Returns (true, nil) on match, (false, nil) on mismatch, or an error
	// when the verifier string itself cannot be parsed.
	Verify(password, verifier string) (bool, error)
}

// Argon2idHasher implements PasswordHasher using argon2id.
type Argon2idHasher struct {
	params HashParams
}

// NewArgon2idHasher creates a hasher producing verifiers with the given cost
// parameters. Zero-value fields fall back to the defaults.
func NewArgon2idHasher(params HashParams) *Argon2idHasher {
	def := DefaultHashParams()
	if params.Memory == 0 {
		params.Memory = def.Memory
	}
	if params.Time == 0 {
		params.Time = def.Time
	}
	if params.Threads == 0 {
		params.Threads = def.Threads
	}
	return &Argon2idHasher{params: params}
}

// Hash produces an argon2id verifier of the password in PHC string format:
// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
// A fresh random salt is drawn per call, so hashing the same password twice
// yields different verifiers.
func (h *Argon2idHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("AUTH_SALT_FAILED").Wrap(err)
	}

	key := argon2.IDKey([]byte(password), salt, h.params.Time, h.params.Memory, h.params.Threads, argon2KeyLen)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)

	return encoded, nil
}

// Verify checks if the password matches the verifier. The salt and cost
// parameters are recovered from the verifier string, so verifiers produced
// under older cost settings remain checkable.
func (h *Argon2idHasher) Verify(password, verifier string) (bool, error) {
	parts := strings.Split(verifier, "$")
	if len(parts) != 6 {
		return false, oops.Code("AUTH_INVALID_VERIFIER").Errorf("invalid verifier format")
	}

	if parts[1] != "argon2id" {
		return false, oops.Code("AUTH_INVALID_VERIFIER").Errorf("unsupported hash algorithm: %s", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, oops.Code("AUTH_INVALID_VERIFIER").Wrap(err)
	}

	var memory, time, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false, oops.Code("AUTH_INVALID_VERIFIER").Wrap(err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, oops.Code("AUTH_INVALID_VERIFIER").Wrap(err)
	}

	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, oops.Code("AUTH_INVALID_VERIFIER").Wrap(err)
	}

	// Threads must fit in uint8 to prevent silent truncation.
	if threads > 255 {
		return false, oops.Code("AUTH_INVALID_VERIFIER").Errorf("threads value %d exceeds uint8 max", threads)
	}

	keyLen := len(expected)
	if keyLen <= 0 || keyLen > 1<<30 {
		return false, oops.Code("AUTH_INVALID_VERIFIER").Errorf("invalid verifier key length: %d", keyLen)
	}

	computed := argon2.IDKey([]byte(password), salt, time, memory, uint8(threads), uint32(keyLen))

	// Constant-time comparison with respect to the derived keys.
	if subtle.ConstantTimeCompare(computed, expected) == 1 {
		return true, nil
	}

	return false, nil
}

// Compile-time interface check.
var _ PasswordHasher = (*Argon2idHasher)(nil)
