// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Virtuoso Contributors

package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/virtuoso-music/identity/internal/auth"
)

// RequireAuth verifies the bearer token on the request and, on success,
// installs the verified identity into the request context. Every failure
// short-circuits as 401 before the handler runs; an expired token gets a
// distinct message so clients can prompt for re-login.
func RequireAuth(verifier *auth.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := verifier.Verify(bearerToken(c.GetHeader("Authorization")))
		if err != nil {
			auth.RecordTokenVerification(verifyOutcome(err))
			switch {
			case errors.Is(err, auth.ErrTokenMissing):
				respondError(c, http.StatusUnauthorized, "token not provided")
			case errors.Is(err, auth.ErrTokenExpired):
				respondError(c, http.StatusUnauthorized, "token expired")
			default:
				respondError(c, http.StatusUnauthorized, "invalid token")
			}
			return
		}

		identity, err := claims.Identity()
		if err != nil {
			auth.RecordTokenVerification("malformed")
			respondError(c, http.StatusUnauthorized, "invalid token")
			return
		}

		auth.RecordTokenVerification("valid")
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), identity))
		c.Next()
	}
}

// bearerToken extracts the credential from an Authorization header. The
// expected shape is "scheme value"; anything else yields an empty token,
// which the verifier reports as missing.
func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}

func verifyOutcome(err error) string {
	switch {
	case errors.Is(err, auth.ErrTokenMissing):
		return "missing"
	case errors.Is(err, auth.ErrTokenSignatureInvalid):
		return "bad_signature"
	case errors.Is(err, auth.ErrTokenExpired):
		return "expired"
	default:
		return "malformed"
	}
}

// RequestLogger logs one line per request with method, path, status, and
// latency.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.LogAttrs(c.Request.Context(), slog.LevelInfo, "http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
		)
	}
}
