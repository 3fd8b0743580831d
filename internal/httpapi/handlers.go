// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Virtuoso Contributors

package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/virtuoso-music/identity/internal/auth"
	"github.com/virtuoso-music/identity/pkg/errutil"
)

type registerRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Plan     string `json:"plan"`
	Token    string `json:"token"`
}

type loginResponse struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
	Plan        string `json:"plan"`
	Token       string `json:"token"`
}

type profileResponse struct {
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url"`
	Plan        string    `json:"plan"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := s.svc.Register(c.Request.Context(), auth.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		s.respondServiceError(c, err)
		return
	}

	respond(c, http.StatusCreated, "account created", registerResponse{
		UserID:   session.Account.ID.String(),
		Username: session.Account.Username,
		Email:    session.Account.Email,
		Plan:     session.Account.Plan,
		Token:    session.Token,
	})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := s.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, "login successful", loginResponse{
		UserID:      session.Account.ID.String(),
		Username:    session.Account.Username,
		Email:       session.Account.Email,
		DisplayName: session.Account.DisplayName,
		AvatarURL:   session.Account.AvatarURL,
		Plan:        session.Account.Plan,
		Token:       session.Token,
	})
}

func (s *Server) handleProfile(c *gin.Context) {
	identity, ok := auth.IdentityFrom(c.Request.Context())
	if !ok {
		respondError(c, http.StatusUnauthorized, "token not provided")
		return
	}

	account, err := s.svc.Profile(c.Request.Context(), identity.AccountID)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, "profile retrieved", profileResponse{
		UserID:      account.ID.String(),
		Username:    account.Username,
		Email:       account.Email,
		DisplayName: account.DisplayName,
		AvatarURL:   account.AvatarURL,
		Plan:        account.Plan,
		CreatedAt:   account.CreatedAt,
	})
}

func (s *Server) handleRoot(c *gin.Context) {
	respond(c, http.StatusOK, "Virtuoso Identity API", gin.H{
		"service": "identity",
		"version": s.version,
	})
}

// respondServiceError maps the error code attached by the service layer to
// an HTTP status. Anything unrecognized is a dependency failure: it is
// logged server-side and reported to the client without detail.
func (s *Server) respondServiceError(c *gin.Context, err error) {
	switch errutil.Code(err) {
	case "AUTH_MISSING_FIELD", "AUTH_INVALID_USERNAME", "AUTH_INVALID_EMAIL":
		respondError(c, http.StatusBadRequest, err.Error())
	case "AUTH_ACCOUNT_EXISTS":
		respondError(c, http.StatusConflict, "username or email already registered")
	case "AUTH_INVALID_CREDENTIALS":
		respondError(c, http.StatusUnauthorized, "invalid credentials")
	case "AUTH_ACCOUNT_DISABLED":
		respondError(c, http.StatusForbidden, "account is deactivated")
	case "AUTH_ACCOUNT_NOT_FOUND":
		respondError(c, http.StatusNotFound, "account not found")
	default:
		errutil.LogError(s.logger, "request failed", err)
		respondError(c, http.StatusInternalServerError, "internal server error")
	}
}
