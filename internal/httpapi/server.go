// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Virtuoso Contributors

package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/oops"

	"github.com/virtuoso-music/identity/internal/auth"
)

// Server is the HTTP front of the identity service.
type Server struct {
	addr    string
	version string
	svc     *auth.Service
	logger  *slog.Logger

	engine     *gin.Engine
	httpServer *http.Server

	mu     sync.Mutex
	lnAddr net.Addr
}

// NewServer builds the router and wires the authentication gate in front of
// the protected routes. Returns an error if any required dependency is nil.
func NewServer(addr, version string, svc *auth.Service, verifier *auth.TokenVerifier, logger *slog.Logger) (*Server, error) {
	if addr == "" {
		return nil, oops.Errorf("listen address is required")
	}
	if svc == nil {
		return nil, oops.Errorf("auth service is required")
	}
	if verifier == nil {
		return nil, oops.Errorf("token verifier is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(RequestLogger(logger), gin.Recovery())

	s := &Server{
		addr:    addr,
		version: version,
		svc:     svc,
		logger:  logger,
		engine:  engine,
	}

	engine.GET("/", s.handleRoot)
	api := engine.Group("/api/auth")
	api.POST("/register", s.handleRegister)
	api.POST("/login", s.handleLogin)
	api.GET("/profile", RequireAuth(verifier), s.handleProfile)

	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Addr returns the bound listen address once Run has started, or nil.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lnAddr
}

// Run serves HTTP until ctx is canceled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return oops.Code("HTTP_LISTEN_FAILED").With("addr", s.addr).Wrap(err)
	}
	s.mu.Lock()
	s.lnAddr = ln.Addr()
	s.mu.Unlock()
	s.httpServer = &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(ln)
	}()

	s.logger.InfoContext(ctx, "http server listening", "addr", s.lnAddr.String())

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return oops.Code("HTTP_SHUTDOWN_FAILED").Wrap(err)
		}
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return oops.Code("HTTP_SERVE_FAILED").Wrap(err)
	}
}
