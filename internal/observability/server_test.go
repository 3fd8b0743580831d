// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Virtuoso Contributors

package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/virtuoso-music/identity/internal/auth"
)

func startServer(t *testing.T, ready ReadinessChecker) *Server {
	t.Helper()
	server := NewServer("127.0.0.1:0", ready)
	if _, err := server.Start(); err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Stop(ctx)
	})
	return server
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("failed to GET %s: %v", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func TestServer_Metrics(t *testing.T) {
	server := startServer(t, func() bool { return true })

	addr := server.Addr()
	if addr == "" {
		t.Fatal("server address is empty")
	}

	status, body := get(t, "http://"+addr+"/metrics")
	if status != http.StatusOK {
		t.Errorf("expected status 200, got %d", status)
	}

	if !strings.Contains(body, "# HELP") {
		t.Error("expected Prometheus format with HELP comments")
	}
	if !strings.Contains(body, "go_") {
		t.Error("expected go_* metrics")
	}
	if !strings.Contains(body, "process_") {
		t.Error("expected process_* metrics")
	}

	// Counters appear once incremented.
	auth.RecordAuthAttempt("login", auth.StatusSuccess)
	auth.RecordTokenVerification("valid")

	_, body = get(t, "http://"+addr+"/metrics")
	if !strings.Contains(body, "identity_auth_attempts_total") {
		t.Error("expected identity_auth_attempts_total metric")
	}
	if !strings.Contains(body, "identity_token_verifications_total") {
		t.Error("expected identity_token_verifications_total metric")
	}
}

func TestServer_HealthProbes(t *testing.T) {
	t.Run("liveness is always ok", func(t *testing.T) {
		server := startServer(t, func() bool { return false })
		status, _ := get(t, "http://"+server.Addr()+"/healthz/liveness")
		if status != http.StatusOK {
			t.Errorf("expected status 200, got %d", status)
		}
	})

	t.Run("readiness follows the checker", func(t *testing.T) {
		var ready atomic.Bool
		server := startServer(t, ready.Load)

		status, _ := get(t, "http://"+server.Addr()+"/healthz/readiness")
		if status != http.StatusServiceUnavailable {
			t.Errorf("expected status 503, got %d", status)
		}

		ready.Store(true)
		status, _ = get(t, "http://"+server.Addr()+"/healthz/readiness")
		if status != http.StatusOK {
			t.Errorf("expected status 200, got %d", status)
		}
	})

	t.Run("nil checker means ready", func(t *testing.T) {
		server := startServer(t, nil)
		status, _ := get(t, "http://"+server.Addr()+"/healthz/readiness")
		if status != http.StatusOK {
			t.Errorf("expected status 200, got %d", status)
		}
	})
}

func TestServer_DoubleStart(t *testing.T) {
	server := startServer(t, nil)
	if _, err := server.Start(); err == nil {
		t.Error("expected second Start to fail")
	}
}

func TestServer_StopWhenNotRunning(t *testing.T) {
	server := NewServer("127.0.0.1:0", nil)
	if err := server.Stop(context.Background()); err != nil {
		t.Errorf("expected Stop on a stopped server to be a no-op, got %v", err)
	}
}
