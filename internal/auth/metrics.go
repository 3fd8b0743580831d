// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Virtuoso Contributors

package auth

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Status constants for auth attempt metrics.
const (
	StatusSuccess  = "success"
	StatusRejected = "rejected" // input validation failed
	StatusConflict = "conflict" // duplicate username/email
	StatusDenied   = "denied"   // bad credentials or inactive account
	StatusError    = "error"    // store or hashing failure
)

// AuthAttempts counts register/login attempts by outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var AuthAttempts = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "identity_auth_attempts_total",
		Help: "Total number of register/login attempts by operation and status",
	},
	[]string{"operation", "status"},
)

// TokenVerifications counts token verification outcomes at the gate.
// Use RegisterMetrics to register this with a Prometheus registry.
var TokenVerifications = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "identity_token_verifications_total",
		Help: "Total number of bearer token verifications by outcome",
	},
	[]string{"outcome"},
)

// RegisterMetrics registers auth package metrics with the given Prometheus
// registry. This must be called at startup to make metrics available on
// /metrics. Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(AuthAttempts)
	reg.MustRegister(TokenVerifications)
}

// RecordAuthAttempt increments the auth attempt counter.
func RecordAuthAttempt(operation, status string) {
	AuthAttempts.WithLabelValues(operation, status).Inc()
}

// RecordTokenVerification increments the token verification counter.
func RecordTokenVerification(outcome string) {
	TokenVerifications.WithLabelValues(outcome).Inc()
}
