// LandSpace - Marketing Platform Security Core
// Copyright 2026 LandSpace Tecnologia
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/landspace/landspace

// Package metrics defines the Prometheus instrumentation for the security
// core. All collectors are registered with the default registry via
// promauto and exposed at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts counts login attempts by session domain and outcome.
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "landspace_auth_attempts_total",
			Help: "Login attempts by session domain (admin, portal) and outcome (success, failure).",
		},
		[]string{"domain", "outcome"},
	)

	// GatekeeperDecisions counts edge gatekeeper outcomes.
	GatekeeperDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "landspace_gatekeeper_decisions_total",
			Help: "Edge gatekeeper decisions (allowed, rejected, passthrough, allowlisted).",
		},
		[]string{"decision"},
	)

	// RateLimitDenials counts 429 rejections by scope.
	RateLimitDenials = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "landspace_rate_limit_denials_total",
			Help: "Requests denied by the dual-tier rate limiter, by scope.",
		},
		[]string{"scope"},
	)

	// CSRFRejections counts mutating requests rejected by the CSRF guard.
	CSRFRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "landspace_csrf_rejections_total",
			Help: "Mutating requests rejected by the double-submit CSRF guard.",
		},
	)

	// AuditBufferDrops counts audit entries dropped on a full buffer.
	AuditBufferDrops = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "landspace_audit_buffer_drops_total",
			Help: "Audit entries dropped because the writer buffer was full.",
		},
	)

	// AuditWriteFailures counts failed audit persistence calls.
	AuditWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "landspace_audit_write_failures_total",
			Help: "Audit entries that failed to persist.",
		},
	)

	// HTTPRequestDuration observes request latency by method, route, status.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "landspace_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)
