// LandSpace - Marketing Platform Security Core
// Copyright 2026 LandSpace Tecnologia
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/landspace/landspace

// Package gatekeeper implements the edge interception layer for the admin
// API prefix.
//
// The gatekeeper runs ahead of routing and rejects requests to /api/admin
// that do not carry a verifiable admin session cookie. It is an outer
// filter only: the authoritative checks live in the route guards, which
// re-verify every request. When no session secret is configured the
// gatekeeper fails open and lets the guards decide, so a misconfigured
// edge can never lock out traffic that the server would reject anyway.
package gatekeeper

import (
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/landspace/landspace/internal/logging"
	"github.com/landspace/landspace/internal/metrics"
	"github.com/landspace/landspace/internal/session"
	"github.com/landspace/landspace/internal/token"
)

const (
	// GuardedPrefix is the path prefix the gatekeeper intercepts.
	GuardedPrefix = "/api/admin"

	// RequestIDHeader is echoed (or generated) on every response.
	RequestIDHeader = "x-request-id"
)

// allowlist holds the exact paths that bypass the session check. Login must
// be reachable without a session; logout must work even with a broken one.
var allowlist = map[string]struct{}{
	"/api/admin/login":  {},
	"/api/admin/logout": {},
}

// guarded reports whether a path falls under the admin prefix. Only the
// prefix itself and its sub-paths count; siblings like /api/adminfoo do not.
func guarded(path string) bool {
	if path == GuardedPrefix {
		return true
	}
	return strings.HasPrefix(path, GuardedPrefix+"/")
}

// Gatekeeper filters admin-prefixed requests at the edge.
type Gatekeeper struct {
	codec *token.Codec
}

// New creates a gatekeeper. An empty secret yields a fail-open gatekeeper
// that passes everything through to the route guards with a warning.
func New(secret string) *Gatekeeper {
	if secret == "" {
		return &Gatekeeper{}
	}
	codec, err := token.NewCodec(secret)
	if err != nil {
		return &Gatekeeper{}
	}
	return &Gatekeeper{codec: codec}
}

// Middleware intercepts /api/admin requests before routing.
func (g *Gatekeeper) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !guarded(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		if _, ok := allowlist[r.URL.Path]; ok {
			metrics.GatekeeperDecisions.WithLabelValues("allowlisted").Inc()
			next.ServeHTTP(w, r)
			return
		}

		if g.codec == nil {
			metrics.GatekeeperDecisions.WithLabelValues("passthrough").Inc()
			logging.Ctx(r.Context()).Warn().
				Str("path", r.URL.Path).
				Msg("gatekeeper has no session secret, passing through to route guards")
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(session.AdminCookieName)
		if err != nil {
			metrics.GatekeeperDecisions.WithLabelValues("rejected").Inc()
			writeUnauthorized(w, r)
			return
		}
		if _, err := g.codec.Verify(cookie.Value); err != nil {
			metrics.GatekeeperDecisions.WithLabelValues("rejected").Inc()
			writeUnauthorized(w, r)
			return
		}

		metrics.GatekeeperDecisions.WithLabelValues("allowed").Inc()
		next.ServeHTTP(w, r)
	})
}

// unauthorizedResponse is the canonical 401 body.
type unauthorizedResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId"`
}

// writeUnauthorized sends the canonical 401 with correlation and cache
// suppression headers.
func writeUnauthorized(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFor(r)

	w.Header().Set(RequestIDHeader, requestID)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.WriteHeader(http.StatusUnauthorized)

	resp := unauthorizedResponse{Error: "unauthorized", RequestID: requestID}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("encode gatekeeper rejection")
	}
}

// requestIDFor echoes the request's correlation ID, falling back to the
// inbound header, then to a fresh UUID.
func requestIDFor(r *http.Request) string {
	if id := logging.RequestIDFromContext(r.Context()); id != "" {
		return id
	}
	if id := r.Header.Get(RequestIDHeader); id != "" {
		return id
	}
	return logging.GenerateRequestID()
}
