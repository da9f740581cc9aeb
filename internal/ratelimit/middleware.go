// LandSpace - Marketing Platform Security Core
// Copyright 2026 LandSpace Tecnologia
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/landspace/landspace

package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/landspace/landspace/internal/logging"
	"github.com/landspace/landspace/internal/metrics"
)

// IdentityFunc extracts the fine-tier identity from a request. Returning
// an empty string skips the identity tier for that request.
type IdentityFunc func(r *http.Request) string

// rateLimitedResponse is the canonical 429 body. The tripped tier is never
// disclosed.
type rateLimitedResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId"`
}

// Middleware guards a sensitive handler with the dual-tier limiter under
// the given scope. identity may be nil for IP-tier-only scopes.
func Middleware(limiter *Limiter, scope string, identity IdentityFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if identity != nil {
				id = identity(r)
			}

			result, err := limiter.Check(r.Context(), scope, ClientIP(r), id)
			if err != nil {
				// A broken store must not take the endpoint down with it.
				logging.Ctx(r.Context()).Error().Err(err).
					Str("scope", scope).
					Msg("rate limit check failed, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			if !result.Allowed {
				metrics.RateLimitDenials.WithLabelValues(scope).Inc()
				WriteDenied(w, r, result)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// WriteDenied sends the canonical 429 rejection. Handlers that consult the
// limiter directly (identity comes from the request body) use this too, so
// every denial looks the same.
func WriteDenied(w http.ResponseWriter, r *http.Request, result Result) {
	retryAfter := int(time.Until(result.ResetAt).Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.WriteHeader(http.StatusTooManyRequests)

	resp := rateLimitedResponse{
		Error:     "rate_limited",
		RequestID: logging.RequestIDFromContext(r.Context()),
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("encode rate limit response")
	}
}

// ClientIP returns the caller's IP. RemoteAddr is authoritative here; the
// router applies RealIP resolution before this middleware runs.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
