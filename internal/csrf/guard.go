// LandSpace - Marketing Platform Security Core
// Copyright 2026 LandSpace Tecnologia
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/landspace/landspace

// Package csrf implements stateless double-submit CSRF protection.
//
// A random token is issued both as an httpOnly cookie and in the response
// body; the client echoes it back in the x-csrf-token header on mutating
// requests. Validation is pure constant-time equality between cookie and
// header, so no server-side token state exists. Tokens remain valid until
// the cookie expires.
package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/landspace/landspace/internal/logging"
	"github.com/landspace/landspace/internal/metrics"
)

const (
	// CookieName is the CSRF token cookie.
	CookieName = "ls_csrf"

	// HeaderName is the header clients echo the token back in.
	HeaderName = "x-csrf-token"

	// DefaultTTL is the token cookie lifetime.
	DefaultTTL = 30 * time.Minute

	// tokenBytes is the entropy of each token before encoding.
	tokenBytes = 32
)

// Config holds CSRF guard settings.
type Config struct {
	// Secure marks the cookie Secure (HTTPS only).
	Secure bool

	// TTL is the cookie lifetime. Default: 30 minutes.
	TTL time.Duration
}

// Guard issues and validates double-submit CSRF tokens.
type Guard struct {
	secure bool
	ttl    time.Duration
}

// NewGuard creates a CSRF guard.
func NewGuard(cfg Config) *Guard {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	return &Guard{secure: cfg.Secure, ttl: cfg.TTL}
}

// Issue generates a fresh token, sets it as the ls_csrf cookie, and returns
// it for the caller to include in the response body. Issuance responses are
// never cacheable.
func (g *Guard) Issue(w http.ResponseWriter) (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate csrf token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(buf)

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(g.ttl / time.Second),
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteStrictMode,
	})
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")

	return token, nil
}

// Validate reports whether the cookie and header tokens match. Either side
// empty is a rejection. Comparison is constant time.
func (g *Guard) Validate(cookieToken, headerToken string) bool {
	if cookieToken == "" || headerToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookieToken), []byte(headerToken)) == 1
}

// Middleware rejects mutating requests whose double-submit pair does not
// validate, before any handler logic runs. Safe methods pass through.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		var cookieToken string
		if cookie, err := r.Cookie(CookieName); err == nil {
			cookieToken = cookie.Value
		}

		if !g.Validate(cookieToken, r.Header.Get(HeaderName)) {
			metrics.CSRFRejections.Inc()
			logging.Ctx(r.Context()).Warn().
				Str("path", r.URL.Path).
				Msg("csrf validation failed")
			writeForbidden(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeForbidden(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.WriteHeader(http.StatusForbidden)

	resp := map[string]string{
		"error":     "csrf_invalid",
		"requestId": logging.RequestIDFromContext(r.Context()),
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("encode csrf rejection")
	}
}
