// LandSpace - Marketing Platform Security Core
// Copyright 2026 LandSpace Tecnologia
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/landspace/landspace

// Package session manages the two LandSpace cookie session domains.
//
// The admin domain ("ls_admin_session") carries a boolean-authenticated
// session for the management panel. The portal domain ("ls_portal_session")
// binds a session to exactly one client protocol. The domains are fully
// independent: different cookies, different claims, no shared state.
//
// Sessions are stateless JWTs; there is no server-side registry. The
// optional revocation set (see RevocationStore) denylists individual
// nonces for the authoritative guards.
package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/landspace/landspace/internal/token"
)

const (
	// AdminCookieName is the admin session cookie.
	AdminCookieName = "ls_admin_session"

	// PortalCookieName is the portal session cookie.
	PortalCookieName = "ls_portal_session"

	// DefaultAdminTTL is the admin session lifetime.
	DefaultAdminTTL = 7 * 24 * time.Hour

	// DefaultPortalTTL is the portal session lifetime.
	DefaultPortalTTL = 7 * 24 * time.Hour
)

// ErrNoSession is returned when a request carries no valid session for the
// requested domain. A missing cookie, a failed verification, and a portal
// protocol mismatch are deliberately indistinguishable.
var ErrNoSession = errors.New("session: no valid session")

// Config holds session manager settings.
type Config struct {
	// Secure marks cookies Secure (HTTPS only). Enabled in production.
	Secure bool

	// AdminTTL is the admin session lifetime. Default: 7 days.
	AdminTTL time.Duration

	// PortalTTL is the portal session lifetime. Default: 7 days.
	PortalTTL time.Duration
}

// DefaultConfig returns production session defaults.
func DefaultConfig() Config {
	return Config{
		Secure:    true,
		AdminTTL:  DefaultAdminTTL,
		PortalTTL: DefaultPortalTTL,
	}
}

// Manager mints, reads, and clears session cookies for both domains.
type Manager struct {
	codec     *token.Codec
	secure    bool
	adminTTL  time.Duration
	portalTTL time.Duration
}

// NewManager creates a session manager over the given token codec.
func NewManager(codec *token.Codec, cfg Config) *Manager {
	if cfg.AdminTTL <= 0 {
		cfg.AdminTTL = DefaultAdminTTL
	}
	if cfg.PortalTTL <= 0 {
		cfg.PortalTTL = DefaultPortalTTL
	}
	return &Manager{
		codec:     codec,
		secure:    cfg.Secure,
		adminTTL:  cfg.AdminTTL,
		portalTTL: cfg.PortalTTL,
	}
}

// CreateAdmin mints a fresh admin session token and sets the admin cookie.
// Returns the claims for the new session (the nonce feeds audit metadata).
func (m *Manager) CreateAdmin(w http.ResponseWriter) (*token.SessionClaims, error) {
	claims := token.SessionClaims{
		Authenticated: true,
		Nonce:         uuid.New().String(),
	}
	signed, err := m.codec.Sign(claims, m.adminTTL)
	if err != nil {
		return nil, err
	}
	m.setCookie(w, AdminCookieName, signed, m.adminTTL)
	return &claims, nil
}

// GetAdmin reads and verifies the admin session cookie.
// This is the authoritative server-side check.
func (m *Manager) GetAdmin(r *http.Request) (*token.SessionClaims, error) {
	cookie, err := r.Cookie(AdminCookieName)
	if err != nil {
		return nil, ErrNoSession
	}
	claims, err := m.codec.Verify(cookie.Value)
	if err != nil {
		return nil, ErrNoSession
	}
	return claims, nil
}

// ClearAdmin deletes the admin session cookie. Idempotent.
func (m *Manager) ClearAdmin(w http.ResponseWriter) {
	m.clearCookie(w, AdminCookieName)
}

// CreatePortal mints a portal session bound to the given protocol and sets
// the portal cookie.
func (m *Manager) CreatePortal(w http.ResponseWriter, protocol string) (*token.SessionClaims, error) {
	claims := token.SessionClaims{
		Authenticated: true,
		Nonce:         uuid.New().String(),
		Protocol:      protocol,
	}
	signed, err := m.codec.Sign(claims, m.portalTTL)
	if err != nil {
		return nil, err
	}
	m.setCookie(w, PortalCookieName, signed, m.portalTTL)
	return &claims, nil
}

// GetPortal reads and verifies the portal session cookie and checks that it
// is bound to expectedProtocol. A mismatch returns ErrNoSession, identical
// to a missing or invalid cookie.
func (m *Manager) GetPortal(r *http.Request, expectedProtocol string) (*token.SessionClaims, error) {
	cookie, err := r.Cookie(PortalCookieName)
	if err != nil {
		return nil, ErrNoSession
	}
	claims, err := m.codec.Verify(cookie.Value)
	if err != nil {
		return nil, ErrNoSession
	}
	if claims.Protocol == "" || claims.Protocol != expectedProtocol {
		return nil, ErrNoSession
	}
	return claims, nil
}

// ReadPortal reads and verifies the portal cookie without a protocol
// check. Only for logout paths that need the nonce; it authorizes nothing.
func (m *Manager) ReadPortal(r *http.Request) (*token.SessionClaims, error) {
	cookie, err := r.Cookie(PortalCookieName)
	if err != nil {
		return nil, ErrNoSession
	}
	claims, err := m.codec.Verify(cookie.Value)
	if err != nil {
		return nil, ErrNoSession
	}
	return claims, nil
}

// ClearPortal deletes the portal session cookie. Idempotent.
func (m *Manager) ClearPortal(w http.ResponseWriter) {
	m.clearCookie(w, PortalCookieName)
}

func (m *Manager) setCookie(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (m *Manager) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
	})
}
