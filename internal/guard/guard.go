// LandSpace - Marketing Platform Security Core
// Copyright 2026 LandSpace Tecnologia
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/landspace/landspace

// Package guard provides the authoritative per-route session checks.
//
// Unlike the edge gatekeeper, guards never fail open: construction requires
// a fully configured session manager, and every call re-verifies signature,
// expiry, and claim shape. Guards additionally consult the revocation set,
// which the stateless edge path does not see.
package guard

import (
	"errors"
	"net/http"

	"github.com/landspace/landspace/internal/logging"
	"github.com/landspace/landspace/internal/session"
	"github.com/landspace/landspace/internal/token"
)

// ErrUnauthorized is returned by RequireAdmin when the request carries no
// valid, unrevoked admin session.
var ErrUnauthorized = errors.New("guard: unauthorized")

// ErrMisconfigured is returned by New when the guard would have nothing to
// verify against. The server side hard-fails on missing configuration.
var ErrMisconfigured = errors.New("guard: session manager is required")

// Guard performs authoritative session verification for handlers.
type Guard struct {
	sessions    *session.Manager
	revocations session.RevocationStore
}

// New creates a guard. The session manager is mandatory (it can only be
// built from a non-empty secret); the revocation store is optional.
func New(sessions *session.Manager, revocations session.RevocationStore) (*Guard, error) {
	if sessions == nil {
		return nil, ErrMisconfigured
	}
	return &Guard{sessions: sessions, revocations: revocations}, nil
}

// RequireAdmin returns the admin session claims or ErrUnauthorized.
func (g *Guard) RequireAdmin(r *http.Request) (*token.SessionClaims, error) {
	claims, err := g.sessions.GetAdmin(r)
	if err != nil {
		return nil, ErrUnauthorized
	}
	if g.isRevoked(r, claims.Nonce) {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

// AdminSession returns the admin session claims, or nil when the request
// carries none. Use for handlers that merely adapt to session presence.
func (g *Guard) AdminSession(r *http.Request) *token.SessionClaims {
	claims, err := g.RequireAdmin(r)
	if err != nil {
		return nil
	}
	return claims
}

// PortalSession returns the portal session claims bound to protocol, or
// nil. A protocol mismatch looks identical to no session.
func (g *Guard) PortalSession(r *http.Request, protocol string) *token.SessionClaims {
	claims, err := g.sessions.GetPortal(r, protocol)
	if err != nil {
		return nil
	}
	if g.isRevoked(r, claims.Nonce) {
		return nil
	}
	return claims
}

// isRevoked consults the revocation set. A store failure is logged and
// treated as not revoked so a degraded denylist cannot take sessions down.
func (g *Guard) isRevoked(r *http.Request, nonce string) bool {
	if g.revocations == nil {
		return false
	}
	revoked, err := g.revocations.IsRevoked(r.Context(), nonce)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("revocation check failed")
		return false
	}
	return revoked
}
