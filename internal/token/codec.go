// LandSpace - Marketing Platform Security Core
// Copyright 2026 LandSpace Tecnologia
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/landspace/landspace

// Package token implements the HMAC-SHA256 session token codec.
//
// Tokens are standard JWTs signed with a symmetric secret. Verification is
// pure CPU with no I/O, so the same codec serves both the edge gatekeeper
// and the authoritative route guards.
//
// Security properties:
//   - Only HS256 is accepted; tokens signed with any other algorithm are
//     rejected (prevents algorithm-confusion attacks)
//   - Every verification failure collapses to ErrInvalid so callers cannot
//     distinguish malformed, forged, and expired tokens
//   - Claims must carry authenticated=true and an expiry to verify
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalid is returned for every token verification failure: malformed
// input, bad signature, wrong algorithm, expiry in the past, or a claim
// shape that does not describe an authenticated session. Collapsing the
// failure modes avoids giving callers (and attackers) a validity oracle.
var ErrInvalid = errors.New("token: invalid session token")

// ErrEmptySecret is returned by NewCodec when no signing secret is configured.
var ErrEmptySecret = errors.New("token: signing secret is empty")

// SessionClaims is the claim set carried by every LandSpace session token.
type SessionClaims struct {
	// Authenticated must be true for the token to verify.
	Authenticated bool `json:"authenticated"`

	// Nonce is a per-session random identifier, used by the revocation set.
	Nonce string `json:"nonce"`

	// Protocol binds a portal session to a single client project.
	// Empty for admin sessions.
	Protocol string `json:"protocol,omitempty"`

	jwt.RegisteredClaims
}

// Codec signs and verifies session tokens with a shared HS256 secret.
type Codec struct {
	secret []byte
}

// NewCodec creates a codec from the configured session secret.
// An empty secret is a hard configuration error: the server side never
// operates without one (the edge gatekeeper handles that case itself).
func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Codec{secret: []byte(secret)}, nil
}

// Sign mints a signed token for the given claims, stamping issued-at now
// and expiry now+ttl. The caller supplies the nonce and optional protocol.
func (c *Codec) Sign(claims SessionClaims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Verify parses and validates a token string and returns its claims.
// Any failure, of any kind, returns ErrInvalid.
func (c *Codec) Verify(tokenString string) (*SessionClaims, error) {
	if tokenString == "" {
		return nil, ErrInvalid
	}

	claims := &SessionClaims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalid
		}
		return c.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())

	if err != nil || !tok.Valid {
		return nil, ErrInvalid
	}
	if !claims.Authenticated {
		return nil, ErrInvalid
	}
	return claims, nil
}
