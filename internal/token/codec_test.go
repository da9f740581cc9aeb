// LandSpace - Marketing Platform Security Core
// Copyright 2026 LandSpace Tecnologia
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/landspace/landspace

package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-key-for-token-codec"

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec(testSecret)
	if err != nil {
		t.Fatalf("NewCodec() error = %v", err)
	}
	return c
}

func TestNewCodec_EmptySecret(t *testing.T) {
	_, err := NewCodec("")
	if !errors.Is(err, ErrEmptySecret) {
		t.Errorf("NewCodec(\"\") error = %v, want ErrEmptySecret", err)
	}
}

func TestCodec_SignVerifyRoundTrip(t *testing.T) {
	c := newTestCodec(t)

	tests := []struct {
		name   string
		claims SessionClaims
	}{
		{
			name:   "admin session",
			claims: SessionClaims{Authenticated: true, Nonce: "nonce-1"},
		},
		{
			name:   "portal session with protocol",
			claims: SessionClaims{Authenticated: true, Nonce: "nonce-2", Protocol: "LS-2026-0042"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signed, err := c.Sign(tt.claims, time.Hour)
			if err != nil {
				t.Fatalf("Sign() error = %v", err)
			}

			got, err := c.Verify(signed)
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if !got.Authenticated {
				t.Error("Verify() claims.Authenticated = false")
			}
			if got.Nonce != tt.claims.Nonce {
				t.Errorf("Verify() nonce = %q, want %q", got.Nonce, tt.claims.Nonce)
			}
			if got.Protocol != tt.claims.Protocol {
				t.Errorf("Verify() protocol = %q, want %q", got.Protocol, tt.claims.Protocol)
			}
			if got.ExpiresAt == nil || got.IssuedAt == nil {
				t.Error("Verify() missing exp/iat registered claims")
			}
		})
	}
}

func TestCodec_VerifyFailures(t *testing.T) {
	c := newTestCodec(t)

	valid, err := c.Sign(SessionClaims{Authenticated: true, Nonce: "n"}, time.Hour)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	other, err := NewCodec("a-completely-different-secret")
	if err != nil {
		t.Fatalf("NewCodec() error = %v", err)
	}
	wrongSecret, err := other.Sign(SessionClaims{Authenticated: true, Nonce: "n"}, time.Hour)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	expired, err := c.Sign(SessionClaims{Authenticated: true, Nonce: "n"}, -time.Minute)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	unauthenticated, err := c.Sign(SessionClaims{Authenticated: false, Nonce: "n"}, time.Hour)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	// Token with alg=none, no signature.
	noneTok := jwt.NewWithClaims(jwt.SigningMethodNone, SessionClaims{Authenticated: true, Nonce: "n"})
	noneSigned, err := noneTok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString(none) error = %v", err)
	}

	tampered := valid[:len(valid)-4] + "AAAA"

	tests := []struct {
		name  string
		token string
	}{
		{"empty string", ""},
		{"garbage", "not.a.token"},
		{"wrong secret", wrongSecret},
		{"expired", expired},
		{"authenticated false", unauthenticated},
		{"alg none", noneSigned},
		{"tampered signature", tampered},
		{"missing segments", strings.Split(valid, ".")[0]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Verify(tt.token)
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Verify() error = %v, want ErrInvalid", err)
			}
			if got != nil {
				t.Errorf("Verify() claims = %+v, want nil", got)
			}
		})
	}
}

func TestCodec_VerifyRequiresExpiry(t *testing.T) {
	// A token hand-built without exp must not verify.
	claims := SessionClaims{Authenticated: true, Nonce: "n"}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}

	c := newTestCodec(t)
	if _, err := c.Verify(signed); !errors.Is(err, ErrInvalid) {
		t.Errorf("Verify(no exp) error = %v, want ErrInvalid", err)
	}
}
