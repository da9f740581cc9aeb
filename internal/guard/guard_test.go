// LandSpace - Marketing Platform Security Core
// Copyright 2026 LandSpace Tecnologia
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/landspace/landspace

package guard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/landspace/landspace/internal/session"
	"github.com/landspace/landspace/internal/token"
)

func newTestGuard(t *testing.T) (*Guard, *session.Manager, *session.MemoryRevocationStore) {
	t.Helper()
	codec, err := token.NewCodec("guard-test-secret")
	if err != nil {
		t.Fatalf("NewCodec() error = %v", err)
	}
	manager := session.NewManager(codec, session.Config{Secure: false})
	revocations := session.NewMemoryRevocationStore()

	g, err := New(manager, revocations)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return g, manager, revocations
}

func requestWithCookies(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	return req
}

func TestNew_RequiresManager(t *testing.T) {
	if _, err := New(nil, nil); !errors.Is(err, ErrMisconfigured) {
		t.Errorf("New(nil) error = %v, want ErrMisconfigured", err)
	}
}

func TestGuard_RequireAdmin(t *testing.T) {
	g, manager, _ := newTestGuard(t)

	rec := httptest.NewRecorder()
	created, err := manager.CreateAdmin(rec)
	if err != nil {
		t.Fatalf("CreateAdmin() error = %v", err)
	}

	claims, err := g.RequireAdmin(requestWithCookies(rec))
	if err != nil {
		t.Fatalf("RequireAdmin() error = %v", err)
	}
	if claims.Nonce != created.Nonce {
		t.Errorf("RequireAdmin() nonce = %q, want %q", claims.Nonce, created.Nonce)
	}

	if _, err := g.RequireAdmin(httptest.NewRequest(http.MethodGet, "/", nil)); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("RequireAdmin(no cookie) error = %v, want ErrUnauthorized", err)
	}
}

func TestGuard_RevokedSessionRejected(t *testing.T) {
	g, manager, revocations := newTestGuard(t)

	rec := httptest.NewRecorder()
	created, err := manager.CreateAdmin(rec)
	if err != nil {
		t.Fatalf("CreateAdmin() error = %v", err)
	}

	req := requestWithCookies(rec)
	if _, err := g.RequireAdmin(req); err != nil {
		t.Fatalf("RequireAdmin() before revocation error = %v", err)
	}

	if err := revocations.Revoke(context.Background(), created.Nonce, time.Hour); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}

	if _, err := g.RequireAdmin(req); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("RequireAdmin(revoked) error = %v, want ErrUnauthorized", err)
	}
	if got := g.AdminSession(req); got != nil {
		t.Errorf("AdminSession(revoked) = %+v, want nil", got)
	}
}

func TestGuard_PortalSession(t *testing.T) {
	g, manager, revocations := newTestGuard(t)

	rec := httptest.NewRecorder()
	created, err := manager.CreatePortal(rec, "LS-2026-0042")
	if err != nil {
		t.Fatalf("CreatePortal() error = %v", err)
	}

	req := requestWithCookies(rec)

	if got := g.PortalSession(req, "LS-2026-0042"); got == nil {
		t.Error("PortalSession(matching) = nil, want claims")
	}
	if got := g.PortalSession(req, "LS-2026-0001"); got != nil {
		t.Error("PortalSession(mismatched protocol) != nil, want nil")
	}

	if err := revocations.Revoke(context.Background(), created.Nonce, time.Hour); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	if got := g.PortalSession(req, "LS-2026-0042"); got != nil {
		t.Error("PortalSession(revoked) != nil, want nil")
	}
}

// brokenRevocations always errors; the guard must treat that as not revoked.
type brokenRevocations struct{}

func (brokenRevocations) Revoke(context.Context, string, time.Duration) error {
	return errors.New("store down")
}

func (brokenRevocations) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("store down")
}

func TestGuard_RevocationStoreFailureDoesNotLockOut(t *testing.T) {
	codec, err := token.NewCodec("guard-test-secret")
	if err != nil {
		t.Fatalf("NewCodec() error = %v", err)
	}
	manager := session.NewManager(codec, session.Config{})
	g, err := New(manager, brokenRevocations{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	rec := httptest.NewRecorder()
	if _, err := manager.CreateAdmin(rec); err != nil {
		t.Fatalf("CreateAdmin() error = %v", err)
	}

	if _, err := g.RequireAdmin(requestWithCookies(rec)); err != nil {
		t.Errorf("RequireAdmin() with broken revocation store error = %v, want nil", err)
	}
}
