// LandSpace - Marketing Platform Security Core
// Copyright 2026 LandSpace Tecnologia
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/landspace/landspace

package gatekeeper

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/landspace/landspace/internal/session"
	"github.com/landspace/landspace/internal/token"
)

const testSecret = "gatekeeper-test-secret"

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func validAdminCookie(t *testing.T) *http.Cookie {
	t.Helper()
	codec, err := token.NewCodec(testSecret)
	if err != nil {
		t.Fatalf("NewCodec() error = %v", err)
	}
	signed, err := codec.Sign(token.SessionClaims{Authenticated: true, Nonce: "n"}, time.Hour)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	return &http.Cookie{Name: session.AdminCookieName, Value: signed}
}

func TestGatekeeper_Decisions(t *testing.T) {
	expiredCodec, err := token.NewCodec(testSecret)
	if err != nil {
		t.Fatalf("NewCodec() error = %v", err)
	}
	expired, err := expiredCodec.Sign(token.SessionClaims{Authenticated: true, Nonce: "n"}, -time.Minute)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	tests := []struct {
		name       string
		path       string
		cookie     *http.Cookie
		wantStatus int
	}{
		{"non-admin path passes without cookie", "/api/contato", nil, http.StatusOK},
		{"login allowlisted", "/api/admin/login", nil, http.StatusOK},
		{"logout allowlisted", "/api/admin/logout", nil, http.StatusOK},
		{"admin path without cookie", "/api/admin/session", nil, http.StatusUnauthorized},
		{"admin path with valid cookie", "/api/admin/session", validAdminCookie(t), http.StatusOK},
		{"admin path with garbage cookie", "/api/admin/audit", &http.Cookie{Name: session.AdminCookieName, Value: "junk"}, http.StatusUnauthorized},
		{"admin path with expired cookie", "/api/admin/audit", &http.Cookie{Name: session.AdminCookieName, Value: expired}, http.StatusUnauthorized},
		{"nested admin path guarded", "/api/admin/cleanup", nil, http.StatusUnauthorized},
		{"bare prefix guarded", "/api/admin", nil, http.StatusUnauthorized},
		{"sibling path not intercepted", "/api/adminfoo", nil, http.StatusOK},
		{"sibling nested path not intercepted", "/api/administration/users", nil, http.StatusOK},
	}

	g := New(testSecret)
	handler := g.Middleware(okHandler())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestGatekeeper_UnauthorizedShape(t *testing.T) {
	g := New(testSecret)
	handler := g.Middleware(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/admin/session", nil)
	req.Header.Set(RequestIDHeader, "inbound-id-123")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if got := rec.Header().Get(RequestIDHeader); got != "inbound-id-123" {
		t.Errorf("x-request-id = %q, want echoed inbound value", got)
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", got)
	}
	if got := rec.Header().Get("Pragma"); got != "no-cache" {
		t.Errorf("Pragma = %q, want no-cache", got)
	}

	var body struct {
		Error     string `json:"error"`
		RequestID string `json:"requestId"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error != "unauthorized" {
		t.Errorf("body.error = %q, want unauthorized", body.Error)
	}
	if body.RequestID != "inbound-id-123" {
		t.Errorf("body.requestId = %q, want inbound-id-123", body.RequestID)
	}
}

func TestGatekeeper_GeneratesRequestID(t *testing.T) {
	g := New(testSecret)
	handler := g.Middleware(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/admin/session", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("401 without inbound id must generate x-request-id")
	}
}

func TestGatekeeper_FailOpenWithoutSecret(t *testing.T) {
	g := New("")
	handler := g.Middleware(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/admin/session", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 (fail-open without secret)", rec.Code)
	}
}
