// LandSpace - Marketing Platform Security Core
// Copyright 2026 LandSpace Tecnologia
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/landspace/landspace

package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGuard_Issue(t *testing.T) {
	g := NewGuard(Config{})

	rec := httptest.NewRecorder()
	token, err := g.Issue(rec)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if token == "" {
		t.Fatal("Issue() returned empty token")
	}

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == CookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatalf("Issue() did not set %s cookie", CookieName)
	}
	if cookie.Value != token {
		t.Error("cookie value differs from returned token")
	}
	if !cookie.HttpOnly {
		t.Error("csrf cookie is not httpOnly")
	}
	if cookie.MaxAge != int(DefaultTTL/time.Second) {
		t.Errorf("csrf cookie MaxAge = %d, want %d", cookie.MaxAge, int(DefaultTTL/time.Second))
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", got)
	}
	if got := rec.Header().Get("Pragma"); got != "no-cache" {
		t.Errorf("Pragma = %q, want no-cache", got)
	}

	// Two issuances never produce the same token.
	token2, err := g.Issue(httptest.NewRecorder())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if token == token2 {
		t.Error("Issue() produced duplicate tokens")
	}
}

func TestGuard_Validate(t *testing.T) {
	g := NewGuard(Config{})

	tests := []struct {
		name   string
		cookie string
		header string
		want   bool
	}{
		{"matching tokens", "abc123", "abc123", true},
		{"mismatched tokens", "abc123", "abc124", false},
		{"empty cookie", "", "abc123", false},
		{"empty header", "abc123", "", false},
		{"both empty", "", "", false},
		{"prefix only", "abc123", "abc", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.Validate(tt.cookie, tt.header); got != tt.want {
				t.Errorf("Validate(%q, %q) = %v, want %v", tt.cookie, tt.header, got, tt.want)
			}
		})
	}
}

func TestGuard_Middleware(t *testing.T) {
	g := NewGuard(Config{})
	handler := g.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	issueRec := httptest.NewRecorder()
	token, err := g.Issue(issueRec)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	tests := []struct {
		name       string
		method     string
		withCookie bool
		header     string
		wantStatus int
	}{
		{"GET passes without token", http.MethodGet, false, "", http.StatusOK},
		{"POST with valid pair", http.MethodPost, true, token, http.StatusOK},
		{"POST without header", http.MethodPost, true, "", http.StatusForbidden},
		{"POST without cookie", http.MethodPost, false, token, http.StatusForbidden},
		{"POST with wrong header", http.MethodPost, true, "wrong-token", http.StatusForbidden},
		{"DELETE without token", http.MethodDelete, false, "", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/admin/cleanup", nil)
			if tt.withCookie {
				req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
			}
			if tt.header != "" {
				req.Header.Set(HeaderName, tt.header)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
