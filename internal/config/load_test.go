// LandSpace - Marketing Platform Security Core
// Copyright 2026 LandSpace Tecnologia
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/landspace/landspace

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Session.AdminTTL != 7*24*time.Hour {
		t.Errorf("Session.AdminTTL = %v, want 168h", cfg.Session.AdminTTL)
	}
	if cfg.RateLimit.IPLimit != 30 || cfg.RateLimit.IdentityLimit != 5 {
		t.Errorf("RateLimit = %d/%d, want 30/5", cfg.RateLimit.IPLimit, cfg.RateLimit.IdentityLimit)
	}
	if cfg.CSRF.TTL != 30*time.Minute {
		t.Errorf("CSRF.TTL = %v, want 30m", cfg.CSRF.TTL)
	}
	if cfg.Session.Secret != "" {
		t.Errorf("Session.Secret = %q, want empty default", cfg.Session.Secret)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SESSION_SECRET", "from-env")
	t.Setenv("ADMIN_PASSWORD", "hunter2")
	t.Setenv("LANDSPACE_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RATE_LIMIT_IDENTITY", "3")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Session.Secret != "from-env" {
		t.Errorf("Session.Secret = %q, want from-env", cfg.Session.Secret)
	}
	if cfg.Admin.Password != "hunter2" {
		t.Errorf("Admin.Password = %q, want hunter2", cfg.Admin.Password)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.RateLimit.IdentityLimit != 3 {
		t.Errorf("RateLimit.IdentityLimit = %d, want 3", cfg.RateLimit.IdentityLimit)
	}
}

func TestLoad_UnmappedEnvIgnored(t *testing.T) {
	t.Setenv("RANDOM_VARIABLE", "noise")

	if _, err := Load(""); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("server:\n  port: 3000\nsession:\n  secret: from-file\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.Session.Secret != "from-file" {
		t.Errorf("Session.Secret = %q, want from-file", cfg.Session.Secret)
	}
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("session:\n  secret: from-file\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv("SESSION_SECRET", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Session.Secret != "from-env" {
		t.Errorf("Session.Secret = %q, want env to win over file", cfg.Session.Secret)
	}
}

func TestLoad_InvalidPortRejected(t *testing.T) {
	t.Setenv("LANDSPACE_PORT", "70000")

	if _, err := Load(""); err == nil {
		t.Error("Load() with port 70000 succeeded, want validation error")
	}
}
