// LandSpace - Marketing Platform Security Core
// Copyright 2026 LandSpace Tecnologia
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/landspace/landspace

// Package config loads layered configuration: struct defaults, then an
// optional YAML file, then environment variables. Later layers win.
package config

import (
	"time"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server" validate:"required"`
	Logging   LoggingConfig   `koanf:"logging"`
	Session   SessionConfig   `koanf:"session"`
	Admin     AdminConfig     `koanf:"admin"`
	Portal    PortalConfig    `koanf:"portal"`
	Draft     DraftConfig     `koanf:"draft"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	CSRF      CSRFConfig      `koanf:"csrf"`
	Audit     AuditConfig     `koanf:"audit"`
	Badger    BadgerConfig    `koanf:"badger"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	// Host to bind. Default: 0.0.0.0
	Host string `koanf:"host"`

	// Port to listen on. Default: 8080
	Port int `koanf:"port" validate:"min=1,max=65535"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// CORSOrigins are the allowed browser origins.
	CORSOrigins []string `koanf:"cors_origins"`

	// GlobalRateLimit is the coarse per-IP request ceiling per minute
	// applied to the whole API surface.
	GlobalRateLimit int `koanf:"global_rate_limit"`
}

// LoggingConfig holds log settings.
type LoggingConfig struct {
	// Level: trace, debug, info, warn, error. Default: info
	Level string `koanf:"level" validate:"omitempty,oneof=trace debug info warn error"`

	// Format: json or console. Default: json
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`
}

// SessionConfig holds token and cookie settings.
type SessionConfig struct {
	// Secret signs session tokens. Required in production; when empty the
	// edge gatekeeper fails open and the route guards refuse to start.
	Secret string `koanf:"secret"`

	// AdminTTL is the admin session lifetime. Default: 168h
	AdminTTL time.Duration `koanf:"admin_ttl"`

	// PortalTTL is the portal session lifetime. Default: 168h
	PortalTTL time.Duration `koanf:"portal_ttl"`

	// SecureCookies marks cookies Secure. Default: true
	SecureCookies bool `koanf:"secure_cookies"`
}

// AdminConfig holds the bootstrap admin credential.
type AdminConfig struct {
	// Password is the bootstrap admin password. Hashed with bcrypt at
	// startup; never held in plain form past initialization.
	Password string `koanf:"password"`
}

// PortalConfig holds the client portal credential settings.
type PortalConfig struct {
	// AccessCode is the shared portal access code, hashed at startup
	// like the admin password.
	AccessCode string `koanf:"access_code"`
}

// DraftConfig holds the draft preview link secret.
type DraftConfig struct {
	// Secret authorizes unpublished-content preview links.
	Secret string `koanf:"secret"`
}

// RateLimitConfig holds the dual-tier limiter settings.
type RateLimitConfig struct {
	// IPLimit per (scope, ip) window. Default: 30
	IPLimit int `koanf:"ip_limit" validate:"omitempty,min=1"`

	// IdentityLimit per (scope, ip, identity) window. Default: 5
	IdentityLimit int `koanf:"identity_limit" validate:"omitempty,min=1"`

	// Window is the fixed window length. Default: 60s
	Window time.Duration `koanf:"window"`

	// SweepInterval is how often expired counters are purged. Default: 5m
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// CSRFConfig holds CSRF guard settings.
type CSRFConfig struct {
	// TTL is the token cookie lifetime. Default: 30m
	TTL time.Duration `koanf:"ttl"`
}

// AuditConfig holds audit writer and retention settings.
type AuditConfig struct {
	// BufferSize is the async writer buffer. Default: 1000
	BufferSize int `koanf:"buffer_size" validate:"omitempty,min=1"`

	// WriteTimeout bounds each persistence call. Default: 5s
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// RetentionDays is how long entries are kept. Default: 90
	RetentionDays int `koanf:"retention_days" validate:"omitempty,min=1"`

	// CleanupInterval is how often retention runs. Default: 24h
	CleanupInterval time.Duration `koanf:"cleanup_interval"`

	// DuckDBPath is the audit database file. Empty selects the in-memory
	// store (development).
	DuckDBPath string `koanf:"duckdb_path"`
}

// BadgerConfig holds the revocation store settings.
type BadgerConfig struct {
	// Path is the Badger directory for the revocation set. Empty selects
	// the in-memory store.
	Path string `koanf:"path"`
}

// Default returns the built-in defaults, the lowest config layer.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ShutdownTimeout: 10 * time.Second,
			GlobalRateLimit: 300,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Session: SessionConfig{
			AdminTTL:      7 * 24 * time.Hour,
			PortalTTL:     7 * 24 * time.Hour,
			SecureCookies: true,
		},
		RateLimit: RateLimitConfig{
			IPLimit:       30,
			IdentityLimit: 5,
			Window:        60 * time.Second,
			SweepInterval: 5 * time.Minute,
		},
		CSRF: CSRFConfig{
			TTL: 30 * time.Minute,
		},
		Audit: AuditConfig{
			BufferSize:      1000,
			WriteTimeout:    5 * time.Second,
			RetentionDays:   90,
			CleanupInterval: 24 * time.Hour,
		},
	}
}
