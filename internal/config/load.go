// LandSpace - Marketing Platform Security Core
// Copyright 2026 LandSpace Tecnologia
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/landspace/landspace

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/landspace/landspace/internal/validation"
)

// Load builds the configuration from three layers, later layers winning:
//
//  1. struct defaults
//  2. YAML file at configPath (skipped when the file does not exist)
//  3. environment variables (SESSION_SECRET, ADMIN_PASSWORD, ...)
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load config file %s: %w", configPath, err)
			}
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envMappings maps flat environment variable names to config paths.
// Unmapped variables are ignored so unrelated environment noise never
// leaks into the config tree.
var envMappings = map[string]string{
	"landspace_host":              "server.host",
	"landspace_port":              "server.port",
	"landspace_shutdown_timeout":  "server.shutdown_timeout",
	"landspace_cors_origins":      "server.cors_origins",
	"landspace_global_rate_limit": "server.global_rate_limit",

	"log_level":  "logging.level",
	"log_format": "logging.format",

	"session_secret":         "session.secret",
	"session_admin_ttl":      "session.admin_ttl",
	"session_portal_ttl":     "session.portal_ttl",
	"session_secure_cookies": "session.secure_cookies",

	"admin_password":     "admin.password",
	"portal_access_code": "portal.access_code",
	"draft_secret":       "draft.secret",

	"rate_limit_ip":             "rate_limit.ip_limit",
	"rate_limit_identity":       "rate_limit.identity_limit",
	"rate_limit_window":         "rate_limit.window",
	"rate_limit_sweep_interval": "rate_limit.sweep_interval",

	"csrf_ttl": "csrf.ttl",

	"audit_buffer_size":      "audit.buffer_size",
	"audit_write_timeout":    "audit.write_timeout",
	"audit_retention_days":   "audit.retention_days",
	"audit_cleanup_interval": "audit.cleanup_interval",
	"audit_duckdb_path":      "audit.duckdb_path",

	"badger_path": "badger.path",
}

// envTransformFunc maps environment variable names to koanf config paths.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// Validate checks structural config constraints. The session secret is
// deliberately not required here: the gatekeeper fails open without it and
// the guards refuse to construct, which is the intended split.
func Validate(cfg *Config) error {
	if err := validation.ValidateStruct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
