// LandSpace - Marketing Platform Security Core
// Copyright 2026 LandSpace Tecnologia
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/landspace/landspace

package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Config holds the limits for both tiers. The window length is shared.
type Config struct {
	// IPLimit is the per-(scope, ip) attempt ceiling per window.
	// Default: 30
	IPLimit int

	// IdentityLimit is the per-(scope, ip, identity) ceiling per window.
	// Default: 5
	IdentityLimit int

	// Window is the fixed window length. Default: 60s
	Window time.Duration
}

// DefaultConfig returns the standard tiers: 30 attempts per IP and 5 per
// identity within a 60-second window.
func DefaultConfig() Config {
	return Config{
		IPLimit:       30,
		IdentityLimit: 5,
		Window:        60 * time.Second,
	}
}

// Result is the outcome of a rate-limit check.
type Result struct {
	// Allowed is true when every consulted tier is within its limit.
	Allowed bool

	// Remaining is the smallest remaining allowance across consulted tiers.
	Remaining int

	// ResetAt is when the tightest consulted window resets.
	ResetAt time.Time
}

// Limiter evaluates the dual-tier fixed-window policy against a Store.
type Limiter struct {
	store  Store
	config Config
}

// New creates a limiter over the given store. Zero config fields take the
// defaults.
func New(store Store, cfg Config) *Limiter {
	def := DefaultConfig()
	if cfg.IPLimit <= 0 {
		cfg.IPLimit = def.IPLimit
	}
	if cfg.IdentityLimit <= 0 {
		cfg.IdentityLimit = def.IdentityLimit
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	return &Limiter{store: store, config: cfg}
}

// Check records one attempt and reports whether it is allowed.
//
// The (scope, ip) tier is always consulted. The (scope, ip, identity) tier
// is consulted only when identity is non-empty, so callers can run
// IP-tier-only scopes (the admin login does this). Both counters increment
// on every attempt, allowed or not; a denial does not reveal which tier
// tripped.
func (l *Limiter) Check(ctx context.Context, scope, ip, identity string) (Result, error) {
	ipCount, ipReset, err := l.store.Increment(ctx, tierKey(scope, ip), l.config.Window)
	if err != nil {
		return Result{}, fmt.Errorf("increment ip tier: %w", err)
	}

	result := Result{
		Allowed:   ipCount <= l.config.IPLimit,
		Remaining: remaining(l.config.IPLimit, ipCount),
		ResetAt:   ipReset,
	}

	if identity == "" {
		return result, nil
	}

	idCount, idReset, err := l.store.Increment(ctx, tierKey(scope, ip, identity), l.config.Window)
	if err != nil {
		return Result{}, fmt.Errorf("increment identity tier: %w", err)
	}

	if idCount > l.config.IdentityLimit {
		result.Allowed = false
	}
	if r := remaining(l.config.IdentityLimit, idCount); r < result.Remaining {
		result.Remaining = r
		result.ResetAt = idReset
	}
	return result, nil
}

func remaining(limit, count int) int {
	if count >= limit {
		return 0
	}
	return limit - count
}

func tierKey(parts ...string) string {
	key := parts[0]
	for _, p := range parts[1:] {
		key += "|" + p
	}
	return key
}
