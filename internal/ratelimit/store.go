// LandSpace - Marketing Platform Security Core
// Copyright 2026 LandSpace Tecnologia
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/landspace/landspace

// Package ratelimit implements the dual-tier fixed-window rate limiter
// protecting the sensitive LandSpace endpoints.
//
// Every check consults two counters: a per-IP tier (coarse) and a
// per-IP-per-identity tier (fine). Both must be within their limits for the
// request to pass, and a denial never reveals which tier tripped.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Store persists fixed-window counters. Implementations must be safe for
// concurrent use; Increment must be atomic per key.
type Store interface {
	// Increment bumps the counter for key, starting a fresh window of the
	// given length if none is active, and returns the post-increment count
	// together with the instant the active window resets.
	Increment(ctx context.Context, key string, window time.Duration) (count int, resetAt time.Time, err error)
}

// window is a single fixed-window counter.
type window struct {
	count   int
	resetAt time.Time
}

// MemoryStore is the default in-memory Store. Windows reset lazily on
// increment; fully expired keys are removed by Cleanup.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window
}

// NewMemoryStore creates an empty in-memory counter store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		windows: make(map[string]*window),
	}
}

// Increment implements Store.
func (s *MemoryStore) Increment(_ context.Context, key string, d time.Duration) (int, time.Time, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{count: 0, resetAt: now.Add(d)}
		s.windows[key] = w
	}
	w.count++
	return w.count, w.resetAt, nil
}

// Len returns the number of tracked keys. Used by tests and metrics.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

// Cleanup removes keys whose window has expired and returns the number
// removed.
func (s *MemoryStore) Cleanup() int {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, w := range s.windows {
		if !now.Before(w.resetAt) {
			delete(s.windows, key)
			removed++
		}
	}
	return removed
}

// StartCleanupRoutine sweeps expired windows until ctx is canceled.
func (s *MemoryStore) StartCleanupRoutine(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Cleanup()
			}
		}
	}()
}
