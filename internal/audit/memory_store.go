// LandSpace - Marketing Platform Security Core
// Copyright 2026 LandSpace Tecnologia
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/landspace/landspace

package audit

import (
	"context"
	"sync"
	"time"
)

// defaultQueryLimit caps unbounded queries.
const defaultQueryLimit = 100

// MemoryStore is an in-memory audit store for development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []*Entry
}

// NewMemoryStore creates an empty in-memory audit store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append implements Store.
func (s *MemoryStore) Append(_ context.Context, entry *Entry) error {
	cp := *entry
	if cp.Metadata != nil {
		meta := make(map[string]interface{}, len(entry.Metadata))
		for k, v := range entry.Metadata {
			meta[k] = v
		}
		cp.Metadata = meta
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, &cp)
	return nil
}

// Query implements Store. Entries are returned newest first.
func (s *MemoryStore) Query(_ context.Context, filter QueryFilter) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}

	var matched []*Entry
	for i := len(s.entries) - 1; i >= 0; i-- {
		if matchesFilter(s.entries[i], filter) {
			matched = append(matched, s.entries[i])
		}
	}

	if filter.Offset >= len(matched) {
		return nil, nil
	}
	matched = matched[filter.Offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}

	out := make([]*Entry, len(matched))
	for i, e := range matched {
		cp := *e
		out[i] = &cp
	}
	return out, nil
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context, filter QueryFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, e := range s.entries {
		if matchesFilter(e, filter) {
			n++
		}
	}
	return n, nil
}

// DeleteOlderThan implements Store.
func (s *MemoryStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0]
	var removed int64
	for _, e := range s.entries {
		if e.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept
	return removed, nil
}

func matchesFilter(e *Entry, filter QueryFilter) bool {
	if len(filter.Actions) > 0 {
		found := false
		for _, a := range filter.Actions {
			if e.Action == a {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.Success != nil && e.Success != *filter.Success {
		return false
	}
	if !filter.Since.IsZero() && e.CreatedAt.Before(filter.Since) {
		return false
	}
	if !filter.Until.IsZero() && !e.CreatedAt.Before(filter.Until) {
		return false
	}
	return true
}
