// LandSpace - Marketing Platform Security Core
// Copyright 2026 LandSpace Tecnologia
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/landspace/landspace

package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// RevocationStore denylists session nonces. It is consulted only by the
// authoritative route guards; the edge gatekeeper stays stateless.
type RevocationStore interface {
	// Revoke marks a nonce as revoked for the given duration, which should
	// cover the token's remaining lifetime.
	Revoke(ctx context.Context, nonce string, ttl time.Duration) error

	// IsRevoked reports whether a nonce has been revoked.
	IsRevoked(ctx context.Context, nonce string) (bool, error)
}

// MemoryRevocationStore is an in-memory revocation set for development and
// tests. Entries expire lazily and via the cleanup routine.
type MemoryRevocationStore struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
}

// NewMemoryRevocationStore creates an empty in-memory revocation store.
func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{
		revoked: make(map[string]time.Time),
	}
}

// Revoke marks a nonce as revoked until now+ttl.
func (s *MemoryRevocationStore) Revoke(_ context.Context, nonce string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[nonce] = time.Now().Add(ttl)
	return nil
}

// IsRevoked reports whether a nonce is currently revoked.
func (s *MemoryRevocationStore) IsRevoked(_ context.Context, nonce string) (bool, error) {
	s.mu.RLock()
	expiry, ok := s.revoked[nonce]
	s.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if time.Now().After(expiry) {
		s.mu.Lock()
		delete(s.revoked, nonce)
		s.mu.Unlock()
		return false, nil
	}
	return true, nil
}

// Cleanup removes expired entries and returns the number removed.
func (s *MemoryRevocationStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	removed := 0
	for nonce, expiry := range s.revoked {
		if now.After(expiry) {
			delete(s.revoked, nonce)
			removed++
		}
	}
	return removed
}

// StartCleanupRoutine sweeps expired entries until ctx is canceled.
func (s *MemoryRevocationStore) StartCleanupRoutine(ctx context.Context, interval time.Duration) {
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

// revocationKeyPrefix namespaces revocation entries in BadgerDB.
const revocationKeyPrefix = "revoked:"

// BadgerRevocationStore is a durable revocation set backed by BadgerDB.
// Entry TTLs match the revocation duration, so Badger's own expiry handles
// cleanup.
type BadgerRevocationStore struct {
	db *badger.DB
}

// NewBadgerRevocationStore creates a revocation store over an open Badger DB.
func NewBadgerRevocationStore(db *badger.DB) *BadgerRevocationStore {
	return &BadgerRevocationStore{db: db}
}

// Revoke marks a nonce as revoked with a Badger entry TTL.
func (s *BadgerRevocationStore) Revoke(_ context.Context, nonce string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(revocationKeyPrefix+nonce), []byte{1}).WithTTL(ttl)
		return txn.SetEntry(entry)
	})
}

// IsRevoked reports whether a nonce is currently revoked.
func (s *BadgerRevocationStore) IsRevoked(_ context.Context, nonce string) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(revocationKeyPrefix + nonce))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
