// LandSpace - Marketing Platform Security Core
// Copyright 2026 LandSpace Tecnologia
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/landspace/landspace

package api

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is the work factor for credential hashing.
const bcryptCost = 12

// Credential is a bootstrap password hashed at startup. The plain value is
// never retained past construction.
type Credential struct {
	hash []byte
}

// NewCredential hashes a configured plain credential. An empty plain value
// returns nil: the credential is disabled and never verifies.
func NewCredential(plain string) (*Credential, error) {
	if plain == "" {
		return nil, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash credential: %w", err)
	}
	return &Credential{hash: hash}, nil
}

// Verify reports whether the attempt matches. A nil (disabled) credential
// rejects everything.
func (c *Credential) Verify(attempt string) bool {
	if c == nil || attempt == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(c.hash, []byte(attempt)) == nil
}
