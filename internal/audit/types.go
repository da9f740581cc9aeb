// LandSpace - Marketing Platform Security Core
// Copyright 2026 LandSpace Tecnologia
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/landspace/landspace

// Package audit provides append-only security audit logging with DuckDB
// persistence and an asynchronous fire-and-forget writer.
package audit

import (
	"context"
	"time"
)

// Action identifies an auditable security event. The set is closed: only
// these values are ever written.
type Action string

const (
	ActionAdminLoginSuccess  Action = "ADMIN_LOGIN_SUCCESS"
	ActionAdminLoginFailed   Action = "ADMIN_LOGIN_FAILED"
	ActionAdminLogout        Action = "ADMIN_LOGOUT"
	ActionPortalLoginSuccess Action = "PORTAL_LOGIN_SUCCESS"
	ActionPortalLoginFailed  Action = "PORTAL_LOGIN_FAILED"
	ActionPortalLogout       Action = "PORTAL_LOGOUT"
	ActionSessionRevoked     Action = "SESSION_REVOKED"
	ActionCleanupExecuted    Action = "CLEANUP_EXECUTED"
	ActionContactSubmitted   Action = "CONTACT_SUBMITTED"
)

// validActions is the closed enum set.
var validActions = map[Action]struct{}{
	ActionAdminLoginSuccess:  {},
	ActionAdminLoginFailed:   {},
	ActionAdminLogout:        {},
	ActionPortalLoginSuccess: {},
	ActionPortalLoginFailed:  {},
	ActionPortalLogout:       {},
	ActionSessionRevoked:     {},
	ActionCleanupExecuted:    {},
	ActionContactSubmitted:   {},
}

// Valid reports whether a is one of the closed enum values.
func (a Action) Valid() bool {
	_, ok := validActions[a]
	return ok
}

// Entry is a single append-only audit record. Entries are never updated or
// deleted individually; only retention cleanup removes them in bulk.
type Entry struct {
	// ID is a server-generated UUID.
	ID string `json:"id"`

	// RequestID correlates the entry with the HTTP request that caused it.
	RequestID string `json:"requestId"`

	// Action is the closed-enum event type.
	Action Action `json:"action"`

	// IPAddress is the caller's IP.
	IPAddress string `json:"ipAddress"`

	// UserAgent is the caller's User-Agent header.
	UserAgent string `json:"userAgent"`

	// Success records the outcome of the audited operation.
	Success bool `json:"success"`

	// ErrorMessage carries the failure reason, empty on success.
	ErrorMessage string `json:"errorMessage,omitempty"`

	// Metadata holds optional structured context, stored as JSON.
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	// CreatedAt is the server-side timestamp.
	CreatedAt time.Time `json:"createdAt"`
}

// QueryFilter narrows audit queries. Zero values mean "no constraint".
type QueryFilter struct {
	// Actions filters to the given action types.
	Actions []Action

	// Success filters by outcome when non-nil.
	Success *bool

	// Since / Until bound CreatedAt (inclusive lower, exclusive upper).
	Since time.Time
	Until time.Time

	// Limit and Offset paginate. Limit 0 means the store default.
	Limit  int
	Offset int
}

// Store persists audit entries. Append-only: no update or single delete.
type Store interface {
	// Append persists one entry.
	Append(ctx context.Context, entry *Entry) error

	// Query returns entries matching the filter, newest first.
	Query(ctx context.Context, filter QueryFilter) ([]*Entry, error)

	// Count returns the number of entries matching the filter.
	Count(ctx context.Context, filter QueryFilter) (int64, error)

	// DeleteOlderThan removes entries created before cutoff and returns the
	// number removed. This is the retention path, not a general delete.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
