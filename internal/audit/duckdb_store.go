// LandSpace - Marketing Platform Security Core
// Copyright 2026 LandSpace Tecnologia
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/landspace/landspace

package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// DuckDBStore implements Store on DuckDB for durable audit persistence.
type DuckDBStore struct {
	db *sql.DB
}

// NewDuckDBStore creates a DuckDB-backed audit store over an open
// database/sql handle using the "duckdb" driver.
func NewDuckDBStore(db *sql.DB) *DuckDBStore {
	return &DuckDBStore{db: db}
}

// CreateTable creates the audit_entries table and its indexes if they do
// not exist. Call during database initialization.
func (s *DuckDBStore) CreateTable(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS audit_entries (
			id TEXT PRIMARY KEY,
			request_id TEXT,
			action TEXT NOT NULL,
			ip_address TEXT,
			user_agent TEXT,
			success BOOLEAN NOT NULL,
			error_message TEXT,
			metadata JSON,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_entries_created_at ON audit_entries(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_entries_action ON audit_entries(action)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create audit schema: %w", err)
		}
	}
	return nil
}

// Append implements Store.
func (s *DuckDBStore) Append(ctx context.Context, entry *Entry) error {
	var metadata interface{}
	if entry.Metadata != nil {
		data, err := json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("marshal audit metadata: %w", err)
		}
		metadata = string(data)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_entries
			(id, request_id, action, ip_address, user_agent, success, error_message, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.RequestID,
		string(entry.Action),
		entry.IPAddress,
		entry.UserAgent,
		entry.Success,
		nullableString(entry.ErrorMessage),
		metadata,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// Query implements Store. Entries are returned newest first.
func (s *DuckDBStore) Query(ctx context.Context, filter QueryFilter) ([]*Entry, error) {
	where, args := buildWhere(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	args = append(args, limit, filter.Offset)

	query := `
		SELECT id, request_id, action, ip_address, user_agent, success, error_message, metadata, created_at
		FROM audit_entries` + where + `
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}

// Count implements Store.
func (s *DuckDBStore) Count(ctx context.Context, filter QueryFilter) (int64, error) {
	where, args := buildWhere(filter)

	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_entries"+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count audit entries: %w", err)
	}
	return count, nil
}

// DeleteOlderThan implements Store.
func (s *DuckDBStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM audit_entries WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired audit entries: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return removed, nil
}

// buildWhere assembles the WHERE clause for a filter.
func buildWhere(filter QueryFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if len(filter.Actions) > 0 {
		placeholders := make([]string, len(filter.Actions))
		for i, a := range filter.Actions {
			placeholders[i] = "?"
			args = append(args, string(a))
		}
		conditions = append(conditions, fmt.Sprintf("action IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Success != nil {
		conditions = append(conditions, "success = ?")
		args = append(args, *filter.Success)
	}
	if !filter.Since.IsZero() {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, filter.Since)
	}
	if !filter.Until.IsZero() {
		conditions = append(conditions, "created_at < ?")
		args = append(args, filter.Until)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// scanEntry reads one row into an Entry.
func scanEntry(rows *sql.Rows) (*Entry, error) {
	var entry Entry
	var action string
	var requestID, ipAddress, userAgent, errorMessage, metadata sql.NullString

	err := rows.Scan(
		&entry.ID,
		&requestID,
		&action,
		&ipAddress,
		&userAgent,
		&entry.Success,
		&errorMessage,
		&metadata,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan audit entry: %w", err)
	}

	entry.Action = Action(action)
	entry.RequestID = requestID.String
	entry.IPAddress = ipAddress.String
	entry.UserAgent = userAgent.String
	entry.ErrorMessage = errorMessage.String

	if metadata.Valid && metadata.String != "" {
		if err := json.Unmarshal([]byte(metadata.String), &entry.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal audit metadata: %w", err)
		}
	}
	return &entry, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
