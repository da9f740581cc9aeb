// LandSpace - Marketing Platform Security Core
// Copyright 2026 LandSpace Tecnologia
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/landspace/landspace

package audit

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"
)

func TestWriter_RecordAndDrain(t *testing.T) {
	store := NewMemoryStore()
	w := NewWriter(store, WriterConfig{BufferSize: 16})

	w.Record(Entry{
		Action:    ActionAdminLoginSuccess,
		RequestID: "req-1",
		IPAddress: "10.0.0.1",
		Success:   true,
	})
	w.Record(Entry{
		Action:       ActionAdminLoginFailed,
		RequestID:    "req-2",
		IPAddress:    "10.0.0.1",
		Success:      false,
		ErrorMessage: "Senha inválida",
	})
	w.Close()

	entries, err := store.Query(context.Background(), QueryFilter{})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries after drain = %d, want 2", len(entries))
	}
	for _, e := range entries {
		if e.ID == "" {
			t.Error("entry persisted without generated ID")
		}
		if e.CreatedAt.IsZero() {
			t.Error("entry persisted without timestamp")
		}
	}
}

func TestWriter_InvalidActionDropped(t *testing.T) {
	store := NewMemoryStore()
	w := NewWriter(store, WriterConfig{BufferSize: 4})

	w.Record(Entry{Action: Action("NOT_A_REAL_ACTION")})
	w.Close()

	count, err := store.Count(context.Background(), QueryFilter{})
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0 for invalid action", count)
	}
}

// failingStore always errors to exercise the fire-and-forget path.
type failingStore struct {
	MemoryStore
}

func (s *failingStore) Append(context.Context, *Entry) error {
	return errors.New("disk on fire")
}

func TestWriter_StoreFailureNotPropagated(t *testing.T) {
	w := NewWriter(&failingStore{}, WriterConfig{BufferSize: 4})

	// Must not panic or block.
	w.Record(Entry{Action: ActionAdminLogout, Success: true})
	w.Close()
}

func TestWriter_RecordRequest(t *testing.T) {
	store := NewMemoryStore()
	w := NewWriter(store, WriterConfig{BufferSize: 4})

	req := httptest.NewRequest("POST", "/api/contato", nil)
	req.RemoteAddr = "203.0.113.9:4411"
	req.Header.Set("User-Agent", "landspace-test")

	w.RecordRequest(req, ActionContactSubmitted, true, "", map[string]interface{}{"email": "a@b.com"})
	w.Close()

	entries, err := store.Query(context.Background(), QueryFilter{})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.IPAddress != "203.0.113.9" {
		t.Errorf("IPAddress = %q, want 203.0.113.9", e.IPAddress)
	}
	if e.UserAgent != "landspace-test" {
		t.Errorf("UserAgent = %q, want landspace-test", e.UserAgent)
	}
	if e.Metadata["email"] != "a@b.com" {
		t.Errorf("Metadata[email] = %v, want a@b.com", e.Metadata["email"])
	}
}

func TestMemoryStore_QueryFilters(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	now := time.Now()
	entries := []*Entry{
		{ID: "1", Action: ActionAdminLoginSuccess, Success: true, CreatedAt: now.Add(-3 * time.Hour)},
		{ID: "2", Action: ActionAdminLoginFailed, Success: false, CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "3", Action: ActionAdminLoginFailed, Success: false, CreatedAt: now.Add(-1 * time.Hour)},
		{ID: "4", Action: ActionContactSubmitted, Success: true, CreatedAt: now},
	}
	for _, e := range entries {
		if err := store.Append(ctx, e); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	failed := false

	tests := []struct {
		name    string
		filter  QueryFilter
		wantIDs []string
	}{
		{
			name:    "no filter newest first",
			filter:  QueryFilter{},
			wantIDs: []string{"4", "3", "2", "1"},
		},
		{
			name:    "by action",
			filter:  QueryFilter{Actions: []Action{ActionAdminLoginFailed}},
			wantIDs: []string{"3", "2"},
		},
		{
			name:    "by success",
			filter:  QueryFilter{Success: &failed},
			wantIDs: []string{"3", "2"},
		},
		{
			name:    "since bound",
			filter:  QueryFilter{Since: now.Add(-90 * time.Minute)},
			wantIDs: []string{"4", "3"},
		},
		{
			name:    "limit and offset",
			filter:  QueryFilter{Limit: 2, Offset: 1},
			wantIDs: []string{"3", "2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Query(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("Query() returned %d entries, want %d", len(got), len(tt.wantIDs))
			}
			for i, want := range tt.wantIDs {
				if got[i].ID != want {
					t.Errorf("Query()[%d].ID = %q, want %q", i, got[i].ID, want)
				}
			}
		})
	}
}

func TestMemoryStore_DeleteOlderThan(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	now := time.Now()
	old := &Entry{ID: "old", Action: ActionAdminLogout, CreatedAt: now.Add(-48 * time.Hour)}
	fresh := &Entry{ID: "fresh", Action: ActionAdminLogout, CreatedAt: now}
	for _, e := range []*Entry{old, fresh} {
		if err := store.Append(ctx, e); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	removed, err := store.DeleteOlderThan(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteOlderThan() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	count, err := store.Count(ctx, QueryFilter{})
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("count after delete = %d, want 1", count)
	}
}
