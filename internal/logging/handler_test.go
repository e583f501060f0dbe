// Copyright (c) 2025-2026 Folioworks
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/folioworks/folio-go/internal/store"
)

func testLogDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			level TEXT NOT NULL,
			category TEXT NOT NULL,
			message TEXT NOT NULL,
			user_id INTEGER,
			ip_address TEXT NOT NULL DEFAULT '',
			metadata TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		t.Fatalf("creating table: %v", err)
	}
	return db
}

func TestHandlerTeesWarnings(t *testing.T) {
	db := testLogDB(t)
	var buf bytes.Buffer
	inner := slog.NewTextHandler(&buf, nil)
	logger := slog.New(NewEventLogHandler(inner, db))

	logger.Warn("cache backend degraded", "category", "cache", "backend", "redis")
	logger.Info("request served") // below threshold

	events, err := store.New(db).ListRecentEvents(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1 (only warn+)", len(events))
	}

	e := events[0]
	if e.Level != "warning" || e.Category != "cache" {
		t.Errorf("event = %+v", e)
	}

	var meta map[string]string
	if err := json.Unmarshal([]byte(e.Metadata), &meta); err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if meta["backend"] != "redis" {
		t.Errorf("metadata = %v", meta)
	}
	if _, ok := meta["category"]; ok {
		t.Error("category attr should not be duplicated into metadata")
	}

	// Inner handler still sees both records.
	if !bytes.Contains(buf.Bytes(), []byte("request served")) {
		t.Error("inner handler should receive info records")
	}
}

func TestHandlerInfersCategory(t *testing.T) {
	db := testLogDB(t)
	logger := slog.New(NewEventLogHandler(slog.NewTextHandler(&bytes.Buffer{}, nil), db))

	logger.Error("failed to validate login token")

	events, err := store.New(db).ListRecentEvents(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events", len(events))
	}
	if events[0].Category != "auth" {
		t.Errorf("Category = %q, want auth", events[0].Category)
	}
	if events[0].Level != "error" {
		t.Errorf("Level = %q, want error", events[0].Level)
	}
}
