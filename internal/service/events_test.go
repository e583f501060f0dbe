// Copyright (c) 2025-2026 Folioworks
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/folioworks/folio-go/internal/model"
	"github.com/folioworks/folio-go/internal/store"
)

func testEventDB(t *testing.T) *sql.DB {
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
		t.Fatalf("creating events table: %v", err)
	}
	return db
}

func TestLog(t *testing.T) {
	db := testEventDB(t)
	svc := NewEventService(db, nil)
	ctx := context.Background()

	userID := int64(42)
	err := svc.Log(ctx, model.EventLevelInfo, model.EventCategoryAuth,
		"user logged in", &userID, "192.0.2.1", map[string]any{"email": "a@b.c"})
	if err != nil {
		t.Fatalf("Log: %v", err)
	}

	events, err := store.New(db).ListRecentEvents(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}

	e := events[0]
	if e.Level != "info" || e.Category != "auth" {
		t.Errorf("event = %+v", e)
	}
	if !e.UserID.Valid || e.UserID.Int64 != 42 {
		t.Errorf("UserID = %+v, want 42", e.UserID)
	}

	var meta map[string]any
	if err := json.Unmarshal([]byte(e.Metadata), &meta); err != nil {
		t.Fatalf("metadata not valid JSON: %v", err)
	}
	if meta["email"] != "a@b.c" {
		t.Errorf("metadata = %v", meta)
	}
}

func TestLogRequestEnrichment(t *testing.T) {
	db := testEventDB(t)
	svc := NewEventService(db, nil)

	r := httptest.NewRequest("POST", "/api/v1/contact", nil)
	r.RemoteAddr = "192.0.2.7:1234"
	r.Header.Set("User-Agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")

	if err := svc.LogContact(r, model.EventLevelInfo, "contact form submitted", nil); err != nil {
		t.Fatalf("LogContact: %v", err)
	}

	events, err := store.New(db).ListRecentEvents(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events", len(events))
	}

	e := events[0]
	if e.IPAddress != "192.0.2.7" {
		t.Errorf("IPAddress = %q", e.IPAddress)
	}

	var meta map[string]any
	if err := json.Unmarshal([]byte(e.Metadata), &meta); err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if meta["browser"] != "Chrome" {
		t.Errorf("browser = %v", meta["browser"])
	}
	if meta["device"] != "desktop" {
		t.Errorf("device = %v", meta["device"])
	}
	if meta["path"] != "/api/v1/contact" {
		t.Errorf("path = %v", meta["path"])
	}
}

func TestDeleteOldEvents(t *testing.T) {
	db := testEventDB(t)
	svc := NewEventService(db, nil)
	ctx := context.Background()

	q := store.New(db)
	old := time.Now().UTC().Add(-48 * time.Hour)
	recent := time.Now().UTC()
	for _, createdAt := range []time.Time{old, recent} {
		err := q.CreateEvent(ctx, store.CreateEventParams{
			Level: "info", Category: "system", Message: "m", CreatedAt: createdAt,
		})
		if err != nil {
			t.Fatalf("CreateEvent: %v", err)
		}
	}

	deleted, err := svc.DeleteOldEvents(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("DeleteOldEvents: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}
}
