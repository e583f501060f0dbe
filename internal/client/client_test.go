// Copyright (c) 2025-2026 Folioworks
// SPDX-License-Identifier: GPL-3.0-or-later

package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/folioworks/folio-go/internal/model"
)

func TestPathNormalization(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(Result{Success: true})
	}))
	defer srv.Close()

	c := New(srv.URL+"/", NewMemorySessionStore())

	for _, path := range []string{"projects", "/projects", "projects/", "//projects//"} {
		res := c.do(context.Background(), http.MethodGet, path, nil)
		if !res.Success {
			t.Fatalf("request for %q failed: %s", path, res.Error)
		}
		if gotPath != "/api/v1/projects" {
			t.Errorf("path %q normalized to %q, want /api/v1/projects", path, gotPath)
		}
	}
}

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(Result{Success: true})
	}))
	defer srv.Close()

	store := NewMemorySessionStore()
	c := New(srv.URL, store)

	c.do(context.Background(), http.MethodGet, "projects", nil)
	if gotAuth != "" {
		t.Errorf("no session stored, but Authorization was %q", gotAuth)
	}

	_ = store.Save(Session{Token: "tok-123"})
	c.do(context.Background(), http.MethodGet, "projects", nil)
	if gotAuth != "Bearer tok-123" {
		t.Errorf("expected bearer header, got %q", gotAuth)
	}
}

func TestNon2xxBecomesResultError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(Result{Success: false, Error: "Project not found"})
	}))
	defer srv.Close()

	c := New(srv.URL, NewMemorySessionStore())
	res := c.do(context.Background(), http.MethodGet, "projects/nope", nil)

	if res.Success {
		t.Error("expected success=false")
	}
	if res.Error != "Project not found" {
		t.Errorf("expected the server message, got %q", res.Error)
	}
}

func TestNetworkFailureBecomesResultError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // Refuse all connections.

	c := New(srv.URL, NewMemorySessionStore())
	res := c.do(context.Background(), http.MethodGet, "projects", nil)

	if res.Success {
		t.Error("expected success=false on connection failure")
	}
	if res.Error == "" {
		t.Error("expected an error message")
	}
}

func TestLoginStoresSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/auth/login" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success":      true,
			"token":        "access-token",
			"refreshToken": "refresh-token",
			"data": map[string]any{
				"user": map[string]any{"id": 1, "email": "admin@x.com", "role": "admin"},
			},
		})
	}))
	defer srv.Close()

	store := NewMemorySessionStore()
	c := New(srv.URL, store)

	session, err := c.Login(context.Background(), "admin@x.com", "correct")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if session.Token != "access-token" || session.User.Role != "admin" {
		t.Errorf("unexpected session: %+v", session)
	}

	stored, ok := store.Load()
	if !ok || stored.RefreshToken != "refresh-token" {
		t.Errorf("expected stored session, got %+v ok=%v", stored, ok)
	}
}

func TestLoginFailureStoresNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(Result{Success: false, Error: "Invalid email or password"})
	}))
	defer srv.Close()

	store := NewMemorySessionStore()
	c := New(srv.URL, store)

	_, err := c.Login(context.Background(), "admin@x.com", "wrongpass")
	if err == nil {
		t.Fatal("expected an error")
	}
	if err.Error() != "Invalid email or password" {
		t.Errorf("expected the server message, got %q", err)
	}
	if _, ok := store.Load(); ok {
		t.Error("no session may be stored after a failed login")
	}
}

func TestCheckAuthWithoutTokenMakesNoNetworkCall(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_ = json.NewEncoder(w).Encode(Result{Success: true})
	}))
	defer srv.Close()

	c := New(srv.URL, NewMemorySessionStore())
	if c.CheckAuth(context.Background()) {
		t.Error("expected false with no stored session")
	}
	if calls.Load() != 0 {
		t.Errorf("expected no network calls, got %d", calls.Load())
	}
}

func TestCheckAuthRefreshesSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(Result{Success: false, Error: "Not authorized to access this route"})
			return
		}
		payload, _ := json.Marshal(map[string]any{
			"user": map[string]any{"id": 1, "email": "admin@x.com", "role": "admin", "name": "Renamed"},
		})
		_ = json.NewEncoder(w).Encode(Result{Success: true, Data: payload})
	}))
	defer srv.Close()

	store := NewMemorySessionStore()
	_ = store.Save(Session{Token: "tok", User: model.User{ID: 1, Name: "Stale"}})
	c := New(srv.URL, store)

	if !c.CheckAuth(context.Background()) {
		t.Fatal("expected checkAuth to succeed")
	}
	session, _ := store.Load()
	if session.User.Name != "Renamed" {
		t.Errorf("expected refreshed snapshot, got %q", session.User.Name)
	}
}

func TestCheckAuthClearsSessionOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(Result{Success: false, Error: "Invalid or expired token"})
	}))
	defer srv.Close()

	store := NewMemorySessionStore()
	_ = store.Save(Session{Token: "expired"})
	c := New(srv.URL, store)

	if c.CheckAuth(context.Background()) {
		t.Error("expected false for a rejected token")
	}
	if _, ok := store.Load(); ok {
		t.Error("expected the session to be cleared")
	}
}

func TestLogoutAlwaysClears(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	store := NewMemorySessionStore()
	_ = store.Save(Session{Token: "tok"})
	c := New(srv.URL, store)

	c.Logout(context.Background())
	if _, ok := store.Load(); ok {
		t.Error("logout must clear the local session even when the server call fails")
	}
}

func TestRefreshTokenFalseOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(Result{Success: false, Error: "Invalid or expired token"})
	}))
	defer srv.Close()

	store := NewMemorySessionStore()
	c := New(srv.URL, store)

	// No session at all.
	if c.RefreshToken(context.Background()) {
		t.Error("expected false with no stored session")
	}

	_ = store.Save(Session{Token: "tok", RefreshToken: "revoked"})
	if c.RefreshToken(context.Background()) {
		t.Error("expected false for a rejected refresh token")
	}
}

func TestRefreshTokenRotates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["refreshToken"] != "old-refresh" {
			t.Errorf("unexpected refresh token %q", body["refreshToken"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success":      true,
			"token":        "new-access",
			"refreshToken": "new-refresh",
			"data":         map[string]any{"user": map[string]any{"id": 1, "role": "admin"}},
		})
	}))
	defer srv.Close()

	store := NewMemorySessionStore()
	_ = store.Save(Session{Token: "old-access", RefreshToken: "old-refresh"})
	c := New(srv.URL, store)

	if !c.RefreshToken(context.Background()) {
		t.Fatal("expected refresh to succeed")
	}
	session, _ := store.Load()
	if session.Token != "new-access" || session.RefreshToken != "new-refresh" {
		t.Errorf("expected rotated tokens, got %+v", session)
	}
}

func TestProjectsDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("category"); got != "web" {
			t.Errorf("expected category filter, got %q", got)
		}
		payload, _ := json.Marshal([]map[string]any{
			{"id": 1, "title": "Site", "slug": "site", "category": "web"},
		})
		count := 1
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "count": count, "data": json.RawMessage(payload)})
	}))
	defer srv.Close()

	c := New(srv.URL, NewMemorySessionStore())
	projects, err := c.Projects(context.Background(), "web")
	if err != nil {
		t.Fatalf("projects failed: %v", err)
	}
	if len(projects) != 1 || projects[0].Slug != "site" {
		t.Errorf("unexpected projects: %+v", projects)
	}
}

func TestFileSessionStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "session.json")
	store, err := NewFileSessionStore(path)
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := store.Load(); ok {
		t.Error("fresh store must be empty")
	}

	want := Session{Token: "tok", RefreshToken: "ref", User: model.User{ID: 7, Email: "a@b.c"}}
	if err := store.Save(want); err != nil {
		t.Fatal(err)
	}

	// A second store on the same path sees the session.
	reopened, err := NewFileSessionStore(path)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := reopened.Load()
	if !ok || got.Token != "tok" || got.User.ID != 7 {
		t.Errorf("expected persisted session, got %+v ok=%v", got, ok)
	}

	if err := store.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, ok := store.Load(); ok {
		t.Error("expected empty store after clear")
	}
	// Clearing twice is fine.
	if err := store.Clear(); err != nil {
		t.Errorf("second clear errored: %v", err)
	}
}

func TestCheckHealthLatency(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("expected /health, got %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	}))
	defer srv.Close()

	c := New(srv.URL, NewMemorySessionStore())
	result := c.CheckHealth(context.Background())

	if !result.Healthy || result.Status != "healthy" {
		t.Errorf("unexpected result: %+v", result)
	}
	if result.Latency <= 0 {
		t.Error("expected a positive latency measurement")
	}
}

func TestMonitorHealthStopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	}))
	defer srv.Close()

	c := New(srv.URL, NewMemorySessionStore())

	results := make(chan HealthResult, 16)
	ctx, cancel := context.WithCancel(context.Background())
	c.MonitorHealth(ctx, 10*time.Millisecond, func(r HealthResult) {
		select {
		case results <- r:
		default:
		}
	})

	// The first probe fires immediately.
	select {
	case r := <-results:
		if !r.Healthy {
			t.Errorf("expected healthy, got %+v", r)
		}
	case <-time.After(time.Second):
		t.Fatal("no probe result arrived")
	}

	cancel()
	time.Sleep(50 * time.Millisecond)
	for len(results) > 0 {
		<-results
	}
	time.Sleep(50 * time.Millisecond)
	if n := len(results); n != 0 {
		t.Errorf("monitor kept probing after cancel: %d results", n)
	}
}

func TestSettingsDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/settings" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		payload, _ := json.Marshal(map[string]any{
			"siteName":        "My Portfolio",
			"maintenanceMode": map[string]any{"enabled": true, "message": "Back soon"},
		})
		_ = json.NewEncoder(w).Encode(Result{Success: true, Data: payload})
	}))
	defer srv.Close()

	c := New(srv.URL, NewMemorySessionStore())
	settings, err := c.Settings(context.Background())
	if err != nil {
		t.Fatalf("settings failed: %v", err)
	}
	if !settings.MaintenanceMode.Enabled || settings.MaintenanceMode.Message != "Back soon" {
		t.Errorf("unexpected settings: %+v", settings)
	}
}
