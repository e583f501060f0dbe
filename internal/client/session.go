// Copyright (c) 2025-2026 Folioworks
// SPDX-License-Identifier: GPL-3.0-or-later

package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/folioworks/folio-go/internal/model"
)

// Session is the locally stored credential state: both tokens plus the user
// snapshot taken at login. The snapshot may go stale; CheckAuth refreshes
// it.
type Session struct {
	Token        string     `json:"token"`
	RefreshToken string     `json:"refreshToken"`
	User         model.User `json:"user"`
}

// SessionStore holds at most one session. Implementations replace the
// whole value on every write, so readers never observe a half-updated
// session.
type SessionStore interface {
	// Load returns the current session and whether one is stored.
	Load() (Session, bool)

	// Save replaces the stored session.
	Save(session Session) error

	// Clear removes the stored session. Clearing an empty store is not an
	// error.
	Clear() error
}

// MemorySessionStore keeps the session in process memory.
type MemorySessionStore struct {
	session atomic.Pointer[Session]
}

// NewMemorySessionStore creates an empty in-memory store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{}
}

// Load implements SessionStore.
func (s *MemorySessionStore) Load() (Session, bool) {
	p := s.session.Load()
	if p == nil {
		return Session{}, false
	}
	return *p, true
}

// Save implements SessionStore.
func (s *MemorySessionStore) Save(session Session) error {
	s.session.Store(&session)
	return nil
}

// Clear implements SessionStore.
func (s *MemorySessionStore) Clear() error {
	s.session.Store(nil)
	return nil
}

// FileSessionStore persists the session as JSON on disk, surviving process
// restarts. Writes go through a temp file and rename so a crash mid-write
// never leaves a torn session behind.
type FileSessionStore struct {
	path string
	mu   sync.Mutex
}

// NewFileSessionStore creates a store backed by the given file path. The
// parent directory is created if missing.
func NewFileSessionStore(path string) (*FileSessionStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating session directory: %w", err)
	}
	return &FileSessionStore{path: path}, nil
}

// Load implements SessionStore.
func (s *FileSessionStore) Load() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return Session{}, false
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil || session.Token == "" {
		return Session{}, false
	}
	return session, true
}

// Save implements SessionStore.
func (s *FileSessionStore) Save(session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing session file: %w", err)
	}
	return nil
}

// Clear implements SessionStore.
func (s *FileSessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing session file: %w", err)
	}
	return nil
}
