// Copyright (c) 2025-2026 Folioworks
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Project is a portfolio entry shown on the public site.
type Project struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Slug        string         `json:"slug"`
	Description string         `json:"description"`
	Body        string         `json:"body,omitempty"` // Markdown, rendered on the detail endpoint
	Category    string         `json:"category"`
	Tags        []string       `json:"tags"`
	ImageURL    string         `json:"imageUrl"`
	LiveURL     sql.NullString `json:"-"`
	GithubURL   sql.NullString `json:"-"`
	Featured    bool           `json:"featured"`
	Position    int64          `json:"order"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// MarshalJSON flattens the nullable URL columns to plain strings, absent
// when unset.
func (p Project) MarshalJSON() ([]byte, error) {
	type alias Project
	return json.Marshal(struct {
		alias
		LiveURL   string `json:"liveUrl,omitempty"`
		GithubURL string `json:"githubUrl,omitempty"`
	}{
		alias:     alias(p),
		LiveURL:   p.LiveURL.String,
		GithubURL: p.GithubURL.String,
	})
}

// Service is an offering shown in the services section.
type Service struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`  // Icon name rendered by the frontend
	Color       string    `json:"color"` // Gradient class rendered by the frontend
	Features    []string  `json:"features"`
	Featured    bool      `json:"featured"`
	Position    int64     `json:"order"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Testimonial is a client quote shown on the public site.
type Testimonial struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"` // e.g. "CEO, TechSavvy Ltd"
	Content   string    `json:"content"`
	AvatarURL string    `json:"avatar"`
	Rating    int64     `json:"rating"` // 1..5
	Featured  bool      `json:"featured"`
	Position  int64     `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EncodeStringList serializes a string slice for storage in a TEXT column.
// A nil slice encodes as "[]" so stored values are always valid JSON.
func EncodeStringList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// DecodeStringList deserializes a TEXT column back into a string slice.
// Malformed values decode as an empty slice rather than failing the read.
func DecodeStringList(raw string) []string {
	if raw == "" || raw == "[]" {
		return []string{}
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return []string{}
	}
	return items
}
