// Copyright (c) 2025-2026 Folioworks
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestValidRole(t *testing.T) {
	valid := []string{RoleAdmin, RoleEditor, RoleUser}
	for _, role := range valid {
		if !ValidRole(role) {
			t.Errorf("ValidRole(%q) = false, want true", role)
		}
	}

	invalid := []string{"", "superadmin", "Admin", "root"}
	for _, role := range invalid {
		if ValidRole(role) {
			t.Errorf("ValidRole(%q) = true, want false", role)
		}
	}
}

func TestUser_IsAdmin(t *testing.T) {
	admin := &User{Role: RoleAdmin}
	if !admin.IsAdmin() {
		t.Error("admin user should report IsAdmin")
	}

	editor := &User{Role: RoleEditor}
	if editor.IsAdmin() {
		t.Error("editor user should not report IsAdmin")
	}
}

func TestUser_PasswordHashNeverSerialized(t *testing.T) {
	u := User{
		Email:        "admin@example.com",
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$secret$secret",
		Role:         RoleAdmin,
	}

	data, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal user: %v", err)
	}
	if strings.Contains(string(data), "argon2id") {
		t.Errorf("serialized user leaks password hash: %s", data)
	}
}

func TestValidContactStatus(t *testing.T) {
	for _, status := range []string{ContactStatusNew, ContactStatusInProgress, ContactStatusContacted, ContactStatusResolved} {
		if !ValidContactStatus(status) {
			t.Errorf("ValidContactStatus(%q) = false, want true", status)
		}
	}
	if ValidContactStatus("archived") {
		t.Error("ValidContactStatus(\"archived\") = true, want false")
	}
}

func TestStringListRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		items []string
	}{
		{"empty", nil},
		{"single", []string{"React"}},
		{"multiple", []string{"React", "Node.js", "MongoDB", "Stripe"}},
		{"with_special_chars", []string{`say "hi"`, "a,b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := EncodeStringList(tt.items)
			decoded := DecodeStringList(encoded)

			if len(decoded) != len(tt.items) {
				t.Fatalf("round trip changed length: got %d, want %d", len(decoded), len(tt.items))
			}
			for i := range tt.items {
				if decoded[i] != tt.items[i] {
					t.Errorf("item %d = %q, want %q", i, decoded[i], tt.items[i])
				}
			}
		})
	}
}

func TestDecodeStringList_Malformed(t *testing.T) {
	for _, raw := range []string{"", "[]", "not json", "{\"a\":1}"} {
		got := DecodeStringList(raw)
		if got == nil {
			t.Errorf("DecodeStringList(%q) returned nil, want empty slice", raw)
		}
		if len(got) != 0 {
			t.Errorf("DecodeStringList(%q) = %v, want empty", raw, got)
		}
	}
}
