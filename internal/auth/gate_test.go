// Copyright (c) 2025-2026 Folioworks
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"testing"

	"github.com/folioworks/folio-go/internal/model"
)

func TestRoleSatisfies(t *testing.T) {
	tests := []struct {
		role     string
		required string
		want     bool
	}{
		{"admin", "admin", true},
		{"admin", "editor", true},
		{"admin", "user", true},
		{"editor", "admin", false},
		{"editor", "editor", true},
		{"editor", "user", true},
		{"user", "editor", false},
		{"user", "user", true},
		{"", "user", false},
		{"unknown", "user", false},
		{"admin", "unknown", false},
	}

	for _, tt := range tests {
		t.Run(tt.role+"_vs_"+tt.required, func(t *testing.T) {
			if got := RoleSatisfies(tt.role, tt.required); got != tt.want {
				t.Errorf("RoleSatisfies(%q, %q) = %v, want %v", tt.role, tt.required, got, tt.want)
			}
		})
	}
}

func TestDecide_Unauthenticated(t *testing.T) {
	if got := Decide(nil, model.RoleEditor); got != DecisionRedirect {
		t.Errorf("Decide(nil, editor) = %v, want DecisionRedirect", got)
	}
}

func TestDecide_InactiveUser(t *testing.T) {
	user := &model.User{Role: model.RoleAdmin, IsActive: false}
	if got := Decide(user, model.RoleEditor); got != DecisionRedirect {
		t.Errorf("Decide(inactive admin, editor) = %v, want DecisionRedirect", got)
	}
}

func TestDecide_InsufficientRole(t *testing.T) {
	// An editor hitting an admin-only view gets access-denied, not a
	// redirect: the session is valid, only the role falls short.
	user := &model.User{Role: model.RoleEditor, IsActive: true}
	if got := Decide(user, model.RoleAdmin); got != DecisionDeny {
		t.Errorf("Decide(editor, admin) = %v, want DecisionDeny", got)
	}
}

func TestDecide_Allowed(t *testing.T) {
	tests := []struct {
		role     string
		required string
	}{
		{model.RoleAdmin, model.RoleAdmin},
		{model.RoleAdmin, model.RoleEditor},
		{model.RoleEditor, model.RoleEditor},
		{model.RoleEditor, model.RoleUser},
	}

	for _, tt := range tests {
		user := &model.User{Role: tt.role, IsActive: true}
		if got := Decide(user, tt.required); got != DecisionAllow {
			t.Errorf("Decide(%s, %s) = %v, want DecisionAllow", tt.role, tt.required, got)
		}
	}
}
