// Copyright (c) 2025-2026 Folioworks
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import "github.com/folioworks/folio-go/internal/model"

// Decision is the outcome of an authorization check.
type Decision int

const (
	// DecisionAllow grants access to the protected resource.
	DecisionAllow Decision = iota
	// DecisionDeny means the caller is authenticated but lacks the required
	// role. The caller should see an access-denied response, not a redirect.
	DecisionDeny
	// DecisionRedirect means the caller is not authenticated and should be
	// sent to the login flow, preserving the originally requested location.
	DecisionRedirect
)

// roleLevel returns a numeric level for the role hierarchy
// admin(3) > editor(2) > user(1). Unknown roles have no access.
func roleLevel(role string) int {
	switch role {
	case model.RoleAdmin:
		return 3
	case model.RoleEditor:
		return 2
	case model.RoleUser:
		return 1
	default:
		return 0
	}
}

// RoleSatisfies reports whether a user holding role meets requiredRole
// under the hierarchy admin ⊇ editor ⊇ user.
func RoleSatisfies(role, requiredRole string) bool {
	have := roleLevel(role)
	want := roleLevel(requiredRole)
	return have > 0 && want > 0 && have >= want
}

// Decide is the pure authorization gate: given the current user (nil when
// unauthenticated) and the role a view requires, it returns what should
// happen. It holds no state, so callers must re-evaluate it whenever the
// auth state changes.
func Decide(user *model.User, requiredRole string) Decision {
	if user == nil {
		return DecisionRedirect
	}
	if !user.IsActive {
		return DecisionRedirect
	}
	if !RoleSatisfies(user.Role, requiredRole) {
		return DecisionDeny
	}
	return DecisionAllow
}
