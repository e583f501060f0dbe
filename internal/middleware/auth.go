// Copyright (c) 2025-2026 Folioworks
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, and rate limiting.
package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/folioworks/folio-go/internal/auth"
	"github.com/folioworks/folio-go/internal/model"
	"github.com/folioworks/folio-go/internal/store"
)

// ContextKey is the type for context keys used by this package.
type ContextKey string

// ContextKeyUser is the context key for the authenticated user.
const ContextKeyUser ContextKey = "user"

// errorBody is the JSON error envelope shared with the API handlers.
type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// writeError writes a JSON error response in the API envelope format.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorBody{Success: false, Error: message})
}

// bearerToken extracts the token from the Authorization header.
// Returns "" when the header is missing or malformed.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Authenticate creates middleware that validates the bearer access token and
// loads the current user into the request context. Requests without a valid
// token are rejected with 401.
func Authenticate(tokens *auth.TokenService, queries *store.Queries) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				writeError(w, http.StatusUnauthorized, "Not authorized to access this route")
				return
			}

			claims, err := tokens.Validate(raw)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Not authorized to access this route")
				return
			}

			user, err := queries.GetUserByID(r.Context(), claims.UserID)
			if err != nil {
				if !errors.Is(err, sql.ErrNoRows) {
					slog.Error("loading user for token", "error", err, "user_id", claims.UserID)
				}
				writeError(w, http.StatusUnauthorized, "Not authorized to access this route")
				return
			}

			if !user.IsActive {
				writeError(w, http.StatusUnauthorized, "Account is deactivated")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser retrieves the authenticated user from the request context.
// Returns nil if no user is in context.
func GetUser(r *http.Request) *model.User {
	user, ok := r.Context().Value(ContextKeyUser).(model.User)
	if !ok {
		return nil
	}
	return &user
}

// RequireRole creates middleware that enforces a minimum role. It must run
// after Authenticate.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r)
			switch auth.Decide(user, role) {
			case auth.DecisionAllow:
				next.ServeHTTP(w, r)
			case auth.DecisionDeny:
				writeError(w, http.StatusForbidden,
					"User role "+user.Role+" is not authorized to access this route")
			default:
				writeError(w, http.StatusUnauthorized, "Not authorized to access this route")
			}
		})
	}
}

// RequireAdmin enforces the admin role.
func RequireAdmin() func(http.Handler) http.Handler {
	return RequireRole(model.RoleAdmin)
}

// RequireEditor enforces at least the editor role.
func RequireEditor() func(http.Handler) http.Handler {
	return RequireRole(model.RoleEditor)
}
