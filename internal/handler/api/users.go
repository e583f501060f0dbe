// Copyright (c) 2025-2026 Folioworks
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/folioworks/folio-go/internal/auth"
	"github.com/folioworks/folio-go/internal/middleware"
	"github.com/folioworks/folio-go/internal/model"
	"github.com/folioworks/folio-go/internal/store"
)

// ListUsers returns all user accounts. Admin only.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.queries.ListUsers(r.Context())
	if err != nil {
		slog.Error("failed to list users", "error", err)
		WriteInternalError(w, "Failed to fetch users")
		return
	}
	WriteList(w, len(users), users)
}

// GetUser returns a single user account. Admin only.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid user ID")
		return
	}

	user, err := h.queries.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "User not found")
			return
		}
		slog.Error("failed to fetch user", "id", id, "error", err)
		WriteInternalError(w, "Failed to fetch user")
		return
	}
	WriteSuccess(w, user)
}

// UserRequest is the payload for creating a user account.
type UserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required,max=200"`
	Role     string `json:"role" validate:"required,oneof=admin editor user"`
}

// CreateUser adds a user account. Admin only.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	if _, err := h.queries.GetUserByEmail(r.Context(), req.Email); err == nil {
		WriteBadRequest(w, "A user with this email already exists")
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		WriteInternalError(w, "Failed to create user")
		return
	}

	now := time.Now().UTC()
	user, err := h.queries.CreateUser(r.Context(), store.CreateUserParams{
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         req.Role,
		Name:         req.Name,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		slog.Error("failed to create user", "error", err)
		WriteInternalError(w, "Failed to create user")
		return
	}

	h.logUserChange(r, "user created", user.ID, user.Email)
	WriteCreated(w, user)
}

// UpdateUserRequest carries partial account updates; nil fields keep their
// current value.
type UpdateUserRequest struct {
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=8"`
	Name     *string `json:"name" validate:"omitempty,max=200"`
	Role     *string `json:"role" validate:"omitempty,oneof=admin editor user"`
	IsActive *bool   `json:"isActive"`
}

// UpdateUser applies a partial update to a user account. Admin only. An
// admin cannot demote or deactivate their own account.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid user ID")
		return
	}

	var req UpdateUserRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	actor := middleware.GetUser(r)
	if actor != nil && actor.ID == id {
		if (req.Role != nil && *req.Role != model.RoleAdmin) || (req.IsActive != nil && !*req.IsActive) {
			WriteBadRequest(w, "You cannot demote or deactivate your own account")
			return
		}
	}

	user, err := h.queries.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "User not found")
			return
		}
		slog.Error("failed to fetch user", "id", id, "error", err)
		WriteInternalError(w, "Failed to update user")
		return
	}

	if req.Email != nil && *req.Email != user.Email {
		if _, err := h.queries.GetUserByEmail(r.Context(), *req.Email); err == nil {
			WriteBadRequest(w, "A user with this email already exists")
			return
		}
		user.Email = *req.Email
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	now := time.Now().UTC()
	updated, err := h.queries.UpdateUser(r.Context(), store.UpdateUserParams{
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		IsActive:  user.IsActive,
		UpdatedAt: now,
		ID:        id,
	})
	if err != nil {
		slog.Error("failed to update user", "id", id, "error", err)
		WriteInternalError(w, "Failed to update user")
		return
	}

	if req.Password != nil {
		passwordHash, err := auth.HashPassword(*req.Password)
		if err != nil {
			slog.Error("failed to hash password", "error", err)
			WriteInternalError(w, "Failed to update user")
			return
		}
		err = h.queries.UpdateUserPassword(r.Context(), store.UpdateUserPasswordParams{
			PasswordHash: passwordHash,
			UpdatedAt:    now,
			ID:           id,
		})
		if err != nil {
			slog.Error("failed to update user password", "id", id, "error", err)
			WriteInternalError(w, "Failed to update user")
			return
		}
		// A password change invalidates existing sessions.
		if err := h.queries.RevokeUserRefreshTokens(r.Context(), id); err != nil {
			slog.Error("failed to revoke sessions after password change", "id", id, "error", err)
		}
	}

	// Deactivation kills live sessions immediately.
	if req.IsActive != nil && !*req.IsActive {
		if err := h.queries.RevokeUserRefreshTokens(r.Context(), id); err != nil {
			slog.Error("failed to revoke sessions on deactivation", "id", id, "error", err)
		}
	}

	h.logUserChange(r, "user updated", updated.ID, updated.Email)
	WriteSuccess(w, updated)
}

// DeactivateUser disables an account. Accounts are never hard-deleted so
// the event log keeps valid references. Admin only.
func (h *Handler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid user ID")
		return
	}

	if actor := middleware.GetUser(r); actor != nil && actor.ID == id {
		WriteBadRequest(w, "You cannot deactivate your own account")
		return
	}

	user, err := h.queries.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "User not found")
			return
		}
		slog.Error("failed to fetch user", "id", id, "error", err)
		WriteInternalError(w, "Failed to deactivate user")
		return
	}

	if err := h.queries.DeactivateUser(r.Context(), id); err != nil {
		slog.Error("failed to deactivate user", "id", id, "error", err)
		WriteInternalError(w, "Failed to deactivate user")
		return
	}
	if err := h.queries.RevokeUserRefreshTokens(r.Context(), id); err != nil {
		slog.Error("failed to revoke sessions on deactivation", "id", id, "error", err)
	}

	h.logUserChange(r, "user deactivated", id, user.Email)
	WriteMessage(w, "User deactivated")
}

func (h *Handler) logUserChange(r *http.Request, message string, id int64, email string) {
	var actorID *int64
	if actor := middleware.GetUser(r); actor != nil {
		actorID = &actor.ID
	}
	_ = h.events.LogUser(r, model.EventLevelInfo, message, actorID, map[string]any{"id": id, "email": email})
}
