// Copyright (c) 2025-2026 Folioworks
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/folioworks/folio-go/internal/auth"
	"github.com/folioworks/folio-go/internal/middleware"
	"github.com/folioworks/folio-go/internal/model"
	"github.com/folioworks/folio-go/internal/store"
)

// User-facing auth failure messages. Login and refresh failures share
// deliberately unspecific wording.
const (
	msgInvalidCredentials = "Invalid email or password"
	msgAccountInactive    = "Account is deactivated"
	msgInvalidToken       = "Invalid or expired token"
)

// LoginRequest is the credentials payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries both tokens plus the user snapshot. The tokens sit
// at the top level, not inside data, so clients can pick them up without
// unwrapping.
type LoginResponse struct {
	Success      bool   `json:"success"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	Data         struct {
		User model.User `json:"user"`
	} `json:"data"`
}

// Login authenticates credentials and issues an access/refresh token pair.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	user, err := h.queries.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("login lookup failed", "error", err)
			WriteInternalError(w, "Login failed")
			return
		}
		// Burn a hash comparison anyway so missing accounts are not
		// distinguishable by response time.
		_, _ = auth.CheckPassword(req.Password, dummyHash)
		h.failLogin(w, r, req.Email, nil)
		return
	}

	ok, err := auth.CheckPassword(req.Password, user.PasswordHash)
	if err != nil || !ok {
		h.failLogin(w, r, req.Email, &user.ID)
		return
	}

	if !user.IsActive {
		_ = h.events.LogAuth(r, model.EventLevelWarning, "login attempt on deactivated account", &user.ID, nil)
		WriteUnauthorized(w, msgAccountInactive)
		return
	}

	// Transparently upgrade hashes created with older cost parameters.
	if auth.NeedsRehash(user.PasswordHash) {
		if rehashed, err := auth.HashPassword(req.Password); err == nil {
			err = h.queries.UpdateUserPassword(r.Context(), store.UpdateUserPasswordParams{
				PasswordHash: rehashed,
				UpdatedAt:    time.Now().UTC(),
				ID:           user.ID,
			})
			if err != nil {
				slog.Warn("failed to upgrade password hash", "error", err, "user_id", user.ID)
			}
		}
	}

	resp, err := h.issueTokens(w, r, user)
	if err != nil {
		return
	}

	now := sql.NullTime{Time: time.Now().UTC(), Valid: true}
	if err := h.queries.UpdateUserLastLogin(r.Context(), store.UpdateUserLastLoginParams{LastLoginAt: now, ID: user.ID}); err != nil {
		slog.Warn("failed to record last login", "error", err, "user_id", user.ID)
	}

	_ = h.events.LogAuth(r, model.EventLevelInfo, "user logged in", &user.ID, map[string]any{"email": user.Email})
	WriteJSON(w, http.StatusOK, resp)
}

// dummyHash is a valid argon2id hash of a random string, used to equalize
// response timing for unknown accounts.
const dummyHash = "$argon2id$v=19$m=19456,t=2,p=1$ZHVtbXlzYWx0MTIzNDU2$u9cz2ot0yZcZzQTjAtUmZuheYDA86w5VvDCvPGhXe0g"

func (h *Handler) failLogin(w http.ResponseWriter, r *http.Request, email string, userID *int64) {
	_ = h.events.LogAuth(r, model.EventLevelWarning, "failed login attempt", userID, map[string]any{"email": email})
	WriteUnauthorized(w, msgInvalidCredentials)
}

// issueTokens creates the access token plus a stored refresh token. On
// failure it writes the error response and returns a non-nil error.
func (h *Handler) issueTokens(w http.ResponseWriter, r *http.Request, user model.User) (*LoginResponse, error) {
	accessToken, err := h.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		slog.Error("failed to issue access token", "error", err)
		WriteInternalError(w, "Login failed")
		return nil, err
	}

	refreshToken := uuid.NewString()
	now := time.Now().UTC()
	err = h.queries.CreateRefreshToken(r.Context(), store.CreateRefreshTokenParams{
		UserID:    user.ID,
		TokenHash: auth.HashToken(refreshToken),
		ExpiresAt: now.Add(h.cfg.RefreshTokenTTL),
		CreatedAt: now,
	})
	if err != nil {
		slog.Error("failed to store refresh token", "error", err)
		WriteInternalError(w, "Login failed")
		return nil, err
	}

	resp := &LoginResponse{
		Success:      true,
		Token:        accessToken,
		RefreshToken: refreshToken,
	}
	resp.Data.User = user
	return resp, nil
}

// Logout revokes all outstanding refresh tokens for the current user. The
// access token stays valid until expiry; its short TTL bounds the window.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Not authorized to access this route")
		return
	}

	if err := h.queries.RevokeUserRefreshTokens(r.Context(), user.ID); err != nil {
		slog.Error("failed to revoke refresh tokens", "error", err, "user_id", user.ID)
		WriteInternalError(w, "Logout failed")
		return
	}

	_ = h.events.LogAuth(r, model.EventLevelInfo, "user logged out", &user.ID, nil)
	WriteMessage(w, "Logged out successfully")
}

// RefreshRequest is the payload for POST /auth/refresh-token.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued. A revoked or expired token yields 401.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	hash := auth.HashToken(req.RefreshToken)
	stored, err := h.queries.GetRefreshToken(r.Context(), hash)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("refresh token lookup failed", "error", err)
			WriteInternalError(w, "Token refresh failed")
			return
		}
		WriteUnauthorized(w, msgInvalidToken)
		return
	}

	if stored.RevokedAt.Valid || time.Now().UTC().After(stored.ExpiresAt) {
		WriteUnauthorized(w, msgInvalidToken)
		return
	}

	user, err := h.queries.GetUserByID(r.Context(), stored.UserID)
	if err != nil || !user.IsActive {
		WriteUnauthorized(w, msgInvalidToken)
		return
	}

	if err := h.queries.RevokeRefreshToken(r.Context(), hash); err != nil {
		slog.Error("failed to revoke rotated token", "error", err)
		WriteInternalError(w, "Token refresh failed")
		return
	}

	resp, err := h.issueTokens(w, r, user)
	if err != nil {
		return
	}
	WriteJSON(w, http.StatusOK, resp)
}

// Me returns the current user from the database, not the token snapshot.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Not authorized to access this route")
		return
	}
	WriteSuccess(w, map[string]any{"user": user})
}

// ForgotPasswordRequest is the payload for POST /auth/forgotpassword.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPassword creates a password reset token. The response is identical
// whether or not the account exists. Without an outbound mailer the raw
// token is only returned in development mode, for manual testing.
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	const reply = "If that account exists, a reset link has been sent"

	user, err := h.queries.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("forgot password lookup failed", "error", err)
			WriteInternalError(w, "Password reset failed")
			return
		}
		WriteMessage(w, reply)
		return
	}

	resetToken := uuid.NewString()
	now := time.Now().UTC()
	err = h.queries.CreatePasswordResetToken(r.Context(), store.CreatePasswordResetTokenParams{
		UserID:    user.ID,
		TokenHash: auth.HashToken(resetToken),
		ExpiresAt: now.Add(h.cfg.ResetTokenTTL),
		CreatedAt: now,
	})
	if err != nil {
		slog.Error("failed to create reset token", "error", err)
		WriteInternalError(w, "Password reset failed")
		return
	}

	_ = h.events.LogAuth(r, model.EventLevelInfo, "password reset requested", &user.ID, nil)

	if h.cfg.IsDevelopment() {
		WriteJSON(w, http.StatusOK, Response{
			Success: true,
			Message: reply,
			Data:    map[string]string{"resetToken": resetToken},
		})
		return
	}
	WriteMessage(w, reply)
}

// ResetPasswordRequest is the payload for PUT /auth/resetpassword/{token}.
type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8"`
}

// ResetPassword consumes a reset token, replaces the password, and revokes
// every outstanding refresh token so stolen sessions die with the old
// password.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	rawToken := chi.URLParam(r, "token")
	if rawToken == "" {
		WriteBadRequest(w, "Reset token is required")
		return
	}

	var req ResetPasswordRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	stored, err := h.queries.GetPasswordResetToken(r.Context(), auth.HashToken(rawToken))
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("reset token lookup failed", "error", err)
			WriteInternalError(w, "Password reset failed")
			return
		}
		WriteBadRequest(w, msgInvalidToken)
		return
	}

	if stored.UsedAt.Valid || time.Now().UTC().After(stored.ExpiresAt) {
		WriteBadRequest(w, msgInvalidToken)
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		WriteInternalError(w, "Password reset failed")
		return
	}

	err = h.queries.UpdateUserPassword(r.Context(), store.UpdateUserPasswordParams{
		PasswordHash: passwordHash,
		UpdatedAt:    time.Now().UTC(),
		ID:           stored.UserID,
	})
	if err != nil {
		slog.Error("failed to update password", "error", err)
		WriteInternalError(w, "Password reset failed")
		return
	}

	if err := h.queries.MarkPasswordResetTokenUsed(r.Context(), stored.ID); err != nil {
		slog.Error("failed to consume reset token", "error", err)
	}
	if err := h.queries.RevokeUserRefreshTokens(r.Context(), stored.UserID); err != nil {
		slog.Error("failed to revoke sessions after reset", "error", err)
	}

	_ = h.events.LogAuth(r, model.EventLevelInfo, "password reset completed", &stored.UserID, nil)
	WriteMessage(w, "Password has been reset")
}
