// Copyright (c) 2025-2026 Folioworks
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// RefreshToken is a stored refresh token record. Only the SHA-256 hash of
// the opaque token is persisted.
type RefreshToken struct {
	ID        int64
	UserID    int64
	TokenHash string
	ExpiresAt time.Time
	RevokedAt sql.NullTime
	CreatedAt time.Time
}

// PasswordResetToken is a stored single-use password reset record.
type PasswordResetToken struct {
	ID        int64
	UserID    int64
	TokenHash string
	ExpiresAt time.Time
	UsedAt    sql.NullTime
	CreatedAt time.Time
}

// CreateRefreshTokenParams holds the fields for persisting a refresh token.
type CreateRefreshTokenParams struct {
	UserID    int64
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// CreateRefreshToken persists a refresh token hash for a user.
func (q *Queries) CreateRefreshToken(ctx context.Context, arg CreateRefreshTokenParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at, created_at)
		VALUES (?, ?, ?, ?)`,
		arg.UserID, arg.TokenHash, arg.ExpiresAt, arg.CreatedAt)
	return err
}

// GetRefreshToken returns a refresh token record by hash.
func (q *Queries) GetRefreshToken(ctx context.Context, tokenHash string) (RefreshToken, error) {
	var t RefreshToken
	err := q.db.QueryRowContext(ctx, `
		SELECT id, user_id, token_hash, expires_at, revoked_at, created_at
		FROM refresh_tokens WHERE token_hash = ?`, tokenHash).
		Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.RevokedAt, &t.CreatedAt)
	return t, err
}

// RevokeRefreshToken marks a single refresh token as revoked.
func (q *Queries) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE refresh_tokens SET revoked_at = CURRENT_TIMESTAMP
		WHERE token_hash = ? AND revoked_at IS NULL`, tokenHash)
	return err
}

// RevokeUserRefreshTokens revokes every outstanding refresh token for a user.
// Used on logout and after a password reset.
func (q *Queries) RevokeUserRefreshTokens(ctx context.Context, userID int64) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE refresh_tokens SET revoked_at = CURRENT_TIMESTAMP
		WHERE user_id = ? AND revoked_at IS NULL`, userID)
	return err
}

// DeleteExpiredRefreshTokens removes tokens past their expiry. Returns the
// number of rows deleted.
func (q *Queries) DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expires_at < ?`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CreatePasswordResetTokenParams holds the fields for a reset token.
type CreatePasswordResetTokenParams struct {
	UserID    int64
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// CreatePasswordResetToken persists a password reset token hash.
func (q *Queries) CreatePasswordResetToken(ctx context.Context, arg CreatePasswordResetTokenParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO password_reset_tokens (user_id, token_hash, expires_at, created_at)
		VALUES (?, ?, ?, ?)`,
		arg.UserID, arg.TokenHash, arg.ExpiresAt, arg.CreatedAt)
	return err
}

// GetPasswordResetToken returns a reset token record by hash.
func (q *Queries) GetPasswordResetToken(ctx context.Context, tokenHash string) (PasswordResetToken, error) {
	var t PasswordResetToken
	err := q.db.QueryRowContext(ctx, `
		SELECT id, user_id, token_hash, expires_at, used_at, created_at
		FROM password_reset_tokens WHERE token_hash = ?`, tokenHash).
		Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.UsedAt, &t.CreatedAt)
	return t, err
}

// MarkPasswordResetTokenUsed consumes a reset token so it cannot be replayed.
func (q *Queries) MarkPasswordResetTokenUsed(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE password_reset_tokens SET used_at = CURRENT_TIMESTAMP
		WHERE id = ? AND used_at IS NULL`, id)
	return err
}

// DeleteExpiredPasswordResetTokens removes reset tokens past their expiry.
func (q *Queries) DeleteExpiredPasswordResetTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM password_reset_tokens WHERE expires_at < ?`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
