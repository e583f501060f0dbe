// Copyright (c) 2025-2026 Folioworks
// SPDX-License-Identifier: GPL-3.0-or-later

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/folioworks/folio-go/internal/model"
)

// ErrNotAuthenticated is returned by calls that need a session when the
// store holds none.
var ErrNotAuthenticated = errors.New("not authenticated")

// loginEnvelope matches the login and refresh response shape, which carries
// the tokens at the top level rather than inside data.
type loginEnvelope struct {
	Success      bool   `json:"success"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	Error        string `json:"error"`
	Data         struct {
		User model.User `json:"user"`
	} `json:"data"`
}

// Login authenticates and stores the resulting session. On failure nothing
// is stored and the server's message is returned as the error.
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	envelope, err := c.tokenRequest(ctx, "auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return Session{}, err
	}

	session := Session{
		Token:        envelope.Token,
		RefreshToken: envelope.RefreshToken,
		User:         envelope.Data.User,
	}
	if err := c.sessions.Save(session); err != nil {
		return Session{}, fmt.Errorf("saving session: %w", err)
	}
	return session, nil
}

// Logout invalidates the server-side session best-effort and always clears
// the local store. It never fails the caller on a server error.
func (c *Client) Logout(ctx context.Context) {
	if _, ok := c.sessions.Load(); ok {
		_ = c.do(ctx, http.MethodPost, "auth/logout", nil)
	}
	_ = c.sessions.Clear()
}

// CheckAuth validates the stored token against the server and refreshes
// the cached user snapshot. With no stored session it returns false
// without any network call. On any failure the local session is cleared.
// Safe to call on every application start.
func (c *Client) CheckAuth(ctx context.Context) bool {
	session, ok := c.sessions.Load()
	if !ok || session.Token == "" {
		return false
	}

	result := c.do(ctx, http.MethodGet, "auth/me", nil)
	if !result.Success {
		_ = c.sessions.Clear()
		return false
	}

	var payload struct {
		User model.User `json:"user"`
	}
	if err := json.Unmarshal(result.Data, &payload); err != nil {
		_ = c.sessions.Clear()
		return false
	}

	session.User = payload.User
	if err := c.sessions.Save(session); err != nil {
		_ = c.sessions.Clear()
		return false
	}
	return true
}

// RefreshToken exchanges the stored refresh token for a new token pair.
// Returns false on any failure; it never returns an error.
func (c *Client) RefreshToken(ctx context.Context) bool {
	session, ok := c.sessions.Load()
	if !ok || session.RefreshToken == "" {
		return false
	}

	envelope, err := c.tokenRequest(ctx, "auth/refresh-token", map[string]string{
		"refreshToken": session.RefreshToken,
	})
	if err != nil {
		return false
	}

	session.Token = envelope.Token
	session.RefreshToken = envelope.RefreshToken
	session.User = envelope.Data.User
	return c.sessions.Save(session) == nil
}

// CurrentUser returns the cached user snapshot from the session store.
func (c *Client) CurrentUser() (model.User, error) {
	session, ok := c.sessions.Load()
	if !ok {
		return model.User{}, ErrNotAuthenticated
	}
	return session.User, nil
}

// ForgotPassword requests a password reset for the given email. The server
// responds identically whether or not the account exists.
func (c *Client) ForgotPassword(ctx context.Context, email string) Result {
	return c.do(ctx, http.MethodPost, "auth/forgotpassword", map[string]string{"email": email})
}

// ResetPassword consumes a reset token and sets a new password.
func (c *Client) ResetPassword(ctx context.Context, token, password string) Result {
	return c.do(ctx, http.MethodPut, "auth/resetpassword/"+token, map[string]string{"password": password})
}

// tokenRequest posts to a token-issuing endpoint and decodes its envelope.
// These endpoints do not use the standard Result shape.
func (c *Client) tokenRequest(ctx context.Context, path string, body map[string]string) (*loginEnvelope, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+apiPrefix+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var envelope loginEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if !envelope.Success || envelope.Token == "" {
		msg := envelope.Error
		if msg == "" {
			msg = fmt.Sprintf("server returned %s", resp.Status)
		}
		return nil, errors.New(msg)
	}
	return &envelope, nil
}
