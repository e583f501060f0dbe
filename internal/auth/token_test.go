// Copyright (c) 2025-2026 Folioworks
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-signing-secret-32-bytes-ok!"

func TestTokenService_IssueAndValidate(t *testing.T) {
	svc := NewTokenService(testSecret, 15*time.Minute)

	token, err := svc.Issue(42, "admin@example.com", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
}

func TestTokenService_Expired(t *testing.T) {
	svc := NewTokenService(testSecret, -time.Minute)

	token, err := svc.Issue(1, "editor@example.com", "editor")
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_WrongSecret(t *testing.T) {
	svc := NewTokenService(testSecret, 15*time.Minute)
	other := NewTokenService("another-signing-secret-32-bytes!", 15*time.Minute)

	token, err := svc.Issue(1, "editor@example.com", "editor")
	require.NoError(t, err)

	_, err = other.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_Malformed(t *testing.T) {
	svc := NewTokenService(testSecret, 15*time.Minute)

	for _, raw := range []string{"", "garbage", "a.b.c"} {
		_, err := svc.Validate(raw)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", raw)
	}
}

func TestHashToken(t *testing.T) {
	a := HashToken("some-opaque-token")
	b := HashToken("some-opaque-token")
	c := HashToken("another-token")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64) // hex SHA-256
	assert.NotContains(t, a, "some-opaque-token")
}
