package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidaview-backend/internal/domain"
)

func TestTokenManager(t *testing.T) {
	user := &domain.User{ID: 7, Email: "owner@example.com", Role: domain.RoleOwner}
	tm := NewTokenManager("test-secret", time.Hour, 24*time.Hour)

	t.Run("Access token round trip", func(t *testing.T) {
		token, err := tm.GenerateAccessToken(user)
		require.NoError(t, err)

		claims, err := tm.ValidateToken(token, TokenTypeAccess)
		require.NoError(t, err)
		assert.Equal(t, domain.Actor{UserID: 7, Role: domain.RoleOwner}, claims.Actor())
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("Refresh token rejected as access token", func(t *testing.T) {
		token, err := tm.GenerateRefreshToken(user)
		require.NoError(t, err)

		_, err = tm.ValidateToken(token, TokenTypeAccess)
		assert.ErrorIs(t, err, ErrWrongTokenType)
	})

	t.Run("Wrong secret", func(t *testing.T) {
		token, err := NewTokenManager("other", time.Hour, time.Hour).GenerateAccessToken(user)
		require.NoError(t, err)

		_, err = tm.ValidateToken(token, TokenTypeAccess)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Expired token", func(t *testing.T) {
		expired := &tokenManager{secret: []byte("test-secret"), accessTTL: time.Minute,
			now: func() time.Time { return time.Now().Add(-2 * time.Hour) }}
		token, err := expired.GenerateAccessToken(user)
		require.NoError(t, err)

		_, err = tm.ValidateToken(token, TokenTypeAccess)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := tm.ValidateToken("not-a-token", TokenTypeAccess)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
