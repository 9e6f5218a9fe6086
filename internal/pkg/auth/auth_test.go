package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	req := require.New(t)

	hash, err := HashPassword("password123")
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$2a$"))
	req.True(CheckPasswordHash("password123", hash))
	req.False(CheckPasswordHash("password124", hash))
}

func TestGenerateAndValidateToken(t *testing.T) {
	req := require.New(t)
	id := uuid.New()

	token, err := GenerateToken(id, "alice@example.com", "secret", time.Hour)
	req.NoError(err)

	claims, err := ValidateToken(token, "secret")
	req.NoError(err)
	req.Equal(id, claims.UserID)
	req.Equal("alice@example.com", claims.Email)
}

func TestValidateToken_Rejects(t *testing.T) {
	id := uuid.New()

	t.Run("wrong secret", func(t *testing.T) {
		token, err := GenerateToken(id, "alice@example.com", "secret", time.Hour)
		require.NoError(t, err)
		_, err = ValidateToken(token, "other")
		require.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := GenerateToken(id, "alice@example.com", "secret", -time.Minute)
		require.NoError(t, err)
		_, err = ValidateToken(token, "secret")
		require.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ValidateToken("not-a-token", "secret")
		require.Error(t, err)
	})

	t.Run("missing email", func(t *testing.T) {
		token, err := GenerateToken(id, "", "secret", time.Hour)
		require.NoError(t, err)
		_, err = ValidateToken(token, "secret")
		require.Error(t, err)
	})
}
