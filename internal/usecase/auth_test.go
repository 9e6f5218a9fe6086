package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/V4T54L/yapli/internal/domain"
	"github.com/V4T54L/yapli/internal/domain/mocks"
	"github.com/V4T54L/yapli/internal/pkg/auth"
)

func TestAuthUseCase(t *testing.T) {
	logger := newTestLogger()
	users := mocks.NewMockUserRepository()
	uc := NewAuthUseCase(users, "secret", time.Hour, logger)
	ctx := context.Background()

	token, err := uc.Register(ctx, RegisterInput{Name: "Alice", Email: " Alice@Example.com ", Password: "password123"})
	require.NoError(t, err)

	claims, err := auth.ValidateToken(token, "secret")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", claims.Email)

	stored := users.Users["alice@example.com"]
	require.NotNil(t, stored)
	require.NotEqual(t, "password123", stored.PasswordHash)

	t.Run("Duplicate email", func(t *testing.T) {
		_, err := uc.Register(ctx, RegisterInput{Name: "Alice 2", Email: "alice@example.com", Password: "password123"})
		require.ErrorIs(t, err, domain.ErrAlreadyExists)
	})

	t.Run("Validation", func(t *testing.T) {
		cases := []RegisterInput{
			{Name: "", Email: "x@example.com", Password: "password123"},
			{Name: "X", Email: "not-an-email", Password: "password123"},
			{Name: "X", Email: "x@example.com", Password: "short"},
		}
		for _, in := range cases {
			_, err := uc.Register(ctx, in)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
		}
	})

	t.Run("Login", func(t *testing.T) {
		token, err := uc.Login(ctx, "ALICE@example.com", "password123")
		require.NoError(t, err)
		_, err = auth.ValidateToken(token, "secret")
		require.NoError(t, err)
	})

	t.Run("Login wrong password", func(t *testing.T) {
		_, err := uc.Login(ctx, "alice@example.com", "wrong-password")
		require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("Login unknown email", func(t *testing.T) {
		_, err := uc.Login(ctx, "ghost@example.com", "password123")
		require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})
}
