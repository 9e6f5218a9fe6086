package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/V4T54L/yapli/internal/domain"
	"github.com/V4T54L/yapli/internal/pkg/auth"
)

// RegisterInput is the validated payload of a new account.
type RegisterInput struct {
	Name     string `validate:"required,max=100"`
	Email    string `validate:"required,email,max=254"`
	Password string `validate:"required,min=8,max=72"`
}

// AuthUseCase registers accounts and issues session tokens.
type AuthUseCase struct {
	users     domain.UserRepository
	jwtSecret string
	jwtExpiry time.Duration
	logger    *slog.Logger
}

// NewAuthUseCase creates a new AuthUseCase.
func NewAuthUseCase(users domain.UserRepository, jwtSecret string, jwtExpiry time.Duration, logger *slog.Logger) *AuthUseCase {
	return &AuthUseCase{
		users:     users,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
		logger:    logger,
	}
}

// Register creates an account and returns its first session token.
func (uc *AuthUseCase) Register(ctx context.Context, in RegisterInput) (string, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := validate.Struct(in); err != nil {
		return "", validationError(err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.users.Store(ctx, user); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return "", domain.ErrAlreadyExists
		}
		return "", fmt.Errorf("store user: %w", err)
	}

	uc.logger.Info("user registered", "user_id", user.ID)
	return auth.GenerateToken(user.ID, user.Email, uc.jwtSecret, uc.jwtExpiry)
}

// Login verifies credentials and returns a session token. Unknown emails and
// wrong passwords both yield domain.ErrInvalidCredentials.
func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (string, error) {
	user, err := uc.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		return "", err
	}

	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return "", domain.ErrInvalidCredentials
	}

	return auth.GenerateToken(user.ID, user.Email, uc.jwtSecret, uc.jwtExpiry)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
