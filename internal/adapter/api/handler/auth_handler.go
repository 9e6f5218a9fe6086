package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/V4T54L/yapli/internal/adapter/api/middleware"
	"github.com/V4T54L/yapli/internal/adapter/metrics"
	"github.com/V4T54L/yapli/internal/domain"
	"github.com/V4T54L/yapli/internal/usecase"
)

// Authenticator registers accounts and issues session tokens.
type Authenticator interface {
	Register(ctx context.Context, in usecase.RegisterInput) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
}

// AuthHandler handles the /api/auth endpoints.
type AuthHandler struct {
	auth       Authenticator
	logger     *slog.Logger
	metrics    *metrics.Metrics
	maxBytes   int64
	sessionTTL time.Duration
}

// NewAuthHandler creates a new AuthHandler. sessionTTL bounds the session cookie.
func NewAuthHandler(auth Authenticator, logger *slog.Logger, m *metrics.Metrics, maxBytes int64, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		auth:       auth,
		logger:     logger,
		metrics:    m,
		maxBytes:   maxBytes,
		sessionTTL: sessionTTL,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Register creates an account.
// POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, h.maxBytes, &req); err != nil {
		h.metrics.AuthAttempts.WithLabelValues("register", "invalid").Inc()
		writeDecodeError(w, r, err)
		return
	}

	token, err := h.auth.Register(r.Context(), usecase.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrAlreadyExists):
		h.metrics.AuthAttempts.WithLabelValues("register", "conflict").Inc()
		respondError(w, h.logger, http.StatusConflict, "An account with this email already exists")
		return
	default:
		h.metrics.AuthAttempts.WithLabelValues("register", authOutcome(err)).Inc()
		writeError(w, r, err)
		return
	}

	h.metrics.AuthAttempts.WithLabelValues("register", "success").Inc()
	h.setSession(w, token)
	respondJSON(w, h.logger, http.StatusCreated, tokenResponse{Token: token})
}

// Login exchanges credentials for a session token.
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, h.maxBytes, &req); err != nil {
		h.metrics.AuthAttempts.WithLabelValues("login", "invalid").Inc()
		writeDecodeError(w, r, err)
		return
	}

	token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.metrics.AuthAttempts.WithLabelValues("login", authOutcome(err)).Inc()
		writeError(w, r, err)
		return
	}

	h.metrics.AuthAttempts.WithLabelValues("login", "success").Inc()
	h.setSession(w, token)
	respondJSON(w, h.logger, http.StatusOK, tokenResponse{Token: token})
}

func (h *AuthHandler) setSession(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func authOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid"
	default:
		return "error"
	}
}
