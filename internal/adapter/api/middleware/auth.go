package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/V4T54L/yapli/internal/pkg/auth"
)

const (
	AuthorizationHeader = "Authorization"
	SessionCookie       = "yapli_session"
)

type identityKey struct{}

// WithIdentity stores the authenticated caller's email in ctx.
func WithIdentity(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, identityKey{}, email)
}

// IdentityFromContext returns the authenticated caller's email, or "".
func IdentityFromContext(ctx context.Context) string {
	email, _ := ctx.Value(identityKey{}).(string)
	return email
}

// Auth is a middleware factory that returns a new authentication middleware.
// It accepts a bearer token in the Authorization header, falling back to the
// session cookie, and rejects the request with 401 when neither validates.
func Auth(jwtSecret string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sessionToken(r)
			if token == "" {
				logger.Warn("session token missing from request", "remote_addr", r.RemoteAddr)
				unauthorized(w)
				return
			}

			claims, err := auth.ValidateToken(token, jwtSecret)
			if err != nil {
				logger.Warn("invalid session token", "remote_addr", r.RemoteAddr, "error", err)
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), claims.Email)))
		})
	}
}

func sessionToken(r *http.Request) string {
	if h := r.Header.Get(AuthorizationHeader); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

func unauthorized(w http.ResponseWriter) {
	writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
