package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/V4T54L/yapli/internal/adapter/api/middleware"
	"github.com/V4T54L/yapli/internal/domain"
)

// errorResponse is the body of every non-2xx JSON response.
type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, logger *slog.Logger, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondError(w http.ResponseWriter, logger *slog.Logger, code int, msg string) {
	respondJSON(w, logger, code, errorResponse{Error: msg})
}

// writeError maps the domain error taxonomy onto HTTP statuses. Anything
// outside the taxonomy is logged and reported as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	logger := middleware.LoggerFromContext(r.Context())

	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		respondError(w, logger, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, domain.ErrInvalidCredentials):
		respondError(w, logger, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, domain.ErrOwnerNotFound):
		respondError(w, logger, http.StatusNotFound, "User not found")
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, logger, http.StatusNotFound, "Not found")
	case errors.Is(err, domain.ErrInvalidInput):
		respondError(w, logger, http.StatusBadRequest, invalidInputMessage(err))
	case errors.Is(err, domain.ErrAlreadyExists):
		respondError(w, logger, http.StatusConflict, "Already exists")
	default:
		logger.Error("request failed", "error", err)
		respondError(w, logger, http.StatusInternalServerError, "Internal server error")
	}
}

// invalidInputMessage strips the sentinel prefix and capitalizes the detail:
// "invalid input: name cannot be empty" becomes "Name cannot be empty".
func invalidInputMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), domain.ErrInvalidInput.Error())
	msg = strings.TrimPrefix(msg, ": ")
	if msg == "" {
		return "Invalid input"
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

// decodeJSON reads a size-limited JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", domain.ErrInvalidInput)
		}
		return fmt.Errorf("%w: invalid JSON body", domain.ErrInvalidInput)
	}
	return nil
}

// writeDecodeError reports a decodeJSON failure.
func writeDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		respondError(w, middleware.LoggerFromContext(r.Context()), http.StatusRequestEntityTooLarge, "Payload too large")
		return
	}
	writeError(w, r, err)
}

// stringField interprets a raw JSON value as a string. Missing, null and
// non-string values yield nil.
func stringField(raw json.RawMessage) *string {
	if len(raw) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	if string(raw) == "null" {
		return nil
	}
	return &s
}
