package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/V4T54L/yapli/internal/adapter/api/middleware"
	"github.com/V4T54L/yapli/internal/adapter/metrics"
	"github.com/V4T54L/yapli/internal/domain"
)

// NameTakenMessage is reported when the caller already owns a room with the
// requested title.
const NameTakenMessage = "You already have a room with this name"

// RoomNameChecker answers room-name availability queries.
type RoomNameChecker interface {
	CheckAvailability(ctx context.Context, identity string, candidate *string) (domain.Availability, error)
}

// RoomService manages the caller's chatrooms.
type RoomService interface {
	Create(ctx context.Context, identity, title string) (*domain.Chatroom, error)
	List(ctx context.Context, identity string) ([]domain.Chatroom, error)
	Get(ctx context.Context, roomURL string) (*domain.Chatroom, error)
	Delete(ctx context.Context, identity, roomURL string) error
}

// RoomHandler handles the /api/rooms endpoints.
type RoomHandler struct {
	names    RoomNameChecker
	rooms    RoomService
	logger   *slog.Logger
	metrics  *metrics.Metrics
	maxBytes int64
}

// NewRoomHandler creates a new RoomHandler.
func NewRoomHandler(names RoomNameChecker, rooms RoomService, logger *slog.Logger, m *metrics.Metrics, maxBytes int64) *RoomHandler {
	return &RoomHandler{
		names:    names,
		rooms:    rooms,
		logger:   logger,
		metrics:  m,
		maxBytes: maxBytes,
	}
}

type titleRequest struct {
	Title json.RawMessage `json:"title"`
}

type createRoomRequest struct {
	Title string `json:"title"`
}

// CheckName reports whether the caller could create a room with the given title.
// An unreadable body is reported only after the caller and owner are resolved,
// so session and owner failures take precedence over malformed input.
// POST /api/rooms/check-name
func (h *RoomHandler) CheckName(w http.ResponseWriter, r *http.Request) {
	var req titleRequest
	decodeErr := decodeJSON(w, r, h.maxBytes, &req)
	var maxBytesErr *http.MaxBytesError
	if errors.As(decodeErr, &maxBytesErr) {
		h.metrics.NameChecks.WithLabelValues("invalid").Inc()
		writeDecodeError(w, r, decodeErr)
		return
	}

	var candidate *string
	if decodeErr == nil {
		candidate = stringField(req.Title)
	}

	identity := middleware.IdentityFromContext(r.Context())
	result, err := h.names.CheckAvailability(r.Context(), identity, candidate)
	if decodeErr != nil && errors.Is(err, domain.ErrTitleRequired) {
		err = decodeErr
	}
	if err != nil {
		h.metrics.NameChecks.WithLabelValues(checkOutcome(err)).Inc()
		writeError(w, r, err)
		return
	}

	outcome := "unavailable"
	if result.Available {
		outcome = "available"
	}
	h.metrics.NameChecks.WithLabelValues(outcome).Inc()
	respondJSON(w, h.logger, http.StatusOK, result)
}

func checkOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, domain.ErrOwnerNotFound):
		return "owner_not_found"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid"
	default:
		return "error"
	}
}

// Create makes a new room owned by the caller.
// POST /api/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := decodeJSON(w, r, h.maxBytes, &req); err != nil {
		h.metrics.RoomsCreated.WithLabelValues("invalid").Inc()
		writeDecodeError(w, r, err)
		return
	}

	room, err := h.rooms.Create(r.Context(), middleware.IdentityFromContext(r.Context()), req.Title)
	switch {
	case err == nil:
		h.metrics.RoomsCreated.WithLabelValues("created").Inc()
		respondJSON(w, h.logger, http.StatusCreated, room)
	case errors.Is(err, domain.ErrAlreadyExists):
		h.metrics.RoomsCreated.WithLabelValues("name_taken").Inc()
		respondError(w, h.logger, http.StatusConflict, NameTakenMessage)
	case errors.Is(err, domain.ErrInvalidInput):
		h.metrics.RoomsCreated.WithLabelValues("invalid").Inc()
		writeError(w, r, err)
	default:
		h.metrics.RoomsCreated.WithLabelValues("error").Inc()
		writeError(w, r, err)
	}
}

// List returns the caller's rooms.
// GET /api/rooms
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.rooms.List(r.Context(), middleware.IdentityFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rooms == nil {
		rooms = []domain.Chatroom{}
	}
	respondJSON(w, h.logger, http.StatusOK, rooms)
}

// Get returns the public details of a room.
// GET /api/rooms/{roomURL}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	room, err := h.rooms.Get(r.Context(), chi.URLParam(r, "roomURL"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, room)
}

// Delete removes one of the caller's rooms.
// DELETE /api/rooms/{roomURL}
func (h *RoomHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.rooms.Delete(r.Context(), middleware.IdentityFromContext(r.Context()), chi.URLParam(r, "roomURL"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
