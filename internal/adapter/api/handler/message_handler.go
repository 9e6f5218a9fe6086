package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/V4T54L/yapli/internal/adapter/metrics"
	"github.com/V4T54L/yapli/internal/domain"
	"github.com/V4T54L/yapli/internal/usecase"
)

// MessageService posts and lists room messages.
type MessageService interface {
	Post(ctx context.Context, roomURL string, in usecase.PostMessageInput) (*domain.Message, error)
	List(ctx context.Context, roomURL string, limit int) ([]domain.Message, error)
}

// MessageHandler handles the /api/rooms/{roomURL}/messages endpoints.
type MessageHandler struct {
	messages MessageService
	logger   *slog.Logger
	metrics  *metrics.Metrics
	maxBytes int64
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(messages MessageService, logger *slog.Logger, m *metrics.Metrics, maxBytes int64) *MessageHandler {
	return &MessageHandler{
		messages: messages,
		logger:   logger,
		metrics:  m,
		maxBytes: maxBytes,
	}
}

type postMessageRequest struct {
	Alias       string              `json:"alias"`
	Message     string              `json:"message"`
	LinkPreview *domain.LinkPreview `json:"link_preview,omitempty"`
}

// Post adds a message to a room. No session is required; the alias is free text.
// POST /api/rooms/{roomURL}/messages
func (h *MessageHandler) Post(w http.ResponseWriter, r *http.Request) {
	var req postMessageRequest
	if err := decodeJSON(w, r, h.maxBytes, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	msg, err := h.messages.Post(r.Context(), chi.URLParam(r, "roomURL"), usecase.PostMessageInput{
		Alias:       req.Alias,
		Text:        req.Message,
		LinkPreview: req.LinkPreview,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.metrics.MessagesPosted.Inc()
	respondJSON(w, h.logger, http.StatusCreated, msg)
}

// List returns the most recent messages of a room, oldest first.
// GET /api/rooms/{roomURL}/messages?limit=N
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, r, fmt.Errorf("%w: limit must be a non-negative integer", domain.ErrInvalidInput))
			return
		}
		limit = n
	}

	msgs, err := h.messages.List(r.Context(), chi.URLParam(r, "roomURL"), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	respondJSON(w, h.logger, http.StatusOK, msgs)
}
