package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/V4T54L/yapli/internal/adapter/metrics"
	"github.com/V4T54L/yapli/internal/domain"
)

// RoomFinder looks rooms up by their public code.
type RoomFinder interface {
	Get(ctx context.Context, roomURL string) (*domain.Chatroom, error)
}

// RoomStream serves a Server-Sent Events stream of the messages posted to a room.
type RoomStream struct {
	rooms      RoomFinder
	subscriber domain.MessageSubscriber
	logger     *slog.Logger
	metrics    *metrics.Metrics
	heartbeat  time.Duration
}

// NewRoomStream creates a new RoomStream. A comment line is written every
// heartbeat so idle proxies keep the connection open.
func NewRoomStream(rooms RoomFinder, subscriber domain.MessageSubscriber, logger *slog.Logger, m *metrics.Metrics, heartbeat time.Duration) *RoomStream {
	return &RoomStream{
		rooms:      rooms,
		subscriber: subscriber,
		logger:     logger,
		metrics:    m,
		heartbeat:  heartbeat,
	}
}

// ServeHTTP handles new client connections for a room's event stream.
// GET /api/rooms/{roomURL}/events
func (s *RoomStream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported!", http.StatusInternalServerError)
		return
	}

	roomURL := chi.URLParam(r, "roomURL")
	if _, err := s.rooms.Get(r.Context(), roomURL); err != nil {
		writeError(w, r, err)
		return
	}

	ctx := r.Context()
	messages, cancel, err := s.subscriber.Subscribe(ctx, roomURL)
	if err != nil {
		writeError(w, r, fmt.Errorf("subscribe to room %s: %w", roomURL, err))
		return
	}
	defer cancel()

	// The API server's WriteTimeout would otherwise cut long-lived streams.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	s.metrics.SSEClients.Inc()
	defer s.metrics.SSEClients.Dec()
	s.logger.Info("SSE client connected", "room_url", roomURL)
	defer s.logger.Info("SSE client disconnected", "room_url", roomURL)

	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case msg, ok := <-messages:
			if !ok {
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				s.logger.Error("Failed to marshal SSE message", "error", err)
				continue
			}
			fmt.Fprintf(w, "id: %s\nevent: message\ndata: %s\n\n", msg.ID, data)
			flusher.Flush()
		}
	}
}
