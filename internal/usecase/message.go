package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/V4T54L/yapli/internal/domain"
)

const (
	DefaultMessageLimit = 50
	MaxMessageLimit     = 200
)

// PostMessageInput is the validated payload of a new message.
type PostMessageInput struct {
	Alias       string              `validate:"required,max=50"`
	Text        string              `validate:"required,max=2000"`
	LinkPreview *domain.LinkPreview `validate:"omitempty"`
}

// MessageUseCase posts and lists room messages.
type MessageUseCase struct {
	rooms     domain.ChatroomRepository
	messages  domain.MessageRepository
	publisher domain.MessagePublisher
	logger    *slog.Logger
}

// NewMessageUseCase creates a new MessageUseCase. publisher may be nil when no
// live fan-out is configured.
func NewMessageUseCase(rooms domain.ChatroomRepository, messages domain.MessageRepository, publisher domain.MessagePublisher, logger *slog.Logger) *MessageUseCase {
	return &MessageUseCase{
		rooms:     rooms,
		messages:  messages,
		publisher: publisher,
		logger:    logger,
	}
}

// Post validates, stores and broadcasts a message to the room identified by roomURL.
func (uc *MessageUseCase) Post(ctx context.Context, roomURL string, in PostMessageInput) (*domain.Message, error) {
	in.Alias = strings.TrimSpace(in.Alias)
	in.Text = strings.TrimSpace(in.Text)
	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	room, err := uc.rooms.FindByRoomURL(ctx, roomURL)
	if err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ID:          uuid.New(),
		ChatroomID:  room.ID,
		Alias:       in.Alias,
		Text:        in.Text,
		CreatedAt:   time.Now().UTC(),
		LinkPreview: in.LinkPreview,
	}

	if err := uc.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("store message: %w", err)
	}

	// The message is durable at this point; a failed broadcast only delays
	// live readers until their next fetch.
	if uc.publisher != nil {
		if err := uc.publisher.Publish(ctx, room.RoomURL, *msg); err != nil {
			uc.logger.Warn("failed to publish message", "error", err, "message_id", msg.ID, "room_url", room.RoomURL)
		}
	}

	return msg, nil
}

// List returns the most recent messages of a room, oldest first. limit is
// clamped to (0, MaxMessageLimit]; non-positive means DefaultMessageLimit.
func (uc *MessageUseCase) List(ctx context.Context, roomURL string, limit int) ([]domain.Message, error) {
	switch {
	case limit <= 0:
		limit = DefaultMessageLimit
	case limit > MaxMessageLimit:
		limit = MaxMessageLimit
	}

	room, err := uc.rooms.FindByRoomURL(ctx, roomURL)
	if err != nil {
		return nil, err
	}

	msgs, err := uc.messages.ListByChatroom(ctx, room.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}
