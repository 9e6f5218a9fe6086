package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/V4T54L/yapli/internal/domain"
)

const (
	roomURLAlphabet    = "abcdefghijklmnopqrstuvwxyz0123456789"
	maxRoomURLAttempts = 5
)

// RoomURLGenerator returns a candidate public room code.
type RoomURLGenerator func() (string, error)

// RandomRoomURL draws domain.RoomURLLength characters from [a-z0-9].
func RandomRoomURL() (string, error) {
	buf := make([]byte, domain.RoomURLLength)
	limit := big.NewInt(int64(len(roomURLAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		buf[i] = roomURLAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// RoomUseCase creates, lists and deletes chatrooms.
type RoomUseCase struct {
	users    domain.UserRepository
	rooms    domain.ChatroomRepository
	generate RoomURLGenerator
	logger   *slog.Logger
}

// NewRoomUseCase creates a new RoomUseCase. A nil generator uses RandomRoomURL.
func NewRoomUseCase(users domain.UserRepository, rooms domain.ChatroomRepository, generate RoomURLGenerator, logger *slog.Logger) *RoomUseCase {
	if generate == nil {
		generate = RandomRoomURL
	}
	return &RoomUseCase{
		users:    users,
		rooms:    rooms,
		generate: generate,
		logger:   logger,
	}
}

// Create persists a new room for the caller. Title uniqueness is enforced by
// the store at insert time, so a concurrent creation that slipped past an
// earlier availability check still fails with domain.ErrAlreadyExists.
func (uc *RoomUseCase) Create(ctx context.Context, identity, rawTitle string) (*domain.Chatroom, error) {
	owner, err := resolveOwner(ctx, uc.users, identity)
	if err != nil {
		return nil, err
	}

	title, err := domain.NormalizeTitle(rawTitle)
	if err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= maxRoomURLAttempts; attempt++ {
		roomURL, err := uc.generate()
		if err != nil {
			return nil, fmt.Errorf("generate room url: %w", err)
		}

		room := &domain.Chatroom{
			ID:        uuid.New(),
			Title:     title,
			RoomURL:   roomURL,
			UserID:    owner.ID,
			CreatedAt: time.Now().UTC(),
		}

		err = uc.rooms.Create(ctx, room)
		switch {
		case err == nil:
			uc.logger.Info("room created", "room_id", room.ID, "room_url", room.RoomURL, "owner_id", owner.ID)
			return room, nil
		case errors.Is(err, domain.ErrRoomURLTaken):
			uc.logger.Warn("room url collision, retrying", "room_url", roomURL, "attempt", attempt)
			continue
		case errors.Is(err, domain.ErrAlreadyExists):
			return nil, domain.ErrAlreadyExists
		default:
			return nil, fmt.Errorf("create room: %w", err)
		}
	}

	return nil, fmt.Errorf("create room: no free room url after %d attempts", maxRoomURLAttempts)
}

// List returns the caller's rooms.
func (uc *RoomUseCase) List(ctx context.Context, identity string) ([]domain.Chatroom, error) {
	owner, err := resolveOwner(ctx, uc.users, identity)
	if err != nil {
		return nil, err
	}
	rooms, err := uc.rooms.ListByOwner(ctx, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// Get looks a room up by its public code. Rooms are readable without a session.
func (uc *RoomUseCase) Get(ctx context.Context, roomURL string) (*domain.Chatroom, error) {
	return uc.rooms.FindByRoomURL(ctx, roomURL)
}

// Delete removes one of the caller's rooms. Another owner's room reports
// domain.ErrNotFound.
func (uc *RoomUseCase) Delete(ctx context.Context, identity, roomURL string) error {
	owner, err := resolveOwner(ctx, uc.users, identity)
	if err != nil {
		return err
	}
	if err := uc.rooms.Delete(ctx, owner.ID, roomURL); err != nil {
		return err
	}
	uc.logger.Info("room deleted", "room_url", roomURL, "owner_id", owner.ID)
	return nil
}
