package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/V4T54L/yapli/internal/domain"
)

// RoomNameUseCase answers whether an owner may use a room title.
type RoomNameUseCase struct {
	users  domain.UserRepository
	rooms  domain.ChatroomRepository
	logger *slog.Logger
}

// NewRoomNameUseCase creates a new RoomNameUseCase.
func NewRoomNameUseCase(users domain.UserRepository, rooms domain.ChatroomRepository, logger *slog.Logger) *RoomNameUseCase {
	return &RoomNameUseCase{
		users:  users,
		rooms:  rooms,
		logger: logger,
	}
}

// CheckAvailability reports whether the caller already owns a room titled
// candidate (after trimming). A nil candidate stands for a missing or
// non-string title in the request. The answer is advisory: nothing is
// reserved, and RoomUseCase.Create remains the enforcement point.
func (uc *RoomNameUseCase) CheckAvailability(ctx context.Context, identity string, candidate *string) (domain.Availability, error) {
	// 1-2. Authenticated caller with an existing user record
	owner, err := resolveOwner(ctx, uc.users, identity)
	if err != nil {
		return domain.Availability{}, err
	}

	// 3-4. Present, trimmed, non-empty title
	if candidate == nil {
		return domain.Availability{}, domain.ErrTitleRequired
	}
	title, err := domain.NormalizeTitle(*candidate)
	if err != nil {
		return domain.Availability{}, err
	}

	// 5. Owner-scoped lookup
	exists, err := uc.rooms.ExistsByOwnerAndTitle(ctx, owner.ID, title)
	if err != nil {
		return domain.Availability{}, fmt.Errorf("check room title: %w", err)
	}

	uc.logger.Debug("checked room name availability", "owner_id", owner.ID, "title", title, "available", !exists)
	return domain.Availability{Available: !exists, Title: title}, nil
}
