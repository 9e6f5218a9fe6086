package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/V4T54L/yapli/internal/domain"
	"github.com/V4T54L/yapli/internal/pkg/auth"
)

// SeedUser is the sample account created by the seeder.
var SeedUser = struct {
	Name, Email, Password string
}{
	Name:     "Test User",
	Email:    "testuser@example.com",
	Password: "password123",
}

type seedMessage struct {
	alias   string
	text    string
	preview *domain.LinkPreview
}

type seedRoom struct {
	title    string
	roomURL  string
	messages []seedMessage
}

var seedRooms = []seedRoom{
	{
		title:   "General",
		roomURL: "696fcd",
		messages: []seedMessage{
			{alias: "Alice", text: "Hello everyone! Welcome to the General chat."},
			{
				alias: "Bob",
				text:  "Hey Alice! Check out this link https://yapli.chat",
				preview: &domain.LinkPreview{
					URL:         "https://yapli.chat",
					Title:       "Yapli Chat",
					Description: "A low-friction chat application built with Next.js and Prisma",
					Domain:      "yapli.chat",
					SiteName:    "Yapli",
				},
			},
		},
	},
	{
		title:   "Technology",
		roomURL: "2zjbmc",
		messages: []seedMessage{
			{alias: "Charlie", text: "Did you see the latest developments in AI?"},
			{alias: "Dana", text: "Yes! The new models are impressive."},
		},
	},
}

// SeedReport summarizes what a seeding run wrote.
type SeedReport struct {
	UserCreated  bool
	RoomsCreated int
	RoomsSkipped int
	Messages     int
}

// SeedUseCase populates an empty database with sample data.
type SeedUseCase struct {
	users    domain.UserRepository
	rooms    domain.ChatroomRepository
	messages domain.MessageRepository
	logger   *slog.Logger
}

// NewSeedUseCase creates a new SeedUseCase.
func NewSeedUseCase(users domain.UserRepository, rooms domain.ChatroomRepository, messages domain.MessageRepository, logger *slog.Logger) *SeedUseCase {
	return &SeedUseCase{
		users:    users,
		rooms:    rooms,
		messages: messages,
		logger:   logger,
	}
}

// Run writes the sample user, rooms and messages. It is safe to run twice:
// the user is reused and rooms whose code already exists are skipped along
// with their messages.
func (uc *SeedUseCase) Run(ctx context.Context) (SeedReport, error) {
	var report SeedReport

	user, created, err := uc.ensureUser(ctx)
	if err != nil {
		return report, err
	}
	report.UserCreated = created

	// Spread message timestamps so listing order matches seed order.
	base := time.Now().UTC()
	for _, sr := range seedRooms {
		_, err := uc.rooms.FindByRoomURL(ctx, sr.roomURL)
		if err == nil {
			uc.logger.Info("seed room already present, skipping", "room_url", sr.roomURL)
			report.RoomsSkipped++
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return report, fmt.Errorf("lookup seed room %s: %w", sr.roomURL, err)
		}

		room := &domain.Chatroom{
			ID:        uuid.New(),
			Title:     sr.title,
			RoomURL:   sr.roomURL,
			UserID:    user.ID,
			CreatedAt: base,
		}
		if err := uc.rooms.Create(ctx, room); err != nil {
			return report, fmt.Errorf("create seed room %s: %w", sr.title, err)
		}
		report.RoomsCreated++

		for _, sm := range sr.messages {
			base = base.Add(time.Second)
			msg := &domain.Message{
				ID:          uuid.New(),
				ChatroomID:  room.ID,
				Alias:       sm.alias,
				Text:        sm.text,
				CreatedAt:   base,
				LinkPreview: sm.preview,
			}
			if err := uc.messages.Create(ctx, msg); err != nil {
				return report, fmt.Errorf("create seed message: %w", err)
			}
			report.Messages++
		}
	}

	uc.logger.Info("database seeded with test data",
		"user_created", report.UserCreated,
		"rooms_created", report.RoomsCreated,
		"rooms_skipped", report.RoomsSkipped,
		"messages", report.Messages,
	)
	return report, nil
}

func (uc *SeedUseCase) ensureUser(ctx context.Context) (*domain.User, bool, error) {
	user, err := uc.users.FindByEmail(ctx, SeedUser.Email)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, fmt.Errorf("lookup seed user: %w", err)
	}

	hash, err := auth.HashPassword(SeedUser.Password)
	if err != nil {
		return nil, false, fmt.Errorf("hash seed password: %w", err)
	}
	now := time.Now().UTC()
	user = &domain.User{
		ID:           uuid.New(),
		Name:         SeedUser.Name,
		Email:        SeedUser.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.users.Store(ctx, user); err != nil {
		return nil, false, fmt.Errorf("store seed user: %w", err)
	}
	return user, true, nil
}
