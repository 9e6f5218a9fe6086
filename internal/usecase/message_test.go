package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/V4T54L/yapli/internal/domain"
	"github.com/V4T54L/yapli/internal/domain/mocks"
)

func TestMessageUseCase_Post(t *testing.T) {
	logger := newTestLogger()
	room := domain.Chatroom{ID: uuid.New(), Title: "General", RoomURL: "696fcd", UserID: uuid.New()}

	setup := func() (*MessageUseCase, *mocks.MockMessageRepository, *mocks.MockPublisher) {
		rooms := &mocks.MockChatroomRepository{Rooms: []domain.Chatroom{room}}
		msgs := &mocks.MockMessageRepository{}
		pub := &mocks.MockPublisher{}
		return NewMessageUseCase(rooms, msgs, pub, logger), msgs, pub
	}

	t.Run("Stores and publishes", func(t *testing.T) {
		uc, msgs, pub := setup()
		msg, err := uc.Post(context.Background(), "696fcd", PostMessageInput{Alias: " Alice ", Text: "Hello everyone!"})
		require.NoError(t, err)
		require.Equal(t, "Alice", msg.Alias)
		require.Equal(t, room.ID, msg.ChatroomID)
		require.Len(t, msgs.Messages, 1)
		require.Len(t, pub.Published["696fcd"], 1)
		require.Equal(t, msg.ID, pub.Published["696fcd"][0].ID)
	})

	t.Run("With link preview", func(t *testing.T) {
		uc, msgs, _ := setup()
		_, err := uc.Post(context.Background(), "696fcd", PostMessageInput{
			Alias:       "Bob",
			Text:        "Check out https://yapli.chat",
			LinkPreview: &domain.LinkPreview{URL: "https://yapli.chat", Title: "Yapli Chat", Domain: "yapli.chat"},
		})
		require.NoError(t, err)
		require.NotNil(t, msgs.Messages[0].LinkPreview)
		require.Equal(t, "yapli.chat", msgs.Messages[0].LinkPreview.Domain)
	})

	t.Run("Invalid link preview url", func(t *testing.T) {
		uc, msgs, _ := setup()
		_, err := uc.Post(context.Background(), "696fcd", PostMessageInput{
			Alias:       "Bob",
			Text:        "broken",
			LinkPreview: &domain.LinkPreview{URL: "not a url"},
		})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
		require.Contains(t, err.Error(), "url must be a valid URL")
		require.Empty(t, msgs.Messages)
	})

	t.Run("Missing alias and text", func(t *testing.T) {
		uc, _, _ := setup()
		_, err := uc.Post(context.Background(), "696fcd", PostMessageInput{Alias: "  ", Text: ""})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
		require.Contains(t, err.Error(), "alias is required")
		require.Contains(t, err.Error(), "text is required")
	})

	t.Run("Text too long", func(t *testing.T) {
		uc, _, _ := setup()
		_, err := uc.Post(context.Background(), "696fcd", PostMessageInput{Alias: "A", Text: strings.Repeat("x", 2001)})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("Unknown room", func(t *testing.T) {
		uc, _, _ := setup()
		_, err := uc.Post(context.Background(), "nope00", PostMessageInput{Alias: "A", Text: "hi"})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Publish failure does not fail the post", func(t *testing.T) {
		uc, msgs, pub := setup()
		pub.PublishErr = errors.New("redis down")
		_, err := uc.Post(context.Background(), "696fcd", PostMessageInput{Alias: "A", Text: "hi"})
		require.NoError(t, err)
		require.Len(t, msgs.Messages, 1)
	})

	t.Run("Store failure", func(t *testing.T) {
		uc, msgs, pub := setup()
		msgs.CreateErr = errors.New("disk full")
		_, err := uc.Post(context.Background(), "696fcd", PostMessageInput{Alias: "A", Text: "hi"})
		require.Error(t, err)
		require.Empty(t, pub.Published)
	})
}

func TestMessageUseCase_List(t *testing.T) {
	logger := newTestLogger()
	room := domain.Chatroom{ID: uuid.New(), Title: "General", RoomURL: "696fcd", UserID: uuid.New()}
	rooms := &mocks.MockChatroomRepository{Rooms: []domain.Chatroom{room}}
	base := time.Now()
	msgs := &mocks.MockMessageRepository{Messages: []domain.Message{
		{ID: uuid.New(), ChatroomID: room.ID, Alias: "B", Text: "second", CreatedAt: base.Add(time.Second)},
		{ID: uuid.New(), ChatroomID: room.ID, Alias: "A", Text: "first", CreatedAt: base},
	}}
	uc := NewMessageUseCase(rooms, msgs, nil, logger)

	tests := []struct {
		limit     int
		wantLimit int
	}{
		{0, DefaultMessageLimit},
		{-3, DefaultMessageLimit},
		{10, 10},
		{1000, MaxMessageLimit},
	}
	for _, tt := range tests {
		list, err := uc.List(context.Background(), "696fcd", tt.limit)
		require.NoError(t, err)
		require.Equal(t, tt.wantLimit, msgs.LastLimit)
		require.Len(t, list, 2)
		require.Equal(t, "first", list[0].Text)
	}

	_, err := uc.List(context.Background(), "nope00", 10)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
