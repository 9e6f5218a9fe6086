package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/V4T54L/yapli/internal/domain"
)

// MockUserRepository is an in-memory domain.UserRepository keyed by email.
type MockUserRepository struct {
	mu        sync.Mutex
	Users     map[string]*domain.User
	FindErr   error
	StoreErr  error
	FindCalls int
}

// NewMockUserRepository seeds the repository with the given users.
func NewMockUserRepository(users ...*domain.User) *MockUserRepository {
	m := &MockUserRepository{Users: make(map[string]*domain.User)}
	for _, u := range users {
		m.Users[u.Email] = u
	}
	return m
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FindCalls++
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	for _, u := range m.Users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FindCalls++
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	u, ok := m.Users[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (m *MockUserRepository) Store(ctx context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StoreErr != nil {
		return m.StoreErr
	}
	if m.Users == nil {
		m.Users = make(map[string]*domain.User)
	}
	if _, ok := m.Users[u.Email]; ok {
		return domain.ErrAlreadyExists
	}
	m.Users[u.Email] = u
	return nil
}

// MockChatroomRepository is an in-memory domain.ChatroomRepository that
// enforces the same uniqueness rules as the SQL schema.
type MockChatroomRepository struct {
	mu          sync.Mutex
	Rooms       []domain.Chatroom
	ExistsErr   error
	FindErr     error
	ListErr     error
	DeleteErr   error
	CreateErrs  []error // returned in order by successive Create calls before any insert
	ExistsCalls int
	CreateCalls int
}

func (m *MockChatroomRepository) ExistsByOwnerAndTitle(ctx context.Context, ownerID uuid.UUID, title string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ExistsCalls++
	if m.ExistsErr != nil {
		return false, m.ExistsErr
	}
	for _, r := range m.Rooms {
		if r.UserID == ownerID && r.Title == title {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockChatroomRepository) Create(ctx context.Context, room *domain.Chatroom) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	if len(m.CreateErrs) > 0 {
		err := m.CreateErrs[0]
		m.CreateErrs = m.CreateErrs[1:]
		if err != nil {
			return err
		}
	}
	for _, r := range m.Rooms {
		if r.UserID == room.UserID && r.Title == room.Title {
			return domain.ErrAlreadyExists
		}
		if r.RoomURL == room.RoomURL {
			return domain.ErrRoomURLTaken
		}
	}
	m.Rooms = append(m.Rooms, *room)
	return nil
}

func (m *MockChatroomRepository) FindByRoomURL(ctx context.Context, roomURL string) (*domain.Chatroom, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	for _, r := range m.Rooms {
		if r.RoomURL == roomURL {
			room := r
			return &room, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockChatroomRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Chatroom, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var rooms []domain.Chatroom
	for _, r := range m.Rooms {
		if r.UserID == ownerID {
			rooms = append(rooms, r)
		}
	}
	return rooms, nil
}

func (m *MockChatroomRepository) Delete(ctx context.Context, ownerID uuid.UUID, roomURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	for i, r := range m.Rooms {
		if r.UserID == ownerID && r.RoomURL == roomURL {
			m.Rooms = append(m.Rooms[:i], m.Rooms[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// MockMessageRepository is an in-memory domain.MessageRepository.
type MockMessageRepository struct {
	mu        sync.Mutex
	Messages  []domain.Message
	CreateErr error
	ListErr   error
	LastLimit int
}

func (m *MockMessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.Messages = append(m.Messages, *msg)
	return nil
}

func (m *MockMessageRepository) ListByChatroom(ctx context.Context, chatroomID uuid.UUID, limit int) ([]domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastLimit = limit
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var msgs []domain.Message
	for _, msg := range m.Messages {
		if msg.ChatroomID == chatroomID {
			msgs = append(msgs, msg)
		}
	}
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].CreatedAt.Before(msgs[j].CreatedAt) })
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

// MockPublisher records published messages.
type MockPublisher struct {
	mu         sync.Mutex
	Published  map[string][]domain.Message
	PublishErr error
}

func (m *MockPublisher) Publish(ctx context.Context, roomURL string, msg domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PublishErr != nil {
		return m.PublishErr
	}
	if m.Published == nil {
		m.Published = make(map[string][]domain.Message)
	}
	m.Published[roomURL] = append(m.Published[roomURL], msg)
	return nil
}
