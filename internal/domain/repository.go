package domain

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	// FindByEmail returns ErrNotFound when no user has the email.
	FindByEmail(ctx context.Context, email string) (*User, error)
	// Store returns ErrAlreadyExists when the email is taken.
	Store(ctx context.Context, u *User) error
}

// ChatroomRepository defines the interface for chatroom persistence.
type ChatroomRepository interface {
	// ExistsByOwnerAndTitle reports whether the owner already has a room with
	// exactly this title. It is a plain read; nothing is reserved.
	ExistsByOwnerAndTitle(ctx context.Context, ownerID uuid.UUID, title string) (bool, error)

	// Create inserts the room. The store enforces (owner, title) and room URL
	// uniqueness atomically; violations are returned as ErrAlreadyExists
	// wrapped with the offending constraint (see ErrRoomURLTaken).
	Create(ctx context.Context, room *Chatroom) error

	FindByRoomURL(ctx context.Context, roomURL string) (*Chatroom, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Chatroom, error)
	Delete(ctx context.Context, ownerID uuid.UUID, roomURL string) error
}

// MessageRepository defines the interface for message persistence.
type MessageRepository interface {
	// Create stores the message and its link preview, if any, in one transaction.
	Create(ctx context.Context, msg *Message) error
	// ListByChatroom returns up to limit of the most recent messages, oldest first.
	ListByChatroom(ctx context.Context, chatroomID uuid.UUID, limit int) ([]Message, error)
}

// MessagePublisher broadcasts a freshly stored message to live readers of a room.
type MessagePublisher interface {
	Publish(ctx context.Context, roomURL string, msg Message) error
}

// MessageSubscriber streams the messages published to a room until the
// returned cancel function is called or ctx ends.
type MessageSubscriber interface {
	Subscribe(ctx context.Context, roomURL string) (<-chan Message, func(), error)
}
