package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/V4T54L/yapli/internal/domain"
)

// ChatroomRepository implements domain.ChatroomRepository using PostgreSQL.
type ChatroomRepository struct {
	db *sql.DB
}

// NewChatroomRepository creates a new PostgreSQL chatroom repository.
func NewChatroomRepository(db *sql.DB) *ChatroomRepository {
	return &ChatroomRepository{db: db}
}

// ExistsByOwnerAndTitle checks for an exact title match among the owner's rooms.
func (r *ChatroomRepository) ExistsByOwnerAndTitle(ctx context.Context, ownerID uuid.UUID, title string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM chatrooms WHERE user_id = $1 AND title = $2)`
	if err := r.db.QueryRowContext(ctx, query, ownerID, title).Scan(&exists); err != nil {
		return false, fmt.Errorf("check chatroom title: %w", err)
	}
	return exists, nil
}

// Create inserts a room. The unique constraints on (user_id, title) and
// room_url are the authoritative uniqueness checks.
func (r *ChatroomRepository) Create(ctx context.Context, room *domain.Chatroom) error {
	query := `
		INSERT INTO chatrooms (id, title, room_url, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query, room.ID, room.Title, room.RoomURL, room.UserID, room.CreatedAt)
	if err != nil {
		if constraint, ok := uniqueConstraint(err); ok {
			switch constraint {
			case constraintRoomURL:
				return domain.ErrRoomURLTaken
			case constraintOwnerTitle:
				return fmt.Errorf("chatroom title: %w", domain.ErrAlreadyExists)
			}
		}
		return fmt.Errorf("create chatroom: %w", err)
	}
	return nil
}

func (r *ChatroomRepository) FindByRoomURL(ctx context.Context, roomURL string) (*domain.Chatroom, error) {
	query := `SELECT id, title, room_url, user_id, created_at FROM chatrooms WHERE room_url = $1`

	var c domain.Chatroom
	err := r.db.QueryRowContext(ctx, query, roomURL).Scan(&c.ID, &c.Title, &c.RoomURL, &c.UserID, &c.CreatedAt)
	if err != nil {
		return nil, mapNoRows(err, "find chatroom")
	}
	return &c, nil
}

// ListByOwner returns the owner's rooms, newest first.
func (r *ChatroomRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Chatroom, error) {
	query := `
		SELECT id, title, room_url, user_id, created_at
		FROM chatrooms
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list chatrooms: %w", err)
	}
	defer rows.Close()

	rooms := make([]domain.Chatroom, 0)
	for rows.Next() {
		var c domain.Chatroom
		if err := rows.Scan(&c.ID, &c.Title, &c.RoomURL, &c.UserID, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chatroom: %w", err)
		}
		rooms = append(rooms, c)
	}
	return rooms, rows.Err()
}

// Delete removes the room only if ownerID owns it.
func (r *ChatroomRepository) Delete(ctx context.Context, ownerID uuid.UUID, roomURL string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM chatrooms WHERE user_id = $1 AND room_url = $2`, ownerID, roomURL)
	if err != nil {
		return fmt.Errorf("delete chatroom: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete chatroom: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
