package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// RoomURLLength is the length of the public room code, e.g. "696fcd".
const RoomURLLength = 6

// Chatroom is a room owned by exactly one user. Titles are unique per owner,
// room URLs are unique across the service.
type Chatroom struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	RoomURL   string    `json:"room_url"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TrimTitle strips surrounding whitespace, including the byte order mark
// U+FEFF that browsers treat as whitespace.
func TrimTitle(raw string) string {
	return strings.TrimFunc(raw, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\ufeff'
	})
}

// NormalizeTitle trims surrounding whitespace from a candidate title. Nothing
// else is normalized, so "General" and "general" are distinct titles.
func NormalizeTitle(raw string) (string, error) {
	title := TrimTitle(raw)
	if title == "" {
		return "", fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
	}
	return title, nil
}

// Availability is the outcome of a room-name check.
type Availability struct {
	Available bool   `json:"available"`
	Title     string `json:"title"`
}
