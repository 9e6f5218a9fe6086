package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is a chat line posted to a room under a free-text alias.
type Message struct {
	ID          uuid.UUID    `json:"id"`
	ChatroomID  uuid.UUID    `json:"chatroom_id"`
	Alias       string       `json:"alias"`
	Text        string       `json:"message"`
	CreatedAt   time.Time    `json:"created_at"`
	LinkPreview *LinkPreview `json:"link_preview,omitempty"`
}

// LinkPreview holds the metadata rendered under a message containing a link.
type LinkPreview struct {
	URL         string `json:"url" validate:"required,url,max=2048"`
	Title       string `json:"title,omitempty" validate:"max=300"`
	Description string `json:"description,omitempty" validate:"max=1000"`
	Image       string `json:"image,omitempty" validate:"omitempty,url,max=2048"`
	Domain      string `json:"domain,omitempty" validate:"max=255"`
	SiteName    string `json:"site_name,omitempty" validate:"max=255"`
}
