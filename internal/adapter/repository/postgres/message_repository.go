package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/V4T54L/yapli/internal/domain"
)

// MessageRepository implements domain.MessageRepository using PostgreSQL.
type MessageRepository struct {
	db *sql.DB
}

// NewMessageRepository creates a new PostgreSQL message repository.
func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create writes the message and its optional link preview in one transaction.
func (r *MessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer txn.Rollback() // Rollback is a no-op if Commit() is called

	_, err = txn.ExecContext(ctx,
		`INSERT INTO messages (id, chatroom_id, alias, message, created_at) VALUES ($1, $2, $3, $4, $5)`,
		msg.ID, msg.ChatroomID, msg.Alias, msg.Text, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	if lp := msg.LinkPreview; lp != nil {
		_, err = txn.ExecContext(ctx, `
			INSERT INTO link_previews (message_id, url, title, description, image, domain, site_name)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			msg.ID, lp.URL, lp.Title, lp.Description, lp.Image, lp.Domain, lp.SiteName,
		)
		if err != nil {
			return fmt.Errorf("insert link preview: %w", err)
		}
	}

	return txn.Commit()
}

// ListByChatroom returns the newest limit messages, oldest first, with their previews.
func (r *MessageRepository) ListByChatroom(ctx context.Context, chatroomID uuid.UUID, limit int) ([]domain.Message, error) {
	query := `
		SELECT m.id, m.chatroom_id, m.alias, m.message, m.created_at,
		       lp.url, lp.title, lp.description, lp.image, lp.domain, lp.site_name
		FROM (
			SELECT id, chatroom_id, alias, message, created_at
			FROM messages
			WHERE chatroom_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		) m
		LEFT JOIN link_previews lp ON lp.message_id = m.id
		ORDER BY m.created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, chatroomID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	msgs := make([]domain.Message, 0, limit)
	for rows.Next() {
		var m domain.Message
		var url, title, description, image, dom, siteName sql.NullString
		if err := rows.Scan(&m.ID, &m.ChatroomID, &m.Alias, &m.Text, &m.CreatedAt,
			&url, &title, &description, &image, &dom, &siteName); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if url.Valid {
			m.LinkPreview = &domain.LinkPreview{
				URL:         url.String,
				Title:       title.String,
				Description: description.String,
				Image:       image.String,
				Domain:      dom.String,
				SiteName:    siteName.String,
			}
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
