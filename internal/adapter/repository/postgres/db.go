package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/V4T54L/yapli/internal/domain"
)

//go:embed schema.sql
var schema string

const (
	uniqueViolation = "23505"

	constraintUserEmail  = "users_email_key"
	constraintRoomURL    = "chatrooms_room_url_key"
	constraintOwnerTitle = "chatrooms_user_id_title_key"

	defaultMaxOpenConns    = 20
	defaultConnMaxIdleTime = 5 * time.Minute
)

// Open creates the process-wide connection pool and verifies it is reachable.
// The caller owns the returned handle and closes it at shutdown.
func Open(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetConnMaxIdleTime(defaultConnMaxIdleTime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate applies the embedded schema. Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// uniqueConstraint returns the name of the violated unique constraint, if err is one.
func uniqueConstraint(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return pqErr.Constraint, true
	}
	return "", false
}

// mapNoRows turns sql.ErrNoRows into domain.ErrNotFound.
func mapNoRows(err error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
