package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/V4T54L/yapli/internal/domain"
)

// resolveOwner maps a session identity (email) to its user record. An empty
// identity fails before the store is touched.
func resolveOwner(ctx context.Context, users domain.UserRepository, identity string) (*domain.User, error) {
	if identity == "" {
		return nil, domain.ErrUnauthenticated
	}

	owner, err := users.FindByEmail(ctx, identity)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrOwnerNotFound
		}
		return nil, fmt.Errorf("resolve owner: %w", err)
	}
	return owner, nil
}
