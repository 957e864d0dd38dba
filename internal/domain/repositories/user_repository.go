package repositories

import (
	"context"

	"github.com/citypulse/eventdiscovery/internal/domain/entities"
)

// UserRepository defines read-only user access for personalization.
// Account lifecycle is owned elsewhere.
type UserRepository interface {
	// GetByID returns the user with saved events and preferences loaded,
	// or a not-found AppError
	GetByID(ctx context.Context, id string) (*entities.User, error)
}
