package database

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"

	"github.com/citypulse/eventdiscovery/internal/domain/entities"
	"github.com/citypulse/eventdiscovery/internal/domain/repositories"
	"github.com/citypulse/eventdiscovery/internal/infrastructure/clients/postgres"
	apperrors "github.com/citypulse/eventdiscovery/pkg/errors"
)

// UserAdapter implements the read-only UserRepository interface
type UserAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewUserAdapter creates a new user adapter
func NewUserAdapter(client *postgres.Client) repositories.UserRepository {
	return &UserAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByID retrieves a user with saved events and preferences
func (a *UserAdapter) GetByID(ctx context.Context, id string) (*entities.User, error) {
	query, args, err := a.db.Select(
		"id", "email", "display_name",
		"saved_events", "preferred_categories", "preferred_locations",
		"created_at", "updated_at",
	).From("users").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build user query", err)
	}

	user := &entities.User{}
	var savedEvents, preferredCategories pq.StringArray
	var preferredLocations []byte

	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&savedEvents,
		&preferredCategories,
		&preferredLocations,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("user not found: " + id)
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get user", err)
	}

	user.SavedEvents = savedEvents
	user.Preferences.Categories = preferredCategories
	if len(preferredLocations) > 0 {
		if err := json.Unmarshal(preferredLocations, &user.Preferences.PreferredLocations); err != nil {
			return nil, apperrors.NewInternalError("failed to decode preferred locations", err)
		}
	}

	return user, nil
}
