package repositories

import (
	"context"

	"github.com/citypulse/eventdiscovery/internal/domain/entities"
)

// SearchAnalyticsRepository persists the append-only query log
type SearchAnalyticsRepository interface {
	LogEvent(ctx context.Context, event *entities.SearchEvent) error

	// GetRecentByUser returns the user's most recent queries, newest first
	GetRecentByUser(ctx context.Context, userID string, limit int) ([]*entities.SearchEvent, error)

	// GetZeroResultQueries returns recent queries that produced no results
	GetZeroResultQueries(ctx context.Context, limit int) ([]*entities.SearchEvent, error)
}
