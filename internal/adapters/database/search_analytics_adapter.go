package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/citypulse/eventdiscovery/internal/domain/entities"
	"github.com/citypulse/eventdiscovery/internal/domain/repositories"
	"github.com/citypulse/eventdiscovery/internal/infrastructure/clients/postgres"
	apperrors "github.com/citypulse/eventdiscovery/pkg/errors"
)

type SearchAnalyticsAdapter struct {
	client *postgres.Client
}

func NewSearchAnalyticsAdapter(client *postgres.Client) repositories.SearchAnalyticsRepository {
	return &SearchAnalyticsAdapter{client: client}
}

func (a *SearchAnalyticsAdapter) LogEvent(ctx context.Context, event *entities.SearchEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO search_analytics
		(id, user_id, query, search_type, filters_json, result_count, latency_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := a.client.DB().ExecContext(ctx, query,
		event.ID,
		nullIfEmpty(event.UserID),
		event.Query,
		string(event.SearchType),
		nullIfEmpty(event.FiltersJSON),
		event.ResultCount,
		event.LatencyMs,
		event.CreatedAt,
	)
	if err != nil {
		return apperrors.NewInternalError("failed to log search event", err)
	}

	return nil
}

func (a *SearchAnalyticsAdapter) GetRecentByUser(ctx context.Context, userID string, limit int) ([]*entities.SearchEvent, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, user_id, query, search_type, filters_json, result_count, latency_ms, created_at
		FROM search_analytics
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := a.client.DB().QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get recent queries", err)
	}
	defer rows.Close()

	return collectSearchEvents(rows)
}

func (a *SearchAnalyticsAdapter) GetZeroResultQueries(ctx context.Context, limit int) ([]*entities.SearchEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, user_id, query, search_type, filters_json, result_count, latency_ms, created_at
		FROM search_analytics
		WHERE result_count = 0
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := a.client.DB().QueryContext(ctx, query, limit)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get zero result queries", err)
	}
	defer rows.Close()

	return collectSearchEvents(rows)
}

func collectSearchEvents(rows *sql.Rows) ([]*entities.SearchEvent, error) {
	var events []*entities.SearchEvent
	for rows.Next() {
		e := &entities.SearchEvent{}
		var userID, filtersJSON sql.NullString
		var searchType string
		err := rows.Scan(
			&e.ID,
			&userID,
			&e.Query,
			&searchType,
			&filtersJSON,
			&e.ResultCount,
			&e.LatencyMs,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan search event", err)
		}
		e.UserID = userID.String
		e.FiltersJSON = filtersJSON.String
		e.SearchType = entities.SearchType(searchType)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate search events", err)
	}
	return events, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
