package database

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/citypulse/eventdiscovery/internal/domain/entities"
	"github.com/citypulse/eventdiscovery/internal/domain/repositories"
	"github.com/citypulse/eventdiscovery/internal/infrastructure/clients/postgres"
	apperrors "github.com/citypulse/eventdiscovery/pkg/errors"
)

const defaultListLimit = 500

var eventColumns = []interface{}{
	"id", "title", "description", "category",
	"start_date_time", "end_date_time",
	"city", "state", "latitude", "longitude",
	"price", "visibility", "is_user_submitted", "created_by",
	"created_at", "updated_at",
}

// EventAdapter implements the EventRepository interface
type EventAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewEventAdapter creates a new event adapter
func NewEventAdapter(client *postgres.Client) repositories.EventRepository {
	return &EventAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByID retrieves an event by ID
func (a *EventAdapter) GetByID(ctx context.Context, id string) (*entities.Event, error) {
	query, args, err := a.db.Select(eventColumns...).
		From("events").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build event query", err)
	}

	event, err := scanEvent(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("event not found: " + id)
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get event", err)
	}
	return event, nil
}

// ListPublicEvents returns publicly visible events matching the filter
func (a *EventAdapter) ListPublicEvents(ctx context.Context, filter repositories.EventListFilter) ([]*entities.Event, error) {
	ds := a.db.Select(eventColumns...).
		From("events").
		Where(goqu.Ex{"visibility": string(entities.VisibilityPublic)})

	if filter.StartAfter != nil {
		ds = ds.Where(goqu.C("start_date_time").Gte(*filter.StartAfter))
	}
	if filter.StartBefore != nil {
		ds = ds.Where(goqu.C("start_date_time").Lte(*filter.StartBefore))
	}
	if len(filter.Categories) > 0 {
		ds = ds.Where(goqu.C("category").In(filter.Categories))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	ds = ds.Order(goqu.C("start_date_time").Asc()).Limit(uint(limit))

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build event list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list public events", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// GetEventsByIDs returns the events whose ids exist
func (a *EventAdapter) GetEventsByIDs(ctx context.Context, ids []string) ([]*entities.Event, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := a.db.Select(eventColumns...).
		From("events").
		Where(goqu.C("id").In(ids)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build events-by-ids query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get events by ids", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*entities.Event, error) {
	event := &entities.Event{}
	var lat, lng sql.NullFloat64
	var createdBy sql.NullString

	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Category,
		&event.StartDateTime,
		&event.EndDateTime,
		&event.Location.City,
		&event.Location.State,
		&lat,
		&lng,
		&event.Price,
		&event.Visibility,
		&event.IsUserSubmitted,
		&createdBy,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lat.Valid && lng.Valid {
		event.Location.Coordinates = &entities.Coordinates{
			Latitude:  lat.Float64,
			Longitude: lng.Float64,
		}
	}
	if createdBy.Valid {
		event.CreatedBy = createdBy.String
	}
	return event, nil
}

func collectEvents(rows *sql.Rows) ([]*entities.Event, error) {
	var events []*entities.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan event", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate events", err)
	}
	return events, nil
}
