package repositories

import (
	"context"
	"time"

	"github.com/citypulse/eventdiscovery/internal/domain/entities"
)

// EventListFilter narrows the public event scan before in-process
// filtering. All fields optional; zero values mean no constraint.
type EventListFilter struct {
	StartAfter  *time.Time
	StartBefore *time.Time
	Categories  []string
	Limit       int
}

// EventRepository defines the read-side event store the search core consumes
type EventRepository interface {
	// GetByID returns the event or a not-found AppError
	GetByID(ctx context.Context, id string) (*entities.Event, error)

	// ListPublicEvents returns publicly visible events matching the filter
	ListPublicEvents(ctx context.Context, filter EventListFilter) ([]*entities.Event, error)

	// GetEventsByIDs returns the subset of ids that exist, in no particular order
	GetEventsByIDs(ctx context.Context, ids []string) ([]*entities.Event, error)
}
