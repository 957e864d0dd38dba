package services

import (
	"context"

	"github.com/citypulse/eventdiscovery/internal/domain/entities"
	"github.com/citypulse/eventdiscovery/internal/domain/providers"
	"github.com/citypulse/eventdiscovery/internal/domain/repositories"
	"github.com/citypulse/eventdiscovery/internal/infrastructure/observability"
)

// EventIndexingService pushes events' searchable text into the knowledge
// base so future retrievals can find them.
type EventIndexingService struct {
	events repositories.EventRepository
	kb     providers.KnowledgeBaseProvider
}

func NewEventIndexingService(events repositories.EventRepository, kb providers.KnowledgeBaseProvider) *EventIndexingService {
	return &EventIndexingService{events: events, kb: kb}
}

// IndexEvent loads the event and upserts its searchable projection. Fails
// with a not-found error when the event does not exist.
func (s *EventIndexingService) IndexEvent(ctx context.Context, eventID string) error {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	return s.kb.IndexEvent(ctx, toEventDocument(event))
}

// RemoveEvent deletes the event from the knowledge base index
func (s *EventIndexingService) RemoveEvent(ctx context.Context, eventID string) error {
	return s.kb.DeleteEvent(ctx, eventID)
}

// BackfillPublicEvents indexes every publicly visible event, returning the
// number indexed. Individual failures are logged and skipped so one bad
// document does not abort the run.
func (s *EventIndexingService) BackfillPublicEvents(ctx context.Context) (int, error) {
	events, err := s.events.ListPublicEvents(ctx, repositories.EventListFilter{})
	if err != nil {
		return 0, err
	}

	logger := observability.LoggerFromContext(ctx)
	indexed := 0
	for _, event := range events {
		if err := s.kb.IndexEvent(ctx, toEventDocument(event)); err != nil {
			logger.Warn().Err(err).Str("event_id", event.ID).Msg("failed to index event")
			continue
		}
		indexed++
	}
	return indexed, nil
}

func toEventDocument(event *entities.Event) *providers.EventDocument {
	return &providers.EventDocument{
		EventID:       event.ID,
		Title:         event.Title,
		Description:   event.Description,
		Category:      event.Category,
		StartDateTime: event.StartDateTime,
		Location:      event.Location,
		Price:         event.Price,
	}
}
