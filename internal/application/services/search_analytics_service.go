package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/citypulse/eventdiscovery/internal/domain/entities"
	"github.com/citypulse/eventdiscovery/internal/domain/repositories"
	"github.com/citypulse/eventdiscovery/internal/infrastructure/observability"
)

const trackTimeout = 5 * time.Second

// SearchAnalyticsService owns the append-only query log. Tracking is
// fire-and-forget: it never blocks or fails the search path.
type SearchAnalyticsService struct {
	repo    repositories.SearchAnalyticsRepository
	metrics *observability.Metrics
}

func NewSearchAnalyticsService(repo repositories.SearchAnalyticsRepository, metrics *observability.Metrics) *SearchAnalyticsService {
	return &SearchAnalyticsService{repo: repo, metrics: metrics}
}

// TrackSearch records a search interaction in the background. The caller's
// context is deliberately not used: the request may complete and cancel
// before the insert lands.
func (s *SearchAnalyticsService) TrackSearch(event *entities.SearchEvent) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Warn().Interface("panic", r).Msg("search event logging panicked")
			}
		}()

		bgCtx, cancel := context.WithTimeout(context.Background(), trackTimeout)
		defer cancel()

		if err := s.repo.LogEvent(bgCtx, event); err != nil {
			log.Warn().Err(err).Str("query", event.Query).Msg("failed to log search event")
			observability.RecordQueryLogFailure(bgCtx, s.metrics)
		}
	}()
}

// RecentQueries returns the user's most recent logged queries, newest first
func (s *SearchAnalyticsService) RecentQueries(ctx context.Context, userID string, limit int) ([]*entities.SearchEvent, error) {
	return s.repo.GetRecentByUser(ctx, userID, limit)
}

// ZeroResultQueries surfaces recent queries that found nothing, for
// content-gap analysis
func (s *SearchAnalyticsService) ZeroResultQueries(ctx context.Context, limit int) ([]*entities.SearchEvent, error) {
	return s.repo.GetZeroResultQueries(ctx, limit)
}

// NewSearchEvent builds a log entry from a query. Filters that fail to
// marshal are dropped rather than blocking the record.
func NewSearchEvent(query *entities.SearchQuery, searchType entities.SearchType, resultCount int, latency time.Duration) *entities.SearchEvent {
	event := &entities.SearchEvent{
		UserID:      query.UserID,
		Query:       query.Text,
		SearchType:  searchType,
		ResultCount: resultCount,
		LatencyMs:   int(latency.Milliseconds()),
		CreatedAt:   time.Now().UTC(),
	}

	if query.Filters != nil {
		if b, err := json.Marshal(query.Filters); err == nil {
			event.FiltersJSON = string(b)
		}
	}

	return event
}
