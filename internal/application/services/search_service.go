package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/citypulse/eventdiscovery/internal/domain/entities"
	"github.com/citypulse/eventdiscovery/internal/domain/providers"
	"github.com/citypulse/eventdiscovery/internal/infrastructure/observability"
	apperrors "github.com/citypulse/eventdiscovery/pkg/errors"
)

// SearchService is the public entry point for semantic and conversational
// search. The knowledge base is the mandatory source; the local event
// filter and the query logger are best-effort and never fail a search.
type SearchService struct {
	kb        providers.KnowledgeBaseProvider
	filter    *EventFilterService
	ranking   *SearchRankingService
	analytics *SearchAnalyticsService
	metrics   *observability.Metrics

	maxResults   int
	localTimeout time.Duration
}

func NewSearchService(
	kb providers.KnowledgeBaseProvider,
	filter *EventFilterService,
	ranking *SearchRankingService,
	analytics *SearchAnalyticsService,
	metrics *observability.Metrics,
	maxResults int,
	localTimeout time.Duration,
) *SearchService {
	if maxResults <= 0 {
		maxResults = 50
	}
	if localTimeout <= 0 {
		localTimeout = 2 * time.Second
	}
	return &SearchService{
		kb:           kb,
		filter:       filter,
		ranking:      ranking,
		analytics:    analytics,
		metrics:      metrics,
		maxResults:   maxResults,
		localTimeout: localTimeout,
	}
}

// Search runs the two sources concurrently, ranks the merged candidates,
// and caps the result set. A knowledge-base failure aborts the search; a
// local filter failure degrades to an empty local contribution.
func (s *SearchService) Search(ctx context.Context, query *entities.SearchQuery) (*entities.SearchResultSet, error) {
	return s.search(ctx, query, entities.SearchTypeSemantic)
}

func (s *SearchService) search(ctx context.Context, query *entities.SearchQuery, searchType entities.SearchType) (*entities.SearchResultSet, error) {
	start := time.Now()
	logger := observability.LoggerFromContext(ctx)

	var kbCandidates []entities.CandidateEvent
	var localCandidates []entities.CandidateEvent

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		response, err := s.kb.Retrieve(gctx, query.Text, s.maxResults)
		if err != nil {
			return apperrors.NewRetrievalError("knowledge base retrieval failed", err)
		}
		kbCandidates = adaptRetrievalResults(response.Candidates)
		return nil
	})

	g.Go(func() error {
		filterCtx, cancel := context.WithTimeout(gctx, s.localTimeout)
		defer cancel()

		candidates, err := s.filter.Filter(filterCtx, query.Text, query.Filters)
		if err != nil {
			logger.Warn().Err(err).Str("query", query.Text).
				Msg("local event filter degraded to empty")
			observability.RecordDegradedSource(ctx, s.metrics, "local_filter")
			return nil
		}
		localCandidates = candidates
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	resultSet := s.ranking.Rank(ctx, kbCandidates, localCandidates, query)
	if len(resultSet.Results) > s.maxResults {
		resultSet.Results = resultSet.Results[:s.maxResults]
		resultSet.TotalResults = len(resultSet.Results)
	}

	elapsed := time.Since(start)
	if query.UserID != "" {
		s.analytics.TrackSearch(NewSearchEvent(query, searchType, resultSet.TotalResults, elapsed))
	}
	observability.RecordSearchMetric(ctx, s.metrics, string(searchType), resultSet.TotalResults, elapsed)

	return resultSet, nil
}

// ConversationalSearch delegates to the knowledge base's generative
// variant. Results are not ranked locally; the call shares the query
// logging and error shaping of semantic search.
func (s *SearchService) ConversationalSearch(ctx context.Context, text, userID, sessionID string) (*entities.ConversationalAnswer, error) {
	start := time.Now()

	answer, err := s.kb.Generate(ctx, text, sessionID)
	if err != nil {
		return nil, apperrors.NewRetrievalError("conversational answer generation failed", err)
	}

	elapsed := time.Since(start)
	if userID != "" {
		query := &entities.SearchQuery{Text: text, UserID: userID}
		s.analytics.TrackSearch(NewSearchEvent(query, entities.SearchTypeConversational, len(answer.Sources), elapsed))
	}
	observability.RecordSearchMetric(ctx, s.metrics, string(entities.SearchTypeConversational), len(answer.Sources), elapsed)

	return answer, nil
}

func adaptRetrievalResults(results []providers.RetrievalResult) []entities.CandidateEvent {
	candidates := make([]entities.CandidateEvent, len(results))
	for i, r := range results {
		candidates[i] = entities.CandidateEvent{
			EventID:          r.EventID,
			Title:            r.Title,
			Description:      r.Description,
			Category:         r.Category,
			StartDateTime:    r.StartDateTime,
			Location:         r.Location,
			Price:            r.Price,
			BaseRelevance:    r.Score,
			HasBaseRelevance: true,
			SourceURI:        r.SourceURI,
		}
	}
	return candidates
}
