package services

import (
	"context"
	"strings"

	"github.com/citypulse/eventdiscovery/internal/domain/entities"
	"github.com/citypulse/eventdiscovery/internal/domain/repositories"
	"github.com/citypulse/eventdiscovery/internal/infrastructure/observability"
)

const recentQueryWindow = 10

// RecommendOptions tunes a single recommendation call
type RecommendOptions struct {
	MaxResults           int
	IncludeUserSubmitted bool
	BoostSavedEvents     bool
}

func DefaultRecommendOptions() RecommendOptions {
	return RecommendOptions{
		MaxResults:           20,
		IncludeUserSubmitted: true,
		BoostSavedEvents:     true,
	}
}

// RecommendationService builds a synthetic query from a user's stored
// preferences and recent search history, then runs it through the
// ordinary search pipeline so preference matching applies.
type RecommendationService struct {
	users     repositories.UserRepository
	search    *SearchService
	analytics *SearchAnalyticsService
}

func NewRecommendationService(users repositories.UserRepository, search *SearchService, analytics *SearchAnalyticsService) *RecommendationService {
	return &RecommendationService{users: users, search: search, analytics: analytics}
}

// Recommend returns personalized results for the user, truncated to
// opts.MaxResults after scoring. Fails with a not-found error when the
// user does not exist; missing search history is tolerated.
func (s *RecommendationService) Recommend(ctx context.Context, userID string, opts RecommendOptions) (*entities.SearchResultSet, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultRecommendOptions().MaxResults
	}

	query := &entities.SearchQuery{
		Text:   s.buildQueryText(ctx, user),
		UserID: userID,
	}

	resultSet, err := s.search.search(ctx, query, entities.SearchTypeRecommendation)
	if err != nil {
		return nil, err
	}

	results := resultSet.Results
	if !opts.IncludeUserSubmitted {
		results = excludeResults(results, func(r entities.RankedResult) bool { return r.IsUserSubmitted })
	}
	if !opts.BoostSavedEvents {
		results = excludeResults(results, func(r entities.RankedResult) bool { return r.IsSaved })
	}

	// Truncation happens after scoring so the cut is by combined score,
	// not by source ordering.
	if len(results) > opts.MaxResults {
		results = results[:opts.MaxResults]
	}

	resultSet.Results = results
	resultSet.TotalResults = len(results)
	return resultSet, nil
}

func (s *RecommendationService) buildQueryText(ctx context.Context, user *entities.User) string {
	parts := append([]string{}, user.Preferences.Categories...)

	history, err := s.analytics.RecentQueries(ctx, user.ID, recentQueryWindow)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("user_id", user.ID).
			Msg("recommending without search history")
	}
	for _, h := range history {
		if h.Query != "" {
			parts = append(parts, h.Query)
		}
	}

	return strings.Join(parts, " ")
}

func excludeResults(results []entities.RankedResult, drop func(entities.RankedResult) bool) []entities.RankedResult {
	kept := results[:0]
	for _, r := range results {
		if !drop(r) {
			kept = append(kept, r)
		}
	}
	return kept
}
