package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/citypulse/eventdiscovery/internal/application/services"
	"github.com/citypulse/eventdiscovery/internal/domain/entities"
	"github.com/citypulse/eventdiscovery/internal/domain/providers"
	apperrors "github.com/citypulse/eventdiscovery/pkg/errors"
)

type recommendFixture struct {
	users     *MockUserRepository
	kb        *MockKnowledgeBaseProvider
	events    *MockEventRepository
	analytics *MockSearchAnalyticsRepository
	svc       *services.RecommendationService
}

func newRecommendFixture() *recommendFixture {
	f := &recommendFixture{
		users:     new(MockUserRepository),
		kb:        new(MockKnowledgeBaseProvider),
		events:    new(MockEventRepository),
		analytics: new(MockSearchAnalyticsRepository),
	}

	analyticsSvc := services.NewSearchAnalyticsService(f.analytics, nil)
	searchSvc := services.NewSearchService(
		f.kb,
		services.NewEventFilterService(f.events),
		services.NewSearchRankingService(f.users),
		analyticsSvc,
		nil,
		50,
		time.Second,
	)
	f.svc = services.NewRecommendationService(f.users, searchSvc, analyticsSvc)
	return f
}

func TestRecommend_UnknownUserFailsWithNotFound(t *testing.T) {
	f := newRecommendFixture()
	f.users.On("GetByID", mock.Anything, "ghost").Return(nil, apperrors.NewNotFoundError("user not found"))

	_, err := f.svc.Recommend(context.Background(), "ghost", services.DefaultRecommendOptions())

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestRecommend_SyntheticQueryFromPreferencesAndHistory(t *testing.T) {
	f := newRecommendFixture()
	now := time.Now().UTC()

	user := &entities.User{
		ID:          "u1",
		Preferences: entities.UserPreferences{Categories: []string{"Technology", "Music"}},
	}
	f.users.On("GetByID", mock.Anything, "u1").Return(user, nil)
	f.analytics.On("GetRecentByUser", mock.Anything, "u1", 10).Return([]*entities.SearchEvent{
		{Query: "jazz concerts"},
	}, nil)
	f.analytics.On("LogEvent", mock.Anything, mock.Anything).Return(nil).Maybe()

	f.kb.On("Retrieve", mock.Anything, mock.MatchedBy(func(q string) bool {
		return strings.Contains(q, "Technology") && strings.Contains(q, "Music") && strings.Contains(q, "jazz concerts")
	}), mock.Anything).Return(&providers.RetrievalResponse{
		Candidates: []providers.RetrievalResult{
			{EventID: "e1", Title: "Jazz Night", Score: 0.9, StartDateTime: now},
		},
		Total: 1,
	}, nil)
	f.events.On("ListPublicEvents", mock.Anything, mock.Anything).Return([]*entities.Event{}, nil)

	result, err := f.svc.Recommend(context.Background(), "u1", services.DefaultRecommendOptions())

	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalResults)
	f.kb.AssertExpectations(t)
}

func TestRecommend_HistoryErrorIsTolerated(t *testing.T) {
	f := newRecommendFixture()
	now := time.Now().UTC()

	user := &entities.User{ID: "u1", Preferences: entities.UserPreferences{Categories: []string{"Art"}}}
	f.users.On("GetByID", mock.Anything, "u1").Return(user, nil)
	f.analytics.On("GetRecentByUser", mock.Anything, "u1", 10).Return(nil, errors.New("analytics down"))
	f.analytics.On("LogEvent", mock.Anything, mock.Anything).Return(nil).Maybe()

	f.kb.On("Retrieve", mock.Anything, "Art", mock.Anything).Return(&providers.RetrievalResponse{
		Candidates: []providers.RetrievalResult{
			{EventID: "e1", Title: "Gallery Opening", Score: 0.7, StartDateTime: now},
		},
		Total: 1,
	}, nil)
	f.events.On("ListPublicEvents", mock.Anything, mock.Anything).Return([]*entities.Event{}, nil)

	result, err := f.svc.Recommend(context.Background(), "u1", services.DefaultRecommendOptions())

	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalResults)
}

func TestRecommend_SavedEventsStayVisibleAndFlagged(t *testing.T) {
	f := newRecommendFixture()
	now := time.Now().UTC()

	user := &entities.User{
		ID:          "u1",
		SavedEvents: []string{"e1"},
		Preferences: entities.UserPreferences{Categories: []string{"Technology"}},
	}
	f.users.On("GetByID", mock.Anything, "u1").Return(user, nil)
	f.analytics.On("GetRecentByUser", mock.Anything, "u1", 10).Return([]*entities.SearchEvent{}, nil)
	f.analytics.On("LogEvent", mock.Anything, mock.Anything).Return(nil).Maybe()

	f.kb.On("Retrieve", mock.Anything, mock.Anything, mock.Anything).Return(&providers.RetrievalResponse{
		Candidates: []providers.RetrievalResult{
			{EventID: "e1", Title: "Tech Summit", Category: "Technology", Score: 0.9, StartDateTime: now},
			{EventID: "e2", Title: "Tech Fair", Category: "Technology", Score: 0.8, StartDateTime: now},
		},
		Total: 2,
	}, nil)
	f.events.On("ListPublicEvents", mock.Anything, mock.Anything).Return([]*entities.Event{}, nil)

	opts := services.DefaultRecommendOptions()
	opts.MaxResults = 5
	result, err := f.svc.Recommend(context.Background(), "u1", opts)

	require.NoError(t, err)
	assert.LessOrEqual(t, len(result.Results), 5)

	var saved *entities.RankedResult
	for i := range result.Results {
		if result.Results[i].EventID == "e1" {
			saved = &result.Results[i]
		}
	}
	require.NotNil(t, saved)
	assert.True(t, saved.IsSaved)
}

func TestRecommend_TruncatesAfterScoring(t *testing.T) {
	f := newRecommendFixture()
	now := time.Now().UTC()

	user := &entities.User{ID: "u1"}
	f.users.On("GetByID", mock.Anything, "u1").Return(user, nil)
	f.analytics.On("GetRecentByUser", mock.Anything, "u1", 10).Return([]*entities.SearchEvent{
		{Query: "best match"},
	}, nil)
	f.analytics.On("LogEvent", mock.Anything, mock.Anything).Return(nil).Maybe()

	// The local source holds the best-scoring candidate; truncating
	// before scoring would have cut it.
	f.kb.On("Retrieve", mock.Anything, mock.Anything, mock.Anything).Return(&providers.RetrievalResponse{
		Candidates: []providers.RetrievalResult{
			{EventID: "kb-1", Title: "A", Score: 0.1, StartDateTime: now},
			{EventID: "kb-2", Title: "B", Score: 0.2, StartDateTime: now},
		},
		Total: 2,
	}, nil)
	f.events.On("ListPublicEvents", mock.Anything, mock.Anything).Return([]*entities.Event{
		{ID: "local-1", Title: "Best Match", Description: "exactly what u1 wants", StartDateTime: now},
	}, nil)

	opts := services.DefaultRecommendOptions()
	opts.MaxResults = 1
	result, err := f.svc.Recommend(context.Background(), "u1", opts)

	require.NoError(t, err)
	require.Len(t, result.Results, 1)
	assert.Equal(t, 1, result.TotalResults)
	assert.Equal(t, "local-1", result.Results[0].EventID)
}

func TestRecommend_ExcludesUserSubmittedWhenAsked(t *testing.T) {
	f := newRecommendFixture()
	now := time.Now().UTC()

	user := &entities.User{ID: "u1", Preferences: entities.UserPreferences{Categories: []string{"Music"}}}
	f.users.On("GetByID", mock.Anything, "u1").Return(user, nil)
	f.analytics.On("GetRecentByUser", mock.Anything, "u1", 10).Return([]*entities.SearchEvent{}, nil)
	f.analytics.On("LogEvent", mock.Anything, mock.Anything).Return(nil).Maybe()

	f.kb.On("Retrieve", mock.Anything, mock.Anything, mock.Anything).Return(&providers.RetrievalResponse{
		Candidates: []providers.RetrievalResult{
			{EventID: "kb-1", Title: "Symphony", Category: "Music", Score: 0.9, StartDateTime: now},
		},
		Total: 1,
	}, nil)
	f.events.On("ListPublicEvents", mock.Anything, mock.Anything).Return([]*entities.Event{
		{ID: "local-1", Title: "Music Jam", Category: "Music", StartDateTime: now},
	}, nil)

	opts := services.DefaultRecommendOptions()
	opts.IncludeUserSubmitted = false
	result, err := f.svc.Recommend(context.Background(), "u1", opts)

	require.NoError(t, err)
	require.Len(t, result.Results, 1)
	assert.Equal(t, "kb-1", result.Results[0].EventID)
	assert.False(t, result.Results[0].IsUserSubmitted)
}
