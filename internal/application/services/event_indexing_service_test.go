package services_test

import (
	"context"
	"errors"
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

func TestIndexEvent_PushesSearchableProjection(t *testing.T) {
	start := time.Date(2026, 9, 12, 19, 0, 0, 0, time.UTC)
	event := &entities.Event{
		ID:            "e1",
		Title:         "Jazz in the Park",
		Description:   "Open-air jazz evening",
		Category:      "Music",
		StartDateTime: start,
		Location:      entities.Location{City: "Austin", State: "TX"},
		Price:         25,
	}

	events := new(MockEventRepository)
	events.On("GetByID", mock.Anything, "e1").Return(event, nil)

	kb := new(MockKnowledgeBaseProvider)
	kb.On("IndexEvent", mock.Anything, mock.MatchedBy(func(doc *providers.EventDocument) bool {
		return doc.EventID == "e1" && doc.Title == "Jazz in the Park" &&
			doc.Category == "Music" && doc.StartDateTime.Equal(start)
	})).Return(nil)

	svc := services.NewEventIndexingService(events, kb)

	require.NoError(t, svc.IndexEvent(context.Background(), "e1"))
	kb.AssertExpectations(t)
}

func TestIndexEvent_MissingEventFailsWithNotFound(t *testing.T) {
	events := new(MockEventRepository)
	events.On("GetByID", mock.Anything, "ghost").Return(nil, apperrors.NewNotFoundError("event not found"))

	svc := services.NewEventIndexingService(events, new(MockKnowledgeBaseProvider))

	err := svc.IndexEvent(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestRemoveEvent_DelegatesToProvider(t *testing.T) {
	kb := new(MockKnowledgeBaseProvider)
	kb.On("DeleteEvent", mock.Anything, "e1").Return(nil)

	svc := services.NewEventIndexingService(new(MockEventRepository), kb)

	require.NoError(t, svc.RemoveEvent(context.Background(), "e1"))
	kb.AssertExpectations(t)
}

func TestBackfillPublicEvents_SkipsFailures(t *testing.T) {
	events := new(MockEventRepository)
	events.On("ListPublicEvents", mock.Anything, mock.Anything).Return([]*entities.Event{
		{ID: "e1", Title: "A"},
		{ID: "e2", Title: "B"},
		{ID: "e3", Title: "C"},
	}, nil)

	kb := new(MockKnowledgeBaseProvider)
	kb.On("IndexEvent", mock.Anything, mock.MatchedBy(func(doc *providers.EventDocument) bool {
		return doc.EventID == "e2"
	})).Return(errors.New("document rejected"))
	kb.On("IndexEvent", mock.Anything, mock.Anything).Return(nil)

	svc := services.NewEventIndexingService(events, kb)

	indexed, err := svc.BackfillPublicEvents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, indexed)
}
