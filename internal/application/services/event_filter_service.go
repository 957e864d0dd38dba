package services

import (
	"context"
	"strings"

	"github.com/citypulse/eventdiscovery/internal/domain/entities"
	"github.com/citypulse/eventdiscovery/internal/domain/repositories"
)

// EventFilterService scans locally stored public events and yields ranking
// candidates. Text matching is deliberately broad (any query token, substring,
// OR semantics); relevance discrimination happens later in ranking.
type EventFilterService struct {
	events repositories.EventRepository
}

func NewEventFilterService(events repositories.EventRepository) *EventFilterService {
	return &EventFilterService{events: events}
}

// Filter returns public events matching the query text and structured
// filters, tagged as user-submitted candidates without a base relevance.
func (s *EventFilterService) Filter(ctx context.Context, text string, filters *entities.SearchFilters) ([]entities.CandidateEvent, error) {
	listFilter := repositories.EventListFilter{}
	if filters != nil {
		if filters.DateRange != nil {
			listFilter.StartAfter = &filters.DateRange.Start
			listFilter.StartBefore = &filters.DateRange.End
		}
		listFilter.Categories = filters.Categories
	}

	events, err := s.events.ListPublicEvents(ctx, listFilter)
	if err != nil {
		return nil, err
	}

	tokens := queryTokens(text)

	candidates := make([]entities.CandidateEvent, 0, len(events))
	for _, event := range events {
		if !matchesText(event, tokens) {
			continue
		}
		if !matchesFilters(event, filters) {
			continue
		}
		candidates = append(candidates, toCandidate(event))
	}

	return candidates, nil
}

func queryTokens(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// matchesText passes when ANY query token appears as a substring of the
// event's searchable text. An empty query imposes no text constraint.
func matchesText(event *entities.Event, tokens []string) bool {
	if len(tokens) == 0 {
		return true
	}

	haystack := strings.ToLower(event.Title + " " + event.Description + " " + event.Category)
	for _, token := range tokens {
		if strings.Contains(haystack, token) {
			return true
		}
	}
	return false
}

// matchesFilters applies the structured constraints as AND conditions
func matchesFilters(event *entities.Event, filters *entities.SearchFilters) bool {
	if filters == nil {
		return true
	}

	if filters.DateRange != nil {
		if event.StartDateTime.Before(filters.DateRange.Start) || event.StartDateTime.After(filters.DateRange.End) {
			return false
		}
	}

	if loc := filters.Location; loc != nil {
		if loc.City != "" && !strings.EqualFold(loc.City, event.Location.City) {
			return false
		}
		if loc.State != "" && !strings.EqualFold(loc.State, event.Location.State) {
			return false
		}
	}

	if len(filters.Categories) > 0 {
		found := false
		for _, c := range filters.Categories {
			if strings.EqualFold(c, event.Category) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if pr := filters.PriceRange; pr != nil {
		// free events compare as 0
		if event.Price < pr.Min || event.Price > pr.Max {
			return false
		}
	}

	return true
}

func toCandidate(event *entities.Event) entities.CandidateEvent {
	return entities.CandidateEvent{
		EventID:         event.ID,
		Title:           event.Title,
		Description:     event.Description,
		Category:        event.Category,
		StartDateTime:   event.StartDateTime,
		Location:        event.Location,
		Price:           event.Price,
		IsUserSubmitted: true,
	}
}
