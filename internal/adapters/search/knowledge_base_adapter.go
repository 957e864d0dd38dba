package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/citypulse/eventdiscovery/internal/domain/entities"
	"github.com/citypulse/eventdiscovery/internal/domain/providers"
	"github.com/citypulse/eventdiscovery/internal/infrastructure/clients/openai"
	tsclient "github.com/citypulse/eventdiscovery/internal/infrastructure/clients/typesense"
	"github.com/citypulse/eventdiscovery/internal/infrastructure/observability"
)

const (
	eventsCollection = "events"

	// generation grounds the answer in this many top hits
	generateContextSize = 5

	sessionKeyPrefix     = "chat:session:"
	sessionHistoryMax    = 20
	sessionTTLSeconds    = 1800
	breakerOpenThreshold = 5
)

// KnowledgeBaseAdapter implements the KnowledgeBaseProvider using a
// Typesense collection for retrieval/indexing and OpenAI for grounded
// answer generation. Both outbound paths share one circuit breaker: when
// it opens, calls fail fast with ErrKnowledgeBaseUnavailable.
type KnowledgeBaseAdapter struct {
	ts       *tsclient.Client
	ai       *openai.Client
	sessions providers.CacheProvider
	breaker  *gobreaker.CircuitBreaker
}

var _ providers.KnowledgeBaseProvider = (*KnowledgeBaseAdapter)(nil)

// NewKnowledgeBaseAdapter creates a new knowledge base adapter. The ai
// client and session cache may be nil; Generate then fails cleanly while
// Retrieve and indexing keep working.
func NewKnowledgeBaseAdapter(ts *tsclient.Client, ai *openai.Client, sessions providers.CacheProvider) *KnowledgeBaseAdapter {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "knowledge-base",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerOpenThreshold
		},
	})

	return &KnowledgeBaseAdapter{
		ts:       ts,
		ai:       ai,
		sessions: sessions,
		breaker:  breaker,
	}
}

// InitSchema ensures the events collection exists
func (a *KnowledgeBaseAdapter) InitSchema(ctx context.Context) error {
	_, err := a.ts.Client().Collection(eventsCollection).Retrieve(ctx)
	if err == nil {
		return nil
	}

	schema := &api.CollectionSchema{
		Name: eventsCollection,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "title", Type: "string"},
			{Name: "description", Type: "string"},
			{Name: "category", Type: "string", Facet: pointer.True()},
			{Name: "city", Type: "string", Facet: pointer.True()},
			{Name: "state", Type: "string", Facet: pointer.True()},
			{Name: "start_date_time", Type: "int64"},
			{Name: "price", Type: "float"},
		},
		DefaultSortingField: pointer.String("start_date_time"),
	}

	if _, err := a.ts.Client().Collections().Create(ctx, schema); err != nil {
		return fmt.Errorf("failed to create events collection: %w", err)
	}
	return nil
}

// Retrieve searches the events collection and normalizes hit scores to [0,1]
func (a *KnowledgeBaseAdapter) Retrieve(ctx context.Context, query string, maxResults int) (*providers.RetrievalResponse, error) {
	if maxResults <= 0 {
		maxResults = 50
	}

	result, err := a.breaker.Execute(func() (interface{}, error) {
		return a.ts.Client().Collection(eventsCollection).Documents().Search(ctx, &api.SearchCollectionParams{
			Q:       pointer.String(query),
			QueryBy: pointer.String("title,description,category"),
			PerPage: pointer.Int(maxResults),
		})
	})
	if err != nil {
		return nil, wrapBreakerErr("retrieve", err)
	}

	searchResult := result.(*api.SearchResult)

	response := &providers.RetrievalResponse{}
	if searchResult.Found != nil {
		response.Total = *searchResult.Found
	}
	if searchResult.Hits == nil {
		return response, nil
	}

	maxTextMatch := int64(0)
	for _, hit := range *searchResult.Hits {
		if hit.TextMatch != nil && *hit.TextMatch > maxTextMatch {
			maxTextMatch = *hit.TextMatch
		}
	}

	for rank, hit := range *searchResult.Hits {
		if hit.Document == nil {
			continue
		}
		candidate := documentToResult(*hit.Document)

		// Normalize against the best hit so the top result scores 1.0;
		// fall back to rank decay when the engine gives no text match.
		switch {
		case hit.TextMatch != nil && maxTextMatch > 0:
			candidate.Score = float64(*hit.TextMatch) / float64(maxTextMatch)
		default:
			candidate.Score = 1.0 / float64(rank+1)
		}

		response.Candidates = append(response.Candidates, candidate)
	}

	return response, nil
}

// Generate answers conversationally, grounded in the top retrieved events
func (a *KnowledgeBaseAdapter) Generate(ctx context.Context, query, sessionID string) (*entities.ConversationalAnswer, error) {
	if a.ai == nil {
		return nil, fmt.Errorf("%w: answer generation is not configured", providers.ErrKnowledgeBaseUnavailable)
	}

	retrieved, err := a.Retrieve(ctx, query, generateContextSize)
	if err != nil {
		return nil, err
	}

	docs := make([]openai.ContextDocument, 0, len(retrieved.Candidates))
	sources := make([]entities.Source, 0, len(retrieved.Candidates))
	for _, c := range retrieved.Candidates {
		excerpt := c.Description
		if len(excerpt) > 200 {
			excerpt = excerpt[:200]
		}
		docs = append(docs, openai.ContextDocument{
			Title:   c.Title,
			Excerpt: excerpt,
			URI:     c.SourceURI,
		})
		sources = append(sources, entities.Source{
			Title:   c.Title,
			URI:     c.SourceURI,
			Excerpt: excerpt,
			Score:   c.Score,
		})
	}

	history := a.loadSession(ctx, sessionID)

	result, err := a.breaker.Execute(func() (interface{}, error) {
		return a.ai.GenerateAnswer(ctx, query, docs, history)
	})
	if err != nil {
		return nil, wrapBreakerErr("generate", err)
	}
	answer := result.(string)

	a.storeSessionTurns(ctx, sessionID, query, answer)

	return &entities.ConversationalAnswer{
		Answer:  answer,
		Sources: sources,
	}, nil
}

// IndexEvent upserts an event's searchable projection
func (a *KnowledgeBaseAdapter) IndexEvent(ctx context.Context, doc *providers.EventDocument) error {
	document := map[string]interface{}{
		"id":              doc.EventID,
		"title":           doc.Title,
		"description":     doc.Description,
		"category":        doc.Category,
		"city":            doc.Location.City,
		"state":           doc.Location.State,
		"start_date_time": doc.StartDateTime.Unix(),
		"price":           doc.Price,
	}

	if _, err := a.ts.Client().Collection(eventsCollection).Documents().Upsert(ctx, document); err != nil {
		return fmt.Errorf("failed to index event %s: %w", doc.EventID, err)
	}
	return nil
}

// DeleteEvent removes an event from the index
func (a *KnowledgeBaseAdapter) DeleteEvent(ctx context.Context, eventID string) error {
	if _, err := a.ts.Client().Collection(eventsCollection).Document(eventID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete event %s from index: %w", eventID, err)
	}
	return nil
}

type sessionTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (a *KnowledgeBaseAdapter) loadSession(ctx context.Context, sessionID string) []openai.Turn {
	if a.sessions == nil || sessionID == "" {
		return nil
	}

	raw, err := a.sessions.List(ctx, sessionKeyPrefix+sessionID)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("session_id", sessionID).
			Msg("failed to load conversation history")
		return nil
	}

	turns := make([]openai.Turn, 0, len(raw))
	for _, b := range raw {
		var t sessionTurn
		if json.Unmarshal(b, &t) == nil {
			turns = append(turns, openai.Turn{Role: t.Role, Content: t.Content})
		}
	}
	return turns
}

func (a *KnowledgeBaseAdapter) storeSessionTurns(ctx context.Context, sessionID, query, answer string) {
	if a.sessions == nil || sessionID == "" {
		return
	}

	key := sessionKeyPrefix + sessionID
	for _, t := range []sessionTurn{
		{Role: "user", Content: query},
		{Role: "assistant", Content: answer},
	} {
		b, err := json.Marshal(t)
		if err != nil {
			continue
		}
		if err := a.sessions.Append(ctx, key, b, sessionHistoryMax, sessionTTLSeconds); err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).Str("session_id", sessionID).
				Msg("failed to store conversation turn")
			return
		}
	}
}

func documentToResult(doc map[string]interface{}) providers.RetrievalResult {
	result := providers.RetrievalResult{}

	if v, ok := doc["id"].(string); ok {
		result.EventID = v
		result.SourceURI = "typesense://" + eventsCollection + "/" + v
	}
	if v, ok := doc["title"].(string); ok {
		result.Title = v
	}
	if v, ok := doc["description"].(string); ok {
		result.Description = v
	}
	if v, ok := doc["category"].(string); ok {
		result.Category = v
	}
	if v, ok := doc["city"].(string); ok {
		result.Location.City = v
	}
	if v, ok := doc["state"].(string); ok {
		result.Location.State = v
	}
	if v, ok := doc["start_date_time"].(float64); ok {
		result.StartDateTime = time.Unix(int64(v), 0).UTC()
	}
	if v, ok := doc["price"].(float64); ok {
		result.Price = v
	}

	return result
}

func wrapBreakerErr(op string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s circuit open", providers.ErrKnowledgeBaseUnavailable, op)
	}
	return fmt.Errorf("knowledge base %s failed: %w", op, err)
}
