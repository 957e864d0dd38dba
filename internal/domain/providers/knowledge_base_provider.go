package providers

import (
	"context"
	"errors"
	"time"

	"github.com/citypulse/eventdiscovery/internal/domain/entities"
)

// ErrKnowledgeBaseUnavailable is wrapped by adapters when the provider is
// unreachable or its circuit breaker is open.
var ErrKnowledgeBaseUnavailable = errors.New("knowledge base unavailable")

// RetrievalResult is one knowledge-base hit with its opaque relevance score
type RetrievalResult struct {
	EventID       string
	Title         string
	Description   string
	Category      string
	StartDateTime time.Time
	EndDateTime   time.Time
	Location      entities.Location
	Price         float64
	Score         float64 // opaque relevance in [0,1]
	SourceURI     string
}

// RetrievalResponse is the retriever's answer to one query
type RetrievalResponse struct {
	Candidates []RetrievalResult
	Total      int
}

// EventDocument is the searchable projection pushed into the knowledge base
type EventDocument struct {
	EventID       string
	Title         string
	Description   string
	Category      string
	StartDateTime time.Time
	Location      entities.Location
	Price         float64
}

// KnowledgeBaseProvider is the external semantic retrieval collaborator.
// Retrieve and Generate are mandatory-source calls: their failure is fatal
// to the search invocation that issued them.
type KnowledgeBaseProvider interface {
	// Retrieve returns up to maxResults candidates ranked by the
	// provider's own relevance model
	Retrieve(ctx context.Context, query string, maxResults int) (*RetrievalResponse, error)

	// Generate produces a grounded conversational answer with citations.
	// sessionID threads multi-turn context; empty starts a fresh session.
	Generate(ctx context.Context, query, sessionID string) (*entities.ConversationalAnswer, error)

	// IndexEvent pushes an event's searchable text into the knowledge base
	IndexEvent(ctx context.Context, doc *EventDocument) error

	// DeleteEvent removes an event from the knowledge base
	DeleteEvent(ctx context.Context, eventID string) error
}
