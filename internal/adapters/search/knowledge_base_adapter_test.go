package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citypulse/eventdiscovery/internal/domain/providers"
	"github.com/citypulse/eventdiscovery/internal/infrastructure/clients/openai"
)

type fakeCache struct {
	lists map[string][][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{lists: make(map[string][][]byte)}
}

func (f *fakeCache) Get(ctx context.Context, key string) ([]byte, error)  { return nil, nil }
func (f *fakeCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	return nil
}
func (f *fakeCache) Delete(ctx context.Context, key string) error         { return nil }
func (f *fakeCache) Exists(ctx context.Context, key string) (bool, error) { return false, nil }

func (f *fakeCache) Append(ctx context.Context, key string, value []byte, maxLen int, expirationSeconds int) error {
	f.lists[key] = append(f.lists[key], value)
	if len(f.lists[key]) > maxLen {
		f.lists[key] = f.lists[key][len(f.lists[key])-maxLen:]
	}
	return nil
}

func (f *fakeCache) List(ctx context.Context, key string) ([][]byte, error) {
	return f.lists[key], nil
}

func TestDocumentToResult(t *testing.T) {
	start := time.Date(2026, 9, 12, 19, 0, 0, 0, time.UTC)

	result := documentToResult(map[string]interface{}{
		"id":              "evt-42",
		"title":           "Jazz in the Park",
		"description":     "An open-air jazz evening",
		"category":        "music",
		"city":            "Austin",
		"state":           "TX",
		"start_date_time": float64(start.Unix()),
		"price":           25.0,
	})

	assert.Equal(t, "evt-42", result.EventID)
	assert.Equal(t, "typesense://events/evt-42", result.SourceURI)
	assert.Equal(t, "Jazz in the Park", result.Title)
	assert.Equal(t, "music", result.Category)
	assert.Equal(t, "Austin", result.Location.City)
	assert.Equal(t, "TX", result.Location.State)
	assert.True(t, start.Equal(result.StartDateTime))
	assert.Equal(t, 25.0, result.Price)
}

func TestDocumentToResult_MissingFields(t *testing.T) {
	result := documentToResult(map[string]interface{}{"title": "Untitled"})

	assert.Empty(t, result.EventID)
	assert.Empty(t, result.SourceURI)
	assert.Equal(t, "Untitled", result.Title)
	assert.True(t, result.StartDateTime.IsZero())
}

func TestWrapBreakerErr(t *testing.T) {
	err := wrapBreakerErr("retrieve", gobreaker.ErrOpenState)
	assert.ErrorIs(t, err, providers.ErrKnowledgeBaseUnavailable)

	err = wrapBreakerErr("retrieve", errors.New("connection refused"))
	assert.NotErrorIs(t, err, providers.ErrKnowledgeBaseUnavailable)
	assert.Contains(t, err.Error(), "retrieve")
}

func TestGenerate_NoAIConfigured(t *testing.T) {
	adapter := NewKnowledgeBaseAdapter(nil, nil, nil)

	_, err := adapter.Generate(context.Background(), "what is on tonight", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, providers.ErrKnowledgeBaseUnavailable)
}

func TestSessionHistory_RoundTrip(t *testing.T) {
	cache := newFakeCache()
	adapter := &KnowledgeBaseAdapter{sessions: cache}

	ctx := context.Background()
	adapter.storeSessionTurns(ctx, "s1", "any concerts this weekend?", "Yes, two jazz shows.")

	turns := adapter.loadSession(ctx, "s1")
	require.Len(t, turns, 2)
	assert.Equal(t, openai.Turn{Role: "user", Content: "any concerts this weekend?"}, turns[0])
	assert.Equal(t, openai.Turn{Role: "assistant", Content: "Yes, two jazz shows."}, turns[1])
}

func TestSessionHistory_EmptySessionID(t *testing.T) {
	cache := newFakeCache()
	adapter := &KnowledgeBaseAdapter{sessions: cache}

	ctx := context.Background()
	adapter.storeSessionTurns(ctx, "", "query", "answer")
	assert.Empty(t, cache.lists)
	assert.Nil(t, adapter.loadSession(ctx, ""))
}
