package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citypulse/eventdiscovery/pkg/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(&config.OpenAIConfig{
		APIKey:       "test-key",
		Model:        "gpt-4o-mini",
		RateLimitRPM: -1, // disable limiter in tests
	})
	require.NoError(t, err)
	client.baseURL = server.URL
	return client
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(&config.OpenAIConfig{})
	assert.Error(t, err)

	_, err = NewClient(nil)
	assert.Error(t, err)
}

func TestGenerateAnswer_ParsesOutputText(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/responses", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		input, ok := payload["input"].([]interface{})
		require.True(t, ok)
		// system prompt + user turn
		assert.Len(t, input, 2)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"output": []map[string]interface{}{
				{"content": []map[string]string{
					{"type": "output_text", "text": "Try the Jazz Night at Blue Hall."},
				}},
			},
		})
	})

	answer, err := client.GenerateAnswer(context.Background(), "any jazz this weekend?", []ContextDocument{
		{Title: "Jazz Night", Excerpt: "Live jazz at Blue Hall"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Try the Jazz Night at Blue Hall.", answer)
}

func TestGenerateAnswer_IncludesHistoryTurns(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		input := payload["input"].([]interface{})
		// system + 2 history turns + current question
		assert.Len(t, input, 4)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"output": []map[string]interface{}{
				{"content": []map[string]string{{"type": "output_text", "text": "ok"}}},
			},
		})
	})

	_, err := client.GenerateAnswer(context.Background(), "and anything free?", nil, []Turn{
		{Role: "user", Content: "any jazz this weekend?"},
		{Role: "assistant", Content: "Try the Jazz Night at Blue Hall."},
	})
	require.NoError(t, err)
}

func TestGenerateAnswer_ErrorStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.GenerateAnswer(context.Background(), "hi", nil, nil)
	assert.ErrorContains(t, err, "status 500")
}

func TestGenerateAnswer_MissingOutput(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"output": []interface{}{}})
	})

	_, err := client.GenerateAnswer(context.Background(), "hi", nil, nil)
	assert.ErrorContains(t, err, "missing output text")
}

func TestBuildAnswerUserPrompt_NoDocs(t *testing.T) {
	prompt := buildAnswerUserPrompt("anything on?", nil)
	assert.Contains(t, prompt, "No event listings matched")
	assert.Contains(t, prompt, "Question: anything on?")
}
