package proposal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend returns a chat-completions server that replies with the
// given content and records the last request body.
func fakeBackend(t *testing.T, content string) (*httptest.Server, *chatRequest) {
	t.Helper()
	var last chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&last))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &last
}

func TestChatSendsSystemAndUserMessages(t *testing.T) {
	srv, last := fakeBackend(t, "hello there")
	c := NewOpenRouter(srv.URL, "test-key", "test-model")

	reply, err := c.Chat(context.Background(), "be brief", "say hello")
	require.NoError(t, err)
	assert.Equal(t, "hello there", reply)

	assert.Equal(t, "test-model", last.Model)
	require.Len(t, last.Messages, 2)
	assert.Equal(t, "system", last.Messages[0].Role)
	assert.Equal(t, "be brief", last.Messages[0].Content)
	assert.Equal(t, "user", last.Messages[1].Role)
}

func TestChatOmitsEmptySystemPrompt(t *testing.T) {
	srv, last := fakeBackend(t, "ok")
	c := NewOpenRouter(srv.URL, "test-key", "test-model")

	_, err := c.Chat(context.Background(), "", "just user")
	require.NoError(t, err)
	require.Len(t, last.Messages, 1)
	assert.Equal(t, "user", last.Messages[0].Role)
}

func TestChatErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()
	c := NewOpenRouter(srv.URL, "test-key", "test-model")

	_, err := c.Chat(context.Background(), "", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestChatErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "model offline"},
		})
	}))
	defer srv.Close()
	c := NewOpenRouter(srv.URL, "test-key", "test-model")

	_, err := c.Chat(context.Background(), "", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model offline")
}

func TestProposeRendersPrompt(t *testing.T) {
	srv, last := fakeBackend(t, "I can offer 300")
	c := NewOpenRouter(srv.URL, "test-key", "test-model")

	reply, err := c.Propose(context.Background(), Request{
		Role:      "buyer",
		EventName: "Midnight Run Tour",
		GroupID:   "FLOOR_PREMIUM",
		Quantity:  2,
		Opening:   decimal.NewFromInt(300),
		Limit:     decimal.NewFromInt(350),
		Round:     1,
		MaxRounds: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, "I can offer 300", reply)

	require.Len(t, last.Messages, 2)
	assert.Contains(t, last.Messages[0].Content, "buyer's representative")
	assert.Contains(t, last.Messages[1].Content, "Midnight Run Tour")
}

func TestExtractIntentParsesCodeFencedJSON(t *testing.T) {
	body := "```json\n{\"extracted\": {\"event_name\": \"Coldplay\", \"num_tickets\": 2}, \"missing\": [\"price\", \"max_price\"]}\n```"
	srv, _ := fakeBackend(t, body)
	c := NewOpenRouter(srv.URL, "test-key", "test-model")

	in, err := c.ExtractIntent(context.Background(), "two coldplay tickets please")
	require.NoError(t, err)
	require.NotNil(t, in.Extracted.EventName)
	assert.Equal(t, "Coldplay", *in.Extracted.EventName)
	require.NotNil(t, in.Extracted.NumTickets)
	assert.Equal(t, 2, *in.Extracted.NumTickets)
	assert.Equal(t, []string{"price", "max_price"}, in.Missing)
	assert.Nil(t, in.Extracted.Price)
}

func TestExtractIntentRejectsGarbage(t *testing.T) {
	srv, _ := fakeBackend(t, "sorry, I cannot help with that")
	c := NewOpenRouter(srv.URL, "test-key", "test-model")

	_, err := c.ExtractIntent(context.Background(), "anything")
	assert.Error(t, err)
}
