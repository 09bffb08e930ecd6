package proposal

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "io"
    "net/http"
    "time"
)

// DefaultBaseURL is the OpenRouter chat-completions endpoint used when
// no override is configured.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// OpenRouter calls the OpenRouter chat-completions API. It implements
// Service for negotiation proposals and also exposes the generic Chat
// call used by the buyer-intent endpoint.
type OpenRouter struct {
    baseURL string
    apiKey  string
    model   string
    httpc   *http.Client
}

// NewOpenRouter builds a client for the given endpoint, API key and
// model. Empty baseURL falls back to DefaultBaseURL. The underlying
// HTTP client carries a generous timeout as a backstop; per-call
// deadlines come from the caller's context.
func NewOpenRouter(baseURL, apiKey, model string) *OpenRouter {
    if baseURL == "" {
        baseURL = DefaultBaseURL
    }
    return &OpenRouter{
        baseURL: baseURL,
        apiKey:  apiKey,
        model:   model,
        httpc:   &http.Client{Timeout: 90 * time.Second},
    }
}

type chatMessage struct {
    Role    string `json:"role"`
    Content string `json:"content"`
}

type chatRequest struct {
    Model    string        `json:"model"`
    Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
    Choices []struct {
        Message struct {
            Content string `json:"content"`
        } `json:"message"`
    } `json:"choices"`
    Error *struct {
        Message string `json:"message"`
    } `json:"error,omitempty"`
}

// Chat sends a system + user message pair and returns the assistant's
// reply. An empty system prompt is omitted from the request.
func (c *OpenRouter) Chat(ctx context.Context, system, user string) (string, error) {
    msgs := make([]chatMessage, 0, 2)
    if system != "" {
        msgs = append(msgs, chatMessage{Role: "system", Content: system})
    }
    msgs = append(msgs, chatMessage{Role: "user", Content: user})

    body, err := json.Marshal(chatRequest{Model: c.model, Messages: msgs})
    if err != nil {
        return "", err
    }
    req, err := http.NewRequestWithContext(ctx, http.MethodPost,
        c.baseURL+"/chat/completions", bytes.NewReader(body))
    if err != nil {
        return "", err
    }
    req.Header.Set("Authorization", "Bearer "+c.apiKey)
    req.Header.Set("Content-Type", "application/json")

    resp, err := c.httpc.Do(req)
    if err != nil {
        return "", fmt.Errorf("openrouter: request failed: %w", err)
    }
    defer resp.Body.Close()

    raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
    if err != nil {
        return "", fmt.Errorf("openrouter: read response: %w", err)
    }
    if resp.StatusCode != http.StatusOK {
        return "", fmt.Errorf("openrouter: status %d: %s", resp.StatusCode, truncate(string(raw), 200))
    }
    var cr chatResponse
    if err := json.Unmarshal(raw, &cr); err != nil {
        return "", fmt.Errorf("openrouter: decode response: %w", err)
    }
    if cr.Error != nil {
        return "", fmt.Errorf("openrouter: %s", cr.Error.Message)
    }
    if len(cr.Choices) == 0 {
        return "", fmt.Errorf("openrouter: empty choices")
    }
    return cr.Choices[0].Message.Content, nil
}

// Propose renders the negotiation prompt for one side and returns the
// model's free-text offer or acceptance.
func (c *OpenRouter) Propose(ctx context.Context, req Request) (string, error) {
    system, user := BuildNegotiationPrompt(req)
    return c.Chat(ctx, system, user)
}

func truncate(s string, n int) string {
    if len(s) <= n {
        return s
    }
    return s[:n] + "..."
}
