package proposal

import (
    "context"
    "encoding/json"
    "fmt"
    "strings"
)

// IntentFields holds the structured purchase intent extracted from a
// buyer's free-text query. Pointer fields are nil when the model could
// not determine a value.
type IntentFields struct {
    EventName   *string  `json:"event_name"`
    Venue       *string  `json:"venue"`
    NumTickets  *int     `json:"num_tickets"`
    Price       *float64 `json:"price"`
    MaxPrice    *float64 `json:"max_price"`
    SeatType    *string  `json:"seat_type"`
    Sensitivity *string  `json:"sensitivity"`
    Certainty   *string  `json:"certainty"`
}

// Intent is the model's parse of a buyer query: the fields it could
// extract and the names of required fields that are still missing.
type Intent struct {
    Extracted IntentFields `json:"extracted"`
    Missing   []string     `json:"missing"`
}

const intentSystemPrompt = `You are an assistant that extracts ticket-purchase intent from natural language.
Required fields: event_name, venue, num_tickets, price, max_price.
Optional fields: seat_type (default "any"), sensitivity (default "normal"), certainty (default "definitely").
Respond ONLY in JSON with the shape:
{"extracted": {"event_name": ..., "venue": ..., "num_tickets": ..., "price": ..., "max_price": ..., "seat_type": ..., "sensitivity": ..., "certainty": ...}, "missing": [...]}
If unsure about a field, set it to null and list it in "missing". Do NOT guess and do NOT ask questions.`

// clarificationQuestions maps each required intent field to the
// follow-up question the API returns when the field is missing.
var clarificationQuestions = map[string]string{
    "event_name":  "What artist or event are you looking for?",
    "venue":       "Which venue or place do you prefer?",
    "num_tickets": "How many tickets do you need?",
    "price":       "What is your starting offer per ticket?",
    "max_price":   "What is the most you're willing to pay per ticket?",
}

// ClarificationQuestion returns the canonical follow-up question for a
// missing intent field, or an empty string for unknown fields.
func ClarificationQuestion(field string) string {
    return clarificationQuestions[field]
}

// ExtractIntent runs the intent-extraction prompt against the model and
// parses its JSON reply. Models occasionally wrap JSON in a code fence;
// the parser strips that before decoding.
func (c *OpenRouter) ExtractIntent(ctx context.Context, query string) (Intent, error) {
    reply, err := c.Chat(ctx, intentSystemPrompt, query)
    if err != nil {
        return Intent{}, err
    }
    var in Intent
    if err := json.Unmarshal([]byte(stripCodeFence(reply)), &in); err != nil {
        return Intent{}, fmt.Errorf("intent: unparseable model reply: %w", err)
    }
    return in, nil
}

func stripCodeFence(s string) string {
    s = strings.TrimSpace(s)
    if !strings.HasPrefix(s, "```") {
        return s
    }
    s = strings.TrimPrefix(s, "```json")
    s = strings.TrimPrefix(s, "```")
    s = strings.TrimSuffix(strings.TrimSpace(s), "```")
    return strings.TrimSpace(s)
}
