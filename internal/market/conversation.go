package market

import "github.com/iliyamo/ticket-marketplace/internal/proposal"

// Entry is one recorded message in a negotiation's conversation log.
// Role names which side authored the message; Round is the round the
// message was processed in.
type Entry struct {
    Round int    `json:"round"`
    Role  string `json:"role"`
    Text  string `json:"text"`
}

// Conversation is the append-only message history of one negotiation.
// The Negotiation owns a single Conversation and shares it by
// reference with both Negotiators so that each side sees the same
// ordered history. Each completed round appends exactly one buyer
// entry and one seller entry.
type Conversation struct {
    entries []Entry
}

// NewConversation returns an empty conversation log.
func NewConversation() *Conversation { return &Conversation{} }

// Append records a message. Entries are never modified or removed.
func (c *Conversation) Append(e Entry) { c.entries = append(c.entries, e) }

// Len returns the number of recorded entries.
func (c *Conversation) Len() int { return len(c.entries) }

// Entries returns a copy of the log in append order.
func (c *Conversation) Entries() []Entry {
    out := make([]Entry, len(c.entries))
    copy(out, c.entries)
    return out
}

// Turns converts the log into the shape the proposal service consumes.
func (c *Conversation) Turns() []proposal.Turn {
    out := make([]proposal.Turn, 0, len(c.entries))
    for _, e := range c.entries {
        out = append(out, proposal.Turn{Round: e.Round, Speaker: e.Role, Text: e.Text})
    }
    return out
}
