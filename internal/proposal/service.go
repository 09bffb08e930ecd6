// Package proposal defines the boundary to the external service that
// turns negotiation context into free-text offers and acceptances. The
// negotiation engine depends only on the Service interface; the
// OpenRouter-backed implementation lives in this package as well so the
// prompt format and the transport stay together.
package proposal

import (
    "context"

    "github.com/shopspring/decimal"
)

// Turn is one prior message in a negotiation, as presented to the
// language model. Speaker is "buyer" or "seller".
type Turn struct {
    Round   int    `json:"round"`
    Speaker string `json:"speaker"`
    Text    string `json:"text"`
}

// Request carries everything the proposal service needs to produce the
// next message for one side of a negotiation: the side's public
// position, its hidden constraints, market context and the
// conversation so far. The response is free text that is expected to
// contain either an explicit acceptance or a numeric offer as the last
// number in the text; no stricter format is guaranteed.
type Request struct {
    Role          string          // "buyer" or "seller"
    EventName     string          // event being negotiated
    GroupID       string          // seating group of the submarket
    Quantity      int             // quantity fixed for this negotiation
    Opening       decimal.Decimal // this side's opening price
    Limit         decimal.Decimal // ceiling (buyer) or floor (seller); hidden from the counterpart
    Sensitivity   string          // hidden price-sensitivity label
    Reference     decimal.Decimal // per-seat benchmark value for the group
    ImmediateSale bool            // seller wants a fast close
    History       []Turn          // full conversation so far
    Round         int             // current round, 1-based
    MaxRounds     int             // shared round ceiling
}

// Service produces the next negotiation message for one side. This is
// the only call in the engine that may incur real external latency;
// callers bound it with a context deadline.
type Service interface {
    Propose(ctx context.Context, req Request) (string, error)
}
