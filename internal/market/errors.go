// Package market implements the negotiation core of the marketplace:
// submarket snapshots, the role-symmetric negotiator, the per-pair
// negotiation state machine, the concurrent orchestrator and the
// transaction resolver.
package market

import (
    "errors"
    "fmt"
)

// ErrNotInSubMarket is returned when a candidate pair references a bid
// or ticket that is not part of the submarket snapshot. The
// orchestrator skips such pairs without failing the batch.
var ErrNotInSubMarket = errors.New("not in submarket")

// ErrAlreadyProposed is returned when ProposeOffer is called twice for
// the same round on the same side.
var ErrAlreadyProposed = errors.New("offer already proposed this round")

// ExtractionError reports that no price could be parsed from a proposal
// service response. It carries the role that authored the unparseable
// text and a snippet of the text itself for diagnostics.
type ExtractionError struct {
    Role string
    Text string
}

func (e *ExtractionError) Error() string {
    text := e.Text
    if len(text) > 120 {
        text = text[:120] + "..."
    }
    return fmt.Sprintf("no price found in %s message: %q", e.Role, text)
}
