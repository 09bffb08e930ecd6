package market

import (
    "context"
    "fmt"
    "sync"

    "go.uber.org/zap"

    "github.com/iliyamo/ticket-marketplace/internal/proposal"
)

// CandidatePair names one (bid, ticket) combination to negotiate. The
// pairs arrive pre-filtered from an upstream matching step; the
// orchestrator only verifies that both sides resolve inside the
// submarket snapshot.
type CandidatePair struct {
    BidID    string `json:"bid_id"`
    TicketID string `json:"ticket_id"`
}

// OutcomeStatus classifies the result of one candidate pair.
type OutcomeStatus string

const (
    OutcomeAgreed  OutcomeStatus = "agreed"  // negotiation produced an agreement
    OutcomeImpasse OutcomeStatus = "impasse" // round budget exhausted without convergence
    OutcomeSkipped OutcomeStatus = "skipped" // bid or ticket missing from the submarket
    OutcomeFailed  OutcomeStatus = "failed"  // technical failure (service error, unparseable reply)
)

// Outcome is the per-pair result of an orchestration run. Agreement is
// non-nil only for OutcomeAgreed; Err is non-nil for OutcomeSkipped
// and OutcomeFailed.
type Outcome struct {
    Pair      CandidatePair
    Status    OutcomeStatus
    Agreement *Agreement
    Err       error
}

// Orchestrator fans out one Negotiation per candidate pair and gathers
// the results. Negotiations share no mutable state: each owns its two
// negotiators and its conversation log, and the submarket snapshot is
// read-only, so they run freely in parallel.
type Orchestrator struct {
    svc    proposal.Service
    logger *zap.Logger
    opts   Options
}

// NewOrchestrator builds an orchestrator. The options are applied to
// every negotiation it constructs; when no Observer is set a zap-backed
// one is installed so every negotiation reports structured diagnostics.
func NewOrchestrator(svc proposal.Service, logger *zap.Logger, opts Options) *Orchestrator {
    if opts.Observer == nil {
        opts.Observer = NewZapObserver(logger)
    }
    return &Orchestrator{svc: svc, logger: logger, opts: opts}
}

// Run negotiates all candidate pairs against the submarket
// concurrently and returns one Outcome per requested pair, in request
// order. A pair referencing a missing bid or ticket is skipped and
// logged; a failing negotiation records its error. Neither aborts the
// batch, and no negotiation's slowness blocks another's completion —
// the batch as a whole waits for all pairs before returning.
func (o *Orchestrator) Run(ctx context.Context, m *SubMarket, pairs []CandidatePair) []Outcome {
    o.logger.Info("starting negotiations",
        zap.String("event_id", m.EventID),
        zap.String("group_id", m.GroupID),
        zap.Int("pairs", len(pairs)),
        zap.Int("tickets", m.NumTickets()),
        zap.Int("bids", m.NumBids()))

    outcomes := make([]Outcome, len(pairs))
    var wg sync.WaitGroup
    for i, p := range pairs {
        wg.Add(1)
        go func(i int, p CandidatePair) {
            defer wg.Done()
            outcomes[i] = o.negotiatePair(ctx, m, p)
        }(i, p)
    }
    wg.Wait()

    agreed := 0
    for _, out := range outcomes {
        if out.Status == OutcomeAgreed {
            agreed++
        }
    }
    o.logger.Info("negotiations completed",
        zap.Int("agreed", agreed),
        zap.Int("total", len(pairs)))
    return outcomes
}

func (o *Orchestrator) negotiatePair(ctx context.Context, m *SubMarket, p CandidatePair) Outcome {
    bid, okBid := m.Bid(p.BidID)
    ticket, okTicket := m.Ticket(p.TicketID)
    if !okBid || !okTicket {
        err := fmt.Errorf("pair (%s, %s): %w", p.BidID, p.TicketID, ErrNotInSubMarket)
        o.logger.Warn("skipping candidate pair",
            zap.String("bid_id", p.BidID),
            zap.String("ticket_id", p.TicketID),
            zap.Bool("bid_found", okBid),
            zap.Bool("ticket_found", okTicket))
        return Outcome{Pair: p, Status: OutcomeSkipped, Err: err}
    }

    agreement, err := NewNegotiation(bid, ticket, m, o.svc, o.opts).Run(ctx)
    switch {
    case err != nil:
        return Outcome{Pair: p, Status: OutcomeFailed, Err: err}
    case agreement == nil:
        return Outcome{Pair: p, Status: OutcomeImpasse}
    default:
        return Outcome{Pair: p, Status: OutcomeAgreed, Agreement: agreement}
    }
}

// Agreements extracts the successful agreements from a batch of
// outcomes, discarding impasses, skips and failures.
func Agreements(outcomes []Outcome) []Agreement {
    out := make([]Agreement, 0, len(outcomes))
    for _, o := range outcomes {
        if o.Agreement != nil {
            out = append(out, *o.Agreement)
        }
    }
    return out
}
