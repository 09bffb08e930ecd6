package market

import (
    "context"
    "time"

    "github.com/shopspring/decimal"

    "github.com/iliyamo/ticket-marketplace/internal/model"
    "github.com/iliyamo/ticket-marketplace/internal/proposal"
)

// State is the lifecycle stage of one Negotiation.
type State int

const (
    StatePending State = iota
    StateInProgress
    StateAgreed
    StateImpasse
)

func (s State) String() string {
    switch s {
    case StatePending:
        return "pending"
    case StateInProgress:
        return "in_progress"
    case StateAgreed:
        return "agreed"
    case StateImpasse:
        return "impasse"
    }
    return "unknown"
}

// Agreement is the resolved outcome of one negotiation: the pair it
// settles, the converged price, the quantity fixed at negotiation
// start, and the conversation that produced it.
type Agreement struct {
    BidID        string          `json:"bid_id"`
    TicketID     string          `json:"ticket_id"`
    Price        decimal.Decimal `json:"price"`
    Quantity     int             `json:"quantity"`
    Conversation []Entry         `json:"conversation"`
}

// Options tunes a Negotiation. MaxRounds bounds the round loop;
// ProposalTimeout bounds each proposal service call (zero disables the
// bound); Observer, when set, receives structured diagnostics.
type Options struct {
    MaxRounds       int
    ProposalTimeout time.Duration
    Observer        Observer
}

// DefaultMaxRounds is the shared round ceiling used when Options does
// not override it.
const DefaultMaxRounds = 5

// Negotiation drives one bid/ticket pair through rounds of bilateral
// bargaining until agreement, impasse or round exhaustion. The
// quantity is fixed at construction as the smaller of the two sides'
// quantities and is never renegotiated.
type Negotiation struct {
    bid    model.Bid
    ticket model.Ticket
    buyer  *Negotiator
    seller *Negotiator
    conv   *Conversation

    state     State
    quantity  int
    maxRounds int
    obs       Observer
}

// NewNegotiation wires up both negotiators around a shared
// conversation log. The submarket is used read-only for reference
// values and event context.
func NewNegotiation(bid model.Bid, ticket model.Ticket, m *SubMarket, svc proposal.Service, opts Options) *Negotiation {
    if opts.MaxRounds <= 0 {
        opts.MaxRounds = DefaultMaxRounds
    }
    qty := bid.Quantity
    if ticket.Quantity < qty {
        qty = ticket.Quantity
    }
    conv := NewConversation()
    return &Negotiation{
        bid:       bid,
        ticket:    ticket,
        conv:      conv,
        buyer:     NewNegotiator(BuyerSpec(bid), m, svc, conv, qty, opts.MaxRounds, opts.ProposalTimeout),
        seller:    NewNegotiator(SellerSpec(ticket), m, svc, conv, qty, opts.MaxRounds, opts.ProposalTimeout),
        state:     StatePending,
        quantity:  qty,
        maxRounds: opts.MaxRounds,
        obs:       opts.Observer,
    }
}

// State returns the negotiation's current lifecycle stage.
func (n *Negotiation) State() State { return n.state }

// Quantity returns the quantity fixed for this negotiation.
func (n *Negotiation) Quantity() int { return n.quantity }

// Run conducts the negotiation and returns the agreement, or nil on
// impasse. A non-nil error marks a technical failure (unreachable
// proposal service, unparseable reply) as opposed to the normal
// impasse outcome.
//
// Fast path: when the bid's ask already meets or exceeds the listing
// price, the pair settles immediately at the listing price with no
// rounds consumed. Otherwise each round generates both sides'
// proposals before processing either, so neither side gains priority
// from ordering.
func (n *Negotiation) Run(ctx context.Context) (*Agreement, error) {
    n.emit(EventStarted, 0)

    if n.bid.Price.GreaterThanOrEqual(n.ticket.Price) {
        return n.agreeAt(n.ticket.Price), nil
    }

    n.state = StateInProgress
    for round := 1; round <= n.maxRounds; round++ {
        if a := n.settled(); a != nil {
            return a, nil
        }
        buyerText, err := n.buyer.ProposeOffer(ctx)
        if err != nil {
            return nil, n.fail(round, err)
        }
        sellerText, err := n.seller.ProposeOffer(ctx)
        if err != nil {
            return nil, n.fail(round, err)
        }
        if err := n.buyer.ProcessCounterOffer(sellerText); err != nil {
            return nil, n.fail(round, err)
        }
        if err := n.seller.ProcessCounterOffer(buyerText); err != nil {
            return nil, n.fail(round, err)
        }
        n.emit(EventRound, round)
    }
    if a := n.settled(); a != nil {
        return a, nil
    }

    n.state = StateImpasse
    n.emit(EventImpasse, n.maxRounds)
    return nil, nil
}

// settled checks both sides for resolution and materializes the
// agreement at the resolved side's standing offer.
func (n *Negotiation) settled() *Agreement {
    if n.buyer.Resolved() {
        if price, ok := n.buyer.CurrentOffer(); ok {
            return n.agreeAt(price)
        }
    }
    if n.seller.Resolved() {
        if price, ok := n.seller.CurrentOffer(); ok {
            return n.agreeAt(price)
        }
    }
    return nil
}

func (n *Negotiation) agreeAt(price decimal.Decimal) *Agreement {
    n.state = StateAgreed
    a := &Agreement{
        BidID:        n.bid.ID,
        TicketID:     n.ticket.ID,
        Price:        price,
        Quantity:     n.quantity,
        Conversation: n.conv.Entries(),
    }
    if n.obs != nil {
        n.obs.Observe(NegotiationEvent{
            Kind:     EventAgreed,
            BidID:    n.bid.ID,
            TicketID: n.ticket.ID,
            Round:    n.buyer.Round(),
            Price:    price,
            Quantity: n.quantity,
        })
    }
    return a
}

func (n *Negotiation) fail(round int, err error) error {
    if n.obs != nil {
        n.obs.Observe(NegotiationEvent{
            Kind:     EventFailed,
            BidID:    n.bid.ID,
            TicketID: n.ticket.ID,
            Round:    round,
            Err:      err,
        })
    }
    return err
}

func (n *Negotiation) emit(kind EventKind, round int) {
    if n.obs == nil {
        return
    }
    n.obs.Observe(NegotiationEvent{
        Kind:     kind,
        BidID:    n.bid.ID,
        TicketID: n.ticket.ID,
        Round:    round,
    })
}
