package market

import (
    "context"
    "regexp"
    "strings"
    "time"

    "github.com/shopspring/decimal"

    "github.com/iliyamo/ticket-marketplace/internal/model"
    "github.com/iliyamo/ticket-marketplace/internal/proposal"
)

// Role identifies which side of a negotiation a Negotiator represents.
type Role int

const (
    RoleBuyer Role = iota
    RoleSeller
)

func (r Role) String() string {
    if r == RoleBuyer {
        return "buyer"
    }
    return "seller"
}

// Counterpart returns the opposite role.
func (r Role) Counterpart() Role {
    if r == RoleBuyer {
        return RoleSeller
    }
    return RoleBuyer
}

// RoleSpec is the small capability descriptor that parametrizes a
// Negotiator. Buyer-side and seller-side behaviour differ only in the
// values carried here: who the party is, where they open, and the
// hidden limit and sensitivity that shape their proposals but are
// never revealed to the counterpart.
type RoleSpec struct {
    Role          Role
    PartyID       string          // buyer id or seller id
    Opening       decimal.Decimal // opening price for this side
    Limit         decimal.Decimal // buyer ceiling or seller floor (hidden)
    Sensitivity   string          // hidden price-sensitivity label
    ImmediateSale bool            // seller prefers a fast close
}

// BuyerSpec derives the buyer-side descriptor from a bid.
func BuyerSpec(b model.Bid) RoleSpec {
    return RoleSpec{
        Role:        RoleBuyer,
        PartyID:     b.BuyerID,
        Opening:     b.Price,
        Limit:       b.MaxPrice,
        Sensitivity: b.Sensitivity,
    }
}

// SellerSpec derives the seller-side descriptor from a ticket listing.
func SellerSpec(t model.Ticket) RoleSpec {
    return RoleSpec{
        Role:          RoleSeller,
        PartyID:       t.SellerID,
        Opening:       t.Price,
        Limit:         t.MinPrice,
        Sensitivity:   t.Sensitivity,
        ImmediateSale: t.ImmediateSale,
    }
}

// priceRe matches monetary tokens: either a thousands-separated figure
// ("1,250" or "12,000.50") or a plain number with an optional fraction.
// The fraction is captured whole and clipped to two digits afterwards
// so that "3.14159" parses as one token rather than splitting.
var priceRe = regexp.MustCompile(`\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?`)

// ExtractPrice scans free text for numeric amounts and returns the
// LAST one found, preserving up to two decimal digits. This is the
// canonical extraction rule: in "I can do $500, maybe $480" the price
// is 480. The boolean is false when the text contains no number.
func ExtractPrice(text string) (decimal.Decimal, bool) {
    matches := priceRe.FindAllString(text, -1)
    if len(matches) == 0 {
        return decimal.Decimal{}, false
    }
    raw := strings.ReplaceAll(matches[len(matches)-1], ",", "")
    d, err := decimal.NewFromString(raw)
    if err != nil {
        return decimal.Decimal{}, false
    }
    return d.Truncate(2), true
}

// Negotiator is one side of a pairwise negotiation. It holds the
// side's RoleSpec, the running round counter, this side's standing
// offer, and a reference to the conversation log shared with the
// counterpart. A Negotiator is confined to its Negotiation's goroutine
// and is not safe for concurrent use.
type Negotiator struct {
    spec      RoleSpec
    market    *SubMarket
    svc       proposal.Service
    conv      *Conversation
    quantity  int
    round     int // 1-based, advanced by ProcessCounterOffer
    maxRounds int
    timeout   time.Duration

    current    decimal.Decimal // this side's standing offer
    hasOffer   bool
    counter    decimal.Decimal // counterpart's last recorded offer
    hasCounter bool
    resolved   bool

    proposedRound int // guards against double proposals in one round
}

// NewNegotiator builds a Negotiator for one side of a negotiation.
// conv must be the same Conversation instance handed to the
// counterpart. timeout bounds each proposal service call; zero
// disables the bound.
func NewNegotiator(spec RoleSpec, m *SubMarket, svc proposal.Service, conv *Conversation, quantity, maxRounds int, timeout time.Duration) *Negotiator {
    return &Negotiator{
        spec:      spec,
        market:    m,
        svc:       svc,
        conv:      conv,
        quantity:  quantity,
        round:     1,
        maxRounds: maxRounds,
        timeout:   timeout,
    }
}

// Round returns the current 1-based round counter.
func (n *Negotiator) Round() int { return n.round }

// Resolved reports whether this side considers the negotiation closed.
func (n *Negotiator) Resolved() bool { return n.resolved }

// CurrentOffer returns this side's standing offer. The boolean is
// false before the side has stated any price.
func (n *Negotiator) CurrentOffer() (decimal.Decimal, bool) {
    return n.current, n.hasOffer
}

// CounterOffer returns the counterpart's last recorded offer.
func (n *Negotiator) CounterOffer() (decimal.Decimal, bool) {
    return n.counter, n.hasCounter
}

// ProposeOffer asks the proposal service for this side's next message.
// The side's standing offer is refreshed from the returned text, so
// acceptance checks always compare against the number this side most
// recently put on the table. At most one proposal may be generated per
// round per side.
func (n *Negotiator) ProposeOffer(ctx context.Context) (string, error) {
    if n.proposedRound == n.round {
        return "", ErrAlreadyProposed
    }
    if n.timeout > 0 {
        var cancel context.CancelFunc
        ctx, cancel = context.WithTimeout(ctx, n.timeout)
        defer cancel()
    }
    text, err := n.svc.Propose(ctx, n.buildRequest())
    if err != nil {
        return "", err
    }
    n.proposedRound = n.round
    if p, ok := ExtractPrice(text); ok {
        n.current = p
        n.hasOffer = true
    }
    return text, nil
}

// IsAccepted reports whether an incoming message accepts this side's
// standing offer. Acceptance is numeric convergence: the counterpart
// echoing back exactly the number this side last stated. A message
// with no parseable price never counts as acceptance.
func (n *Negotiator) IsAccepted(text string) bool {
    p, ok := ExtractPrice(text)
    return ok && n.hasOffer && p.Equal(n.current)
}

// ProcessCounterOffer consumes the counterpart's freshly generated
// message. If the message accepts this side's standing offer the
// negotiator marks itself resolved and stops. Otherwise the
// counterpart's price is recorded, the message is appended to the
// shared log tagged with this round and the counterpart's role, and
// the round counter advances. A message with no parseable price is an
// ExtractionError.
func (n *Negotiator) ProcessCounterOffer(text string) error {
    if n.IsAccepted(text) {
        n.resolved = true
        return nil
    }
    price, ok := ExtractPrice(text)
    if !ok {
        return &ExtractionError{Role: n.spec.Role.Counterpart().String(), Text: text}
    }
    n.counter = price
    n.hasCounter = true
    n.conv.Append(Entry{
        Round: n.round,
        Role:  n.spec.Role.Counterpart().String(),
        Text:  text,
    })
    n.round++
    return nil
}

func (n *Negotiator) buildRequest() proposal.Request {
    return proposal.Request{
        Role:          n.spec.Role.String(),
        EventName:     n.market.EventName,
        GroupID:       n.market.GroupID,
        Quantity:      n.quantity,
        Opening:       n.spec.Opening,
        Limit:         n.spec.Limit,
        Sensitivity:   n.spec.Sensitivity,
        Reference:     n.market.Reference(),
        ImmediateSale: n.spec.ImmediateSale,
        History:       n.conv.Turns(),
        Round:         n.round,
        MaxRounds:     n.maxRounds,
    }
}
