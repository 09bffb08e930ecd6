package market

import (
    "context"
    "sync"

    "github.com/shopspring/decimal"

    "github.com/iliyamo/ticket-marketplace/internal/model"
    "github.com/iliyamo/ticket-marketplace/internal/proposal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testEvent() model.Event {
    return model.Event{ID: "evt_1", Name: "Midnight Run Tour", VenueID: "ven_1"}
}

func testVenue() model.Venue {
    return model.Venue{
        ID:   "ven_1",
        Name: "Riverside Arena",
        City: "Portland",
        SeatingGroups: []model.SeatingGroup{
            {GroupID: "FLOOR_PREMIUM", Name: "Floor Premium", ReferenceValue: dec("450")},
            {GroupID: "BALCONY", Name: "Balcony", ReferenceValue: dec("180")},
        },
    }
}

func testBid(id, buyerID string, qty int, price, maxPrice string, groups ...string) model.Bid {
    return model.Bid{
        ID:            id,
        BuyerID:       buyerID,
        EventID:       "evt_1",
        Quantity:      qty,
        Price:         dec(price),
        MaxPrice:      dec(maxPrice),
        AllowedGroups: groups,
        Sensitivity:   "normal",
    }
}

func testTicket(id, sellerID string, qty int, price, minPrice string) model.Ticket {
    return model.Ticket{
        ID:          id,
        SellerID:    sellerID,
        EventID:     "evt_1",
        GroupID:     "FLOOR_PREMIUM",
        Quantity:    qty,
        Price:       dec(price),
        MinPrice:    dec(minPrice),
        Sensitivity: "normal",
    }
}

func testMarket(tickets []model.Ticket, bids []model.Bid) *SubMarket {
    return NewSubMarket(testEvent(), testVenue(), "FLOOR_PREMIUM", tickets, bids)
}

// scriptedService replays canned replies per role, holding the last
// reply once a script is exhausted. Meant for single-negotiation tests.
type scriptedService struct {
    mu     sync.Mutex
    buyer  []string
    seller []string
    bi, si int
}

func (s *scriptedService) Propose(_ context.Context, req proposal.Request) (string, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if req.Role == "buyer" {
        if s.bi < len(s.buyer)-1 {
            s.bi++
            return s.buyer[s.bi-1], nil
        }
        return s.buyer[len(s.buyer)-1], nil
    }
    if s.si < len(s.seller)-1 {
        s.si++
        return s.seller[s.si-1], nil
    }
    return s.seller[len(s.seller)-1], nil
}

// staticService answers every proposal with a fixed reply per role.
// Stateless, so it is safe across concurrent negotiations.
type staticService struct {
    buyer  string
    seller string
}

func (s staticService) Propose(_ context.Context, req proposal.Request) (string, error) {
    if req.Role == "buyer" {
        return s.buyer, nil
    }
    return s.seller, nil
}

// blockingService never answers; it waits out the caller's deadline.
type blockingService struct{}

func (blockingService) Propose(ctx context.Context, _ proposal.Request) (string, error) {
    <-ctx.Done()
    return "", ctx.Err()
}

// failingService rejects every proposal with a fixed error.
type failingService struct{ err error }

func (s failingService) Propose(context.Context, proposal.Request) (string, error) {
    return "", s.err
}

// collectObserver records every event it sees.
type collectObserver struct {
    mu     sync.Mutex
    events []NegotiationEvent
}

func (o *collectObserver) Observe(ev NegotiationEvent) {
    o.mu.Lock()
    defer o.mu.Unlock()
    o.events = append(o.events, ev)
}

func (o *collectObserver) kinds() []EventKind {
    o.mu.Lock()
    defer o.mu.Unlock()
    out := make([]EventKind, len(o.events))
    for i, ev := range o.events {
        out[i] = ev.Kind
    }
    return out
}

// fakeBids is an in-memory BidSource.
type fakeBids map[string]model.Bid

func (f fakeBids) GetByID(_ context.Context, id string) (model.Bid, error) {
    b, ok := f[id]
    if !ok {
        return model.Bid{}, ErrNotInSubMarket
    }
    return b, nil
}

func (f fakeBids) Delete(_ context.Context, id string) error {
    delete(f, id)
    return nil
}

// fakeTickets is an in-memory TicketSource.
type fakeTickets map[string]model.Ticket

func (f fakeTickets) GetByID(_ context.Context, id string) (model.Ticket, error) {
    t, ok := f[id]
    if !ok {
        return model.Ticket{}, ErrNotInSubMarket
    }
    return t, nil
}

func (f fakeTickets) Delete(_ context.Context, id string) error {
    delete(f, id)
    return nil
}

// memTxStore captures the last persisted transaction set.
type memTxStore struct {
    mu       sync.Mutex
    replaced int
    txs      []model.Transaction
}

func (s *memTxStore) ReplaceAll(_ context.Context, txs []model.Transaction) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.replaced++
    s.txs = txs
    return nil
}
