package market

import (
    "github.com/shopspring/decimal"

    "github.com/iliyamo/ticket-marketplace/internal/model"
)

// SubMarket is a read-only, filtered view of one (event, seating group)
// slice of the marketplace. It owns an immutable snapshot of the
// tickets and bids that were eligible at load time and exposes the
// venue's per-group reference values as negotiation context. A
// submarket is rebuilt for every orchestration run and is never
// mutated afterwards, so it is safe to share across concurrent
// negotiations.
type SubMarket struct {
    EventID   string
    EventName string
    GroupID   string

    tickets   []model.Ticket
    bids      []model.Bid
    byTicket  map[string]model.Ticket
    byBid     map[string]model.Bid
    reference map[string]decimal.Decimal
}

// NewSubMarket filters the given tickets and bids down to the (event,
// group) pair and snapshots them. A ticket is eligible when its event
// and group both match; a bid is eligible when its event matches and
// its allowed-groups set is empty or contains the group.
func NewSubMarket(event model.Event, venue model.Venue, groupID string, tickets []model.Ticket, bids []model.Bid) *SubMarket {
    m := &SubMarket{
        EventID:   event.ID,
        EventName: event.Name,
        GroupID:   groupID,
        byTicket:  make(map[string]model.Ticket),
        byBid:     make(map[string]model.Bid),
        reference: make(map[string]decimal.Decimal, len(venue.SeatingGroups)),
    }
    for _, g := range venue.SeatingGroups {
        m.reference[g.GroupID] = g.ReferenceValue
    }
    for _, t := range tickets {
        if t.EventID == event.ID && t.GroupID == groupID {
            m.tickets = append(m.tickets, t)
            m.byTicket[t.ID] = t
        }
    }
    for _, b := range bids {
        if b.EventID == event.ID && b.AllowsGroup(groupID) {
            m.bids = append(m.bids, b)
            m.byBid[b.ID] = b
        }
    }
    return m
}

// Tickets returns the snapshot of eligible listings.
func (m *SubMarket) Tickets() []model.Ticket { return m.tickets }

// Bids returns the snapshot of eligible bids.
func (m *SubMarket) Bids() []model.Bid { return m.bids }

// NumTickets returns the number of listings in the submarket.
func (m *SubMarket) NumTickets() int { return len(m.tickets) }

// NumBids returns the number of bids in the submarket.
func (m *SubMarket) NumBids() int { return len(m.bids) }

// Ticket looks up a listing by id within the snapshot.
func (m *SubMarket) Ticket(id string) (model.Ticket, bool) {
    t, ok := m.byTicket[id]
    return t, ok
}

// Bid looks up a bid by id within the snapshot.
func (m *SubMarket) Bid(id string) (model.Bid, bool) {
    b, ok := m.byBid[id]
    return b, ok
}

// ReferenceValue returns the venue's benchmark value for a seating
// group. It is context data for the proposal service only and does not
// influence negotiation logic.
func (m *SubMarket) ReferenceValue(groupID string) (decimal.Decimal, bool) {
    v, ok := m.reference[groupID]
    return v, ok
}

// Reference returns the benchmark value of this submarket's own group,
// or zero when the venue does not define one.
func (m *SubMarket) Reference() decimal.Decimal {
    return m.reference[m.GroupID]
}
