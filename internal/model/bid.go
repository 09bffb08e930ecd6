package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// Bid represents a buyer's structured purchase request for an event.
// A bid is immutable once created; the negotiation engine tracks
// running offers in its own state and never mutates the bid itself.
//
// Fields:
//  ID            – primary key ("bid_<uuid>").
//  BuyerID       – buyer who placed the bid.
//  EventID       – event the buyer wants tickets for.
//  Quantity      – number of tickets requested.
//  MaxPrice      – ceiling price per ticket; never revealed to the seller.
//  Price         – the buyer's current ask (opening offer) per ticket.
//  AllowedGroups – seating groups the buyer accepts; empty means any group.
//  Sensitivity   – price-sensitivity label used as hidden negotiation context.
//  CreatedAt     – creation timestamp.
type Bid struct {
    ID            string          // bids.id
    BuyerID       string          // bids.buyer_id
    EventID       string          // bids.event_id
    Quantity      int             // bids.quantity
    MaxPrice      decimal.Decimal // bids.max_price
    Price         decimal.Decimal // bids.price
    AllowedGroups []string        // bids.allowed_groups (JSON array)
    Sensitivity   string          // bids.sensitivity
    CreatedAt     time.Time       // bids.created_at
}

// AllowsGroup reports whether the bid is eligible for the given seating
// group. An empty AllowedGroups set places no restriction.
func (b Bid) AllowsGroup(groupID string) bool {
    if len(b.AllowedGroups) == 0 {
        return true
    }
    for _, g := range b.AllowedGroups {
        if g == groupID {
            return true
        }
    }
    return false
}
