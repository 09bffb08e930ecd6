package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// Ticket represents a seller's listing of one or more tickets for a
// specific event and seating group. Listings are immutable for the
// duration of a negotiation run.
//
// Fields:
//  ID            – primary key ("tkt_<uuid>").
//  SellerID      – seller who owns the listing.
//  EventID       – event the tickets belong to.
//  GroupID       – seating group within the venue.
//  Quantity      – number of tickets offered.
//  Price         – list (asking) price per ticket.
//  MinPrice      – floor price per ticket; never revealed to the buyer.
//  EventDate     – date of the event, denormalized for display.
//  Sensitivity   – price-sensitivity label used as hidden negotiation context.
//  ImmediateSale – seller accepts the first offer at or above MinPrice.
//  CreatedAt     – creation timestamp.
type Ticket struct {
    ID            string          // tickets.id
    SellerID      string          // tickets.seller_id
    EventID       string          // tickets.event_id
    GroupID       string          // tickets.group_id
    Quantity      int             // tickets.quantity
    Price         decimal.Decimal // tickets.price
    MinPrice      decimal.Decimal // tickets.min_price
    EventDate     time.Time       // tickets.event_date
    Sensitivity   string          // tickets.sensitivity
    ImmediateSale bool            // tickets.immediate_sale
    CreatedAt     time.Time       // tickets.created_at
}
