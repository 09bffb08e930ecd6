package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// Transaction is the persisted settlement record produced for each
// agreement that survives conflict resolution. Buyer and seller
// identities are resolved from the underlying bid and ticket at
// settlement time; within one resolution run each identity appears in
// at most one transaction.
//
// Fields:
//  ID           – primary key ("txn_<uuid>").
//  BidID        – bid the transaction settles.
//  TicketID     – ticket listing the transaction settles.
//  BuyerID      – buyer identity resolved from the bid.
//  SellerID     – seller identity resolved from the ticket.
//  Price        – agreed price per ticket.
//  Quantity     – agreed quantity.
//  Conversation – the negotiation's conversation log, stored as JSON.
//  CreatedAt    – settlement timestamp.
type Transaction struct {
    ID           string          // transactions.id
    BidID        string          // transactions.bid_id
    TicketID     string          // transactions.ticket_id
    BuyerID      string          // transactions.buyer_id
    SellerID     string          // transactions.seller_id
    Price        decimal.Decimal // transactions.price
    Quantity     int             // transactions.quantity
    Conversation string          // transactions.conversation (JSON array)
    CreatedAt    time.Time       // transactions.created_at
}
