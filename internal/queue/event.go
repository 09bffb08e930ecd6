// Package queue defines message payloads exchanged over the message broker.
package queue

// SettledTransaction is the per-transaction slice of a settlement event.
type SettledTransaction struct {
	TransactionID string `json:"transaction_id"`
	BidID         string `json:"bid_id"`
	TicketID      string `json:"ticket_id"`
	BuyerID       string `json:"buyer_id"`
	SellerID      string `json:"seller_id"`
	Price         string `json:"price"`
	Quantity      int    `json:"quantity"`
}

// TransactionsSettledEvent is published when a settlement run completes.
// It contains enough information for downstream consumers to log, notify,
// or trigger analytics without querying the primary database.
type TransactionsSettledEvent struct {
	EventID      string               `json:"event_id"`
	GroupID      string               `json:"group_id"`
	Transactions []SettledTransaction `json:"transactions"`
	Dropped      int                  `json:"dropped"`
	SettledAt    string               `json:"settled_at"`
}
