package model

// Buyer identifies a purchasing party in the marketplace. Buyers own
// bids; the settlement step resolves a transaction's buyer identity
// through the bid's BuyerID.
type Buyer struct {
    ID   string // buyers.id
    Name string // buyers.name
}

// Seller identifies a selling party in the marketplace. Sellers own
// ticket listings.
type Seller struct {
    ID   string // sellers.id
    Name string // sellers.name
}
