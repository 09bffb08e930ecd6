// Package repository contains data access logic separated from HTTP handlers.
// This file defines repository methods for bids. A bid is a buyer's
// structured purchase request; the negotiation engine reads bids through
// this repository and never mutates them.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/iliyamo/ticket-marketplace/internal/model"
)

// ErrBidNotFound is returned when a bid cannot be found in the DB.
var ErrBidNotFound = errors.New("bid not found")

// BidRepo encapsulates all database queries related to bids. It depends
// on a sql.DB connection which should be configured elsewhere.
type BidRepo struct {
	db *sql.DB
}

// NewBidRepo constructs a BidRepo with the provided DB handle.
func NewBidRepo(db *sql.DB) *BidRepo {
	return &BidRepo{db: db}
}

const bidColumns = "id, buyer_id, event_id, quantity, max_price, price, allowed_groups, sensitivity, created_at"

// Create inserts a new bid. The caller assigns the ID before calling.
// AllowedGroups is stored as a JSON array; an empty set is stored as
// NULL and read back as no restriction.
func (r *BidRepo) Create(ctx context.Context, b *model.Bid) error {
	groups, err := encodeGroups(b.AllowedGroups)
	if err != nil {
		return err
	}
	const q = `INSERT INTO bids (id, buyer_id, event_id, quantity, max_price, price, allowed_groups, sensitivity)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q,
		b.ID, b.BuyerID, b.EventID, b.Quantity, b.MaxPrice, b.Price, groups, b.Sensitivity); err != nil {
		return err
	}
	const qSelect = "SELECT created_at FROM bids WHERE id = ?"
	return r.db.QueryRowContext(ctx, qSelect, b.ID).Scan(&b.CreatedAt)
}

// GetByID fetches a bid by its ID. It returns ErrBidNotFound if no row
// is found.
func (r *BidRepo) GetByID(ctx context.Context, id string) (model.Bid, error) {
	const q = "SELECT " + bidColumns + " FROM bids WHERE id = ? LIMIT 1"
	b, err := scanBid(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Bid{}, ErrBidNotFound
	}
	return b, err
}

// ListByEvent returns all bids placed for an event ordered by creation
// time. Group eligibility is not filtered here; the market layer applies
// the allowed-groups rule when it builds a submarket.
func (r *BidRepo) ListByEvent(ctx context.Context, eventID string) ([]model.Bid, error) {
	const q = "SELECT " + bidColumns + " FROM bids WHERE event_id = ? ORDER BY created_at, id"
	return r.queryBids(ctx, q, eventID)
}

// ListByBuyer returns all bids owned by a buyer ordered by creation time.
func (r *BidRepo) ListByBuyer(ctx context.Context, buyerID string) ([]model.Bid, error) {
	const q = "SELECT " + bidColumns + " FROM bids WHERE buyer_id = ? ORDER BY created_at, id"
	return r.queryBids(ctx, q, buyerID)
}

// Delete removes a bid. Missing rows are not an error; settlement may
// remove a bid that a retry attempts to remove again.
func (r *BidRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM bids WHERE id = ?", id)
	return err
}

// DeleteByIDAndBuyer removes a bid only if it belongs to the given
// buyer. It returns ErrBidNotFound when the bid does not exist and
// ErrForbidden when it is owned by someone else.
func (r *BidRepo) DeleteByIDAndBuyer(ctx context.Context, id, buyerID string) error {
	var owner string
	err := r.db.QueryRowContext(ctx, "SELECT buyer_id FROM bids WHERE id = ?", id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrBidNotFound
	}
	if err != nil {
		return err
	}
	if owner != buyerID {
		return ErrForbidden
	}
	_, err = r.db.ExecContext(ctx, "DELETE FROM bids WHERE id = ?", id)
	return err
}

func (r *BidRepo) queryBids(ctx context.Context, q string, args ...any) ([]model.Bid, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Bid
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanBid(row rowScanner) (model.Bid, error) {
	var (
		b      model.Bid
		groups sql.NullString
	)
	if err := row.Scan(&b.ID, &b.BuyerID, &b.EventID, &b.Quantity,
		&b.MaxPrice, &b.Price, &groups, &b.Sensitivity, &b.CreatedAt); err != nil {
		return model.Bid{}, err
	}
	if groups.Valid && groups.String != "" {
		if err := json.Unmarshal([]byte(groups.String), &b.AllowedGroups); err != nil {
			return model.Bid{}, err
		}
	}
	return b, nil
}

func encodeGroups(groups []string) (any, error) {
	if len(groups) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(groups)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}
