// Package repository contains data access logic separated from HTTP handlers.
// This file defines repository methods for candidate pairs: the
// (bid, ticket) combinations queued for the next negotiation run of an
// event's seating group. Pairs are replaced wholesale per run rather
// than edited row by row.
package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/ticket-marketplace/internal/market"
)

// PairRepo encapsulates all database queries related to candidate
// pairs.
type PairRepo struct {
	db *sql.DB
}

// NewPairRepo constructs a PairRepo with the provided DB handle.
func NewPairRepo(db *sql.DB) *PairRepo {
	return &PairRepo{db: db}
}

// ReplaceForGroup swaps the stored candidate pairs of one
// (event, seating group) slice for the given set inside a single
// transaction. Passing an empty set clears the slice.
func (r *PairRepo) ReplaceForGroup(ctx context.Context, eventID, groupID string, pairs []market.CandidatePair) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()
	if _, err = tx.ExecContext(ctx,
		"DELETE FROM candidate_pairs WHERE event_id = ? AND group_id = ?",
		eventID, groupID); err != nil {
		return err
	}
	if len(pairs) == 0 {
		return nil
	}
	query := "INSERT INTO candidate_pairs (event_id, group_id, bid_id, ticket_id) VALUES "
	args := make([]any, 0, len(pairs)*4)
	for i, p := range pairs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, eventID, groupID, p.BidID, p.TicketID)
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}

// ListForGroup returns the stored candidate pairs of one
// (event, seating group) slice in insertion order.
func (r *PairRepo) ListForGroup(ctx context.Context, eventID, groupID string) ([]market.CandidatePair, error) {
	const q = `SELECT bid_id, ticket_id FROM candidate_pairs
	           WHERE event_id = ? AND group_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, eventID, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []market.CandidatePair
	for rows.Next() {
		var p market.CandidatePair
		if err := rows.Scan(&p.BidID, &p.TicketID); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
