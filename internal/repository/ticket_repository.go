// Package repository contains data access logic separated from HTTP handlers.
// This file defines repository methods for ticket listings. A listing is
// immutable for the duration of a negotiation run; only settlement may
// remove it.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/ticket-marketplace/internal/model"
)

// ErrTicketNotFound is returned when a listing cannot be found in the DB.
var ErrTicketNotFound = errors.New("ticket not found")

// TicketRepo encapsulates all database queries related to ticket
// listings.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo constructs a TicketRepo with the provided DB handle.
func NewTicketRepo(db *sql.DB) *TicketRepo {
	return &TicketRepo{db: db}
}

const ticketColumns = "id, seller_id, event_id, group_id, quantity, price, min_price, event_date, sensitivity, immediate_sale, created_at"

// Create inserts a new listing. The caller assigns the ID before
// calling; CreatedAt is populated from the inserted row.
func (r *TicketRepo) Create(ctx context.Context, t *model.Ticket) error {
	const q = `INSERT INTO tickets (id, seller_id, event_id, group_id, quantity, price, min_price, event_date, sensitivity, immediate_sale)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q,
		t.ID, t.SellerID, t.EventID, t.GroupID, t.Quantity,
		t.Price, t.MinPrice, t.EventDate, t.Sensitivity, t.ImmediateSale); err != nil {
		return err
	}
	const qSelect = "SELECT created_at FROM tickets WHERE id = ?"
	return r.db.QueryRowContext(ctx, qSelect, t.ID).Scan(&t.CreatedAt)
}

// GetByID fetches a listing by its ID. It returns ErrTicketNotFound if
// no row is found.
func (r *TicketRepo) GetByID(ctx context.Context, id string) (model.Ticket, error) {
	const q = "SELECT " + ticketColumns + " FROM tickets WHERE id = ? LIMIT 1"
	t, err := scanTicket(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Ticket{}, ErrTicketNotFound
	}
	return t, err
}

// ListByEventAndGroup returns the listings of one (event, seating group)
// slice ordered by creation time. The market layer snapshots this set
// when it builds a submarket.
func (r *TicketRepo) ListByEventAndGroup(ctx context.Context, eventID, groupID string) ([]model.Ticket, error) {
	const q = "SELECT " + ticketColumns + " FROM tickets WHERE event_id = ? AND group_id = ? ORDER BY created_at, id"
	return r.queryTickets(ctx, q, eventID, groupID)
}

// ListByEvent returns all listings for an event across seating groups.
func (r *TicketRepo) ListByEvent(ctx context.Context, eventID string) ([]model.Ticket, error) {
	const q = "SELECT " + ticketColumns + " FROM tickets WHERE event_id = ? ORDER BY group_id, created_at, id"
	return r.queryTickets(ctx, q, eventID)
}

// ListBySeller returns all listings owned by a seller ordered by
// creation time.
func (r *TicketRepo) ListBySeller(ctx context.Context, sellerID string) ([]model.Ticket, error) {
	const q = "SELECT " + ticketColumns + " FROM tickets WHERE seller_id = ? ORDER BY created_at, id"
	return r.queryTickets(ctx, q, sellerID)
}

// Delete removes a listing. Missing rows are not an error.
func (r *TicketRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM tickets WHERE id = ?", id)
	return err
}

// DeleteByIDAndSeller removes a listing only if it belongs to the given
// seller. It returns ErrTicketNotFound when the listing does not exist
// and ErrForbidden when it is owned by someone else.
func (r *TicketRepo) DeleteByIDAndSeller(ctx context.Context, id, sellerID string) error {
	var owner string
	err := r.db.QueryRowContext(ctx, "SELECT seller_id FROM tickets WHERE id = ?", id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTicketNotFound
	}
	if err != nil {
		return err
	}
	if owner != sellerID {
		return ErrForbidden
	}
	_, err = r.db.ExecContext(ctx, "DELETE FROM tickets WHERE id = ?", id)
	return err
}

func (r *TicketRepo) queryTickets(ctx context.Context, q string, args ...any) ([]model.Ticket, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTicket(row rowScanner) (model.Ticket, error) {
	var t model.Ticket
	if err := row.Scan(&t.ID, &t.SellerID, &t.EventID, &t.GroupID, &t.Quantity,
		&t.Price, &t.MinPrice, &t.EventDate, &t.Sensitivity, &t.ImmediateSale, &t.CreatedAt); err != nil {
		return model.Ticket{}, err
	}
	return t, nil
}
