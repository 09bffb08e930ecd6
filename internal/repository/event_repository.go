// Package repository contains data access logic separated from HTTP handlers.
// This file defines repository methods for events. Events are reference
// data for the marketplace: they are browsed publicly and anchor the
// submarkets that negotiations run over.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/ticket-marketplace/internal/model"
)

// ErrEventNotFound is returned when an event cannot be found in the DB.
var ErrEventNotFound = errors.New("event not found")

// EventRepo encapsulates all database queries related to events.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo constructs an EventRepo with the provided DB handle.
func NewEventRepo(db *sql.DB) *EventRepo {
	return &EventRepo{db: db}
}

// Create inserts a new event. The caller assigns the ID before calling.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	const q = "INSERT INTO events (id, name, date, venue_id) VALUES (?, ?, ?, ?)"
	if _, err := r.db.ExecContext(ctx, q, e.ID, e.Name, e.Date, e.VenueID); err != nil {
		return err
	}
	const qSelect = "SELECT created_at FROM events WHERE id = ?"
	return r.db.QueryRowContext(ctx, qSelect, e.ID).Scan(&e.CreatedAt)
}

// GetByID fetches an event by its ID. It returns ErrEventNotFound if no
// row is found.
func (r *EventRepo) GetByID(ctx context.Context, id string) (model.Event, error) {
	const q = "SELECT id, name, date, venue_id, created_at FROM events WHERE id = ? LIMIT 1"
	var e model.Event
	err := r.db.QueryRowContext(ctx, q, id).Scan(&e.ID, &e.Name, &e.Date, &e.VenueID, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Event{}, ErrEventNotFound
	}
	return e, err
}

// ListAll returns all events ordered by date. It backs the public
// browsing endpoint.
func (r *EventRepo) ListAll(ctx context.Context) ([]model.Event, error) {
	const q = "SELECT id, name, date, venue_id, created_at FROM events ORDER BY date, id"
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.Date, &e.VenueID, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
