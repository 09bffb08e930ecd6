// Package repository contains data access logic separated from HTTP handlers.
// This file defines repository methods for venues and their seating
// groups. A venue's seating groups carry the reference values that the
// negotiation engine passes to the proposal service as benchmarks.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/ticket-marketplace/internal/model"
)

// ErrVenueNotFound is returned when a venue cannot be found in the DB.
var ErrVenueNotFound = errors.New("venue not found")

// VenueRepo encapsulates all database queries related to venues and
// seating groups.
type VenueRepo struct {
	db *sql.DB
}

// NewVenueRepo constructs a VenueRepo with the provided DB handle.
func NewVenueRepo(db *sql.DB) *VenueRepo {
	return &VenueRepo{db: db}
}

// Create inserts a venue together with its seating groups in one
// transaction.
func (r *VenueRepo) Create(ctx context.Context, v *model.Venue) error {
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
		"INSERT INTO venues (id, name, city) VALUES (?, ?, ?)",
		v.ID, v.Name, v.City); err != nil {
		return err
	}
	for _, g := range v.SeatingGroups {
		if _, err = tx.ExecContext(ctx,
			"INSERT INTO seating_groups (venue_id, group_id, name, reference_value) VALUES (?, ?, ?, ?)",
			v.ID, g.GroupID, g.Name, g.ReferenceValue); err != nil {
			return err
		}
	}
	return nil
}

// GetByID fetches a venue and its seating groups. It returns
// ErrVenueNotFound if no venue row is found; a venue without seating
// groups is returned with an empty group set.
func (r *VenueRepo) GetByID(ctx context.Context, id string) (model.Venue, error) {
	const q = "SELECT id, name, city FROM venues WHERE id = ? LIMIT 1"
	var v model.Venue
	err := r.db.QueryRowContext(ctx, q, id).Scan(&v.ID, &v.Name, &v.City)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Venue{}, ErrVenueNotFound
	}
	if err != nil {
		return model.Venue{}, err
	}
	v.SeatingGroups, err = r.groupsOf(ctx, id)
	return v, err
}

func (r *VenueRepo) groupsOf(ctx context.Context, venueID string) ([]model.SeatingGroup, error) {
	const q = `SELECT group_id, name, reference_value
	           FROM seating_groups WHERE venue_id = ? ORDER BY group_id`
	rows, err := r.db.QueryContext(ctx, q, venueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.SeatingGroup
	for rows.Next() {
		var g model.SeatingGroup
		if err := rows.Scan(&g.GroupID, &g.Name, &g.ReferenceValue); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
