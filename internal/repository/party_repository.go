// Package repository contains data access logic separated from HTTP handlers.
// This file defines repository methods for the marketplace parties:
// buyers and sellers. A party record is created alongside a user account
// at registration and referenced by bids, listings and transactions.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/ticket-marketplace/internal/model"
)

// ErrPartyNotFound is returned when a buyer or seller lookup yields no
// rows.
var ErrPartyNotFound = errors.New("party not found")

// PartyRepo encapsulates all database queries related to buyers and
// sellers.
type PartyRepo struct {
	db *sql.DB
}

// NewPartyRepo constructs a PartyRepo with the provided DB handle.
func NewPartyRepo(db *sql.DB) *PartyRepo {
	return &PartyRepo{db: db}
}

// CreateBuyer inserts a buyer record.
func (r *PartyRepo) CreateBuyer(ctx context.Context, b model.Buyer) error {
	_, err := r.db.ExecContext(ctx, "INSERT INTO buyers (id, name) VALUES (?, ?)", b.ID, b.Name)
	return err
}

// CreateSeller inserts a seller record.
func (r *PartyRepo) CreateSeller(ctx context.Context, s model.Seller) error {
	_, err := r.db.ExecContext(ctx, "INSERT INTO sellers (id, name) VALUES (?, ?)", s.ID, s.Name)
	return err
}

// GetBuyer fetches a buyer by id.
func (r *PartyRepo) GetBuyer(ctx context.Context, id string) (model.Buyer, error) {
	var b model.Buyer
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name FROM buyers WHERE id = ? LIMIT 1", id).Scan(&b.ID, &b.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Buyer{}, ErrPartyNotFound
	}
	return b, err
}

// GetSeller fetches a seller by id.
func (r *PartyRepo) GetSeller(ctx context.Context, id string) (model.Seller, error) {
	var s model.Seller
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name FROM sellers WHERE id = ? LIMIT 1", id).Scan(&s.ID, &s.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Seller{}, ErrPartyNotFound
	}
	return s, err
}
