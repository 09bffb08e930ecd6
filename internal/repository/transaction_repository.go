// Package repository contains data access logic separated from HTTP handlers.
// This file defines repository methods for settled transactions. A
// settlement run replaces the persisted transaction set atomically, so
// readers always observe the outcome of exactly one run.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/ticket-marketplace/internal/model"
)

// ErrTransactionNotFound is returned when a transaction cannot be found
// in the DB.
var ErrTransactionNotFound = errors.New("transaction not found")

// TransactionRepo encapsulates all database queries related to settled
// transactions.
type TransactionRepo struct {
	db *sql.DB
}

// NewTransactionRepo constructs a TransactionRepo with the provided DB
// handle.
func NewTransactionRepo(db *sql.DB) *TransactionRepo {
	return &TransactionRepo{db: db}
}

const txColumns = "id, bid_id, ticket_id, buyer_id, seller_id, price, quantity, conversation, created_at"

// ReplaceAll swaps the persisted transaction set for the given one in a
// single database transaction: the previous set is deleted and the new
// rows are inserted with one bulk statement.
func (r *TransactionRepo) ReplaceAll(ctx context.Context, txs []model.Transaction) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = dbTx.Rollback()
		} else {
			_ = dbTx.Commit()
		}
	}()
	if _, err = dbTx.ExecContext(ctx, "DELETE FROM transactions"); err != nil {
		return err
	}
	if len(txs) == 0 {
		return nil
	}
	query := "INSERT INTO transactions (" + txColumns + ") VALUES "
	args := make([]any, 0, len(txs)*9)
	for i, t := range txs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?, ?, ?)"
		args = append(args, t.ID, t.BidID, t.TicketID, t.BuyerID, t.SellerID,
			t.Price, t.Quantity, t.Conversation, t.CreatedAt)
	}
	_, err = dbTx.ExecContext(ctx, query, args...)
	return err
}

// GetByID fetches a transaction by its ID. It returns
// ErrTransactionNotFound if no row is found.
func (r *TransactionRepo) GetByID(ctx context.Context, id string) (model.Transaction, error) {
	const q = "SELECT " + txColumns + " FROM transactions WHERE id = ? LIMIT 1"
	t, err := scanTransaction(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transaction{}, ErrTransactionNotFound
	}
	return t, err
}

// ListByParty returns the transactions a buyer or seller took part in.
func (r *TransactionRepo) ListByParty(ctx context.Context, partyID string) ([]model.Transaction, error) {
	const q = "SELECT " + txColumns + ` FROM transactions
	           WHERE buyer_id = ? OR seller_id = ? ORDER BY created_at, id`
	return r.queryTransactions(ctx, q, partyID, partyID)
}

func (r *TransactionRepo) queryTransactions(ctx context.Context, q string, args ...any) ([]model.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTransaction(row rowScanner) (model.Transaction, error) {
	var t model.Transaction
	if err := row.Scan(&t.ID, &t.BidID, &t.TicketID, &t.BuyerID, &t.SellerID,
		&t.Price, &t.Quantity, &t.Conversation, &t.CreatedAt); err != nil {
		return model.Transaction{}, err
	}
	return t, nil
}
