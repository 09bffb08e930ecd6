package market

import (
    "context"
    "encoding/json"
    "fmt"
    "sort"
    "time"

    "github.com/google/uuid"
    "go.uber.org/zap"

    "github.com/iliyamo/ticket-marketplace/internal/model"
)

// BidSource resolves bids by id and removes consumed ones. The
// repository layer satisfies it; tests use map-backed fakes.
type BidSource interface {
    GetByID(ctx context.Context, id string) (model.Bid, error)
    Delete(ctx context.Context, id string) error
}

// TicketSource resolves ticket listings by id and removes consumed
// ones.
type TicketSource interface {
    GetByID(ctx context.Context, id string) (model.Ticket, error)
    Delete(ctx context.Context, id string) error
}

// TransactionStore persists the settled transaction set, replacing any
// previously persisted set atomically.
type TransactionStore interface {
    ReplaceAll(ctx context.Context, txs []model.Transaction) error
}

// Resolver turns the agreements of one orchestration run into a
// conflict-free transaction set. Two agreements conflict when they
// share a buyer identity or a seller identity; identities come from
// the underlying bid and ticket records, not from the agreement's
// surface ids. Conflicts are resolved with a greedy price-descending
// heuristic, not an optimal matching.
//
// RemoveInventory controls whether consumed bids and tickets are
// deleted after settlement. The reference behaviour leaves inventory
// untouched, so the flag defaults to false and is surfaced as
// configuration rather than fixed policy.
type Resolver struct {
    Bids            BidSource
    Tickets         TicketSource
    Transactions    TransactionStore
    Logger          *zap.Logger
    RemoveInventory bool
}

// identity is the (buyer, seller) pair an agreement claims.
type identity struct {
    buyerID  string
    sellerID string
}

// Resolve returns the conflict-free subset of the given agreements
// plus the agreements that were dropped. When no conflicts exist the
// input is returned unchanged. Otherwise agreements are ordered by
// price descending (stable, so input order breaks ties) and accepted
// greedily while their buyer and seller identities are unclaimed.
// Running Resolve on its own output is a no-op.
func (r *Resolver) Resolve(ctx context.Context, agreements []Agreement) (kept, dropped []Agreement, err error) {
    ids := make([]identity, len(agreements))
    for i, a := range agreements {
        ids[i], err = r.identityOf(ctx, a)
        if err != nil {
            return nil, nil, err
        }
    }

    if !hasConflicts(ids) {
        return append([]Agreement(nil), agreements...), nil, nil
    }

    // Sort indices rather than agreements so each kept/dropped entry
    // can be matched back to its identity.
    order := make([]int, len(agreements))
    for i := range order {
        order[i] = i
    }
    sort.SliceStable(order, func(i, j int) bool {
        return agreements[order[i]].Price.GreaterThan(agreements[order[j]].Price)
    })

    claimedBuyers := make(map[string]bool)
    claimedSellers := make(map[string]bool)
    for _, idx := range order {
        id := ids[idx]
        if claimedBuyers[id.buyerID] || claimedSellers[id.sellerID] {
            dropped = append(dropped, agreements[idx])
            continue
        }
        claimedBuyers[id.buyerID] = true
        claimedSellers[id.sellerID] = true
        kept = append(kept, agreements[idx])
    }
    return kept, dropped, nil
}

// Settle resolves conflicts, materializes a Transaction per surviving
// agreement and replaces the persisted transaction set. It returns the
// transactions together with the number of dropped agreements. When
// RemoveInventory is set, consumed bids and tickets are deleted after
// the transaction set is persisted.
func (r *Resolver) Settle(ctx context.Context, agreements []Agreement) ([]model.Transaction, int, error) {
    kept, dropped, err := r.Resolve(ctx, agreements)
    if err != nil {
        return nil, 0, err
    }
    if len(dropped) > 0 && r.Logger != nil {
        r.Logger.Info("dropped conflicting agreements",
            zap.Int("kept", len(kept)),
            zap.Int("dropped", len(dropped)))
    }

    now := time.Now().UTC()
    txs := make([]model.Transaction, 0, len(kept))
    for _, a := range kept {
        tx, err := r.materialize(ctx, a, now)
        if err != nil {
            return nil, 0, err
        }
        txs = append(txs, tx)
    }
    if err := r.Transactions.ReplaceAll(ctx, txs); err != nil {
        return nil, 0, fmt.Errorf("persist transactions: %w", err)
    }

    if r.RemoveInventory {
        for _, a := range kept {
            if err := r.Bids.Delete(ctx, a.BidID); err != nil && r.Logger != nil {
                r.Logger.Warn("remove consumed bid failed", zap.String("bid_id", a.BidID), zap.Error(err))
            }
            if err := r.Tickets.Delete(ctx, a.TicketID); err != nil && r.Logger != nil {
                r.Logger.Warn("remove consumed ticket failed", zap.String("ticket_id", a.TicketID), zap.Error(err))
            }
        }
    }
    return txs, len(dropped), nil
}

func (r *Resolver) identityOf(ctx context.Context, a Agreement) (identity, error) {
    bid, err := r.Bids.GetByID(ctx, a.BidID)
    if err != nil {
        return identity{}, fmt.Errorf("resolve buyer of bid %s: %w", a.BidID, err)
    }
    ticket, err := r.Tickets.GetByID(ctx, a.TicketID)
    if err != nil {
        return identity{}, fmt.Errorf("resolve seller of ticket %s: %w", a.TicketID, err)
    }
    return identity{buyerID: bid.BuyerID, sellerID: ticket.SellerID}, nil
}

func (r *Resolver) materialize(ctx context.Context, a Agreement, now time.Time) (model.Transaction, error) {
    id, err := r.identityOf(ctx, a)
    if err != nil {
        return model.Transaction{}, err
    }
    conv, err := json.Marshal(a.Conversation)
    if err != nil {
        return model.Transaction{}, fmt.Errorf("encode conversation: %w", err)
    }
    return model.Transaction{
        ID:           "txn_" + uuid.NewString(),
        BidID:        a.BidID,
        TicketID:     a.TicketID,
        BuyerID:      id.buyerID,
        SellerID:     id.sellerID,
        Price:        a.Price,
        Quantity:     a.Quantity,
        Conversation: string(conv),
        CreatedAt:    now,
    }, nil
}

func hasConflicts(ids []identity) bool {
    buyers := make(map[string]bool, len(ids))
    sellers := make(map[string]bool, len(ids))
    for _, id := range ids {
        if buyers[id.buyerID] || sellers[id.sellerID] {
            return true
        }
        buyers[id.buyerID] = true
        sellers[id.sellerID] = true
    }
    return false
}
