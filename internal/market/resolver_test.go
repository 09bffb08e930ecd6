package market

import (
    "context"
    "encoding/json"
    "strings"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "go.uber.org/zap/zaptest"
)

func testResolver(t *testing.T, bids fakeBids, tickets fakeTickets, store *memTxStore) *Resolver {
    t.Helper()
    return &Resolver{
        Bids:         bids,
        Tickets:      tickets,
        Transactions: store,
        Logger:       zaptest.NewLogger(t),
    }
}

func agreement(bidID, ticketID, price string, qty int) Agreement {
    return Agreement{BidID: bidID, TicketID: ticketID, Price: dec(price), Quantity: qty}
}

func TestResolveSharedSellerKeepsHigherPrice(t *testing.T) {
    bids := fakeBids{
        "bid_1": testBid("bid_1", "buyer_1", 2, "450", "500"),
        "bid_2": testBid("bid_2", "buyer_2", 2, "500", "550"),
    }
    tickets := fakeTickets{
        "tkt_1": testTicket("tkt_1", "seller_1", 2, "450", "400"),
    }
    r := testResolver(t, bids, tickets, &memTxStore{})

    kept, dropped, err := r.Resolve(context.Background(), []Agreement{
        agreement("bid_1", "tkt_1", "450", 2),
        agreement("bid_2", "tkt_1", "500", 2),
    })
    require.NoError(t, err)
    require.Len(t, kept, 1)
    require.Len(t, dropped, 1)
    assert.Equal(t, "bid_2", kept[0].BidID)
    assert.Equal(t, "bid_1", dropped[0].BidID)
}

func TestResolveNoConflictsPassesThrough(t *testing.T) {
    bids := fakeBids{
        "bid_1": testBid("bid_1", "buyer_1", 2, "450", "500"),
        "bid_2": testBid("bid_2", "buyer_2", 2, "300", "350"),
    }
    tickets := fakeTickets{
        "tkt_1": testTicket("tkt_1", "seller_1", 2, "450", "400"),
        "tkt_2": testTicket("tkt_2", "seller_2", 2, "300", "250"),
    }
    r := testResolver(t, bids, tickets, &memTxStore{})

    in := []Agreement{
        agreement("bid_2", "tkt_2", "300", 2), // lower price first on purpose
        agreement("bid_1", "tkt_1", "450", 2),
    }
    kept, dropped, err := r.Resolve(context.Background(), in)
    require.NoError(t, err)
    assert.Empty(t, dropped)
    require.Len(t, kept, 2)
    // Without conflicts the input order is preserved, no reordering.
    assert.Equal(t, "bid_2", kept[0].BidID)
    assert.Equal(t, "bid_1", kept[1].BidID)
}

func TestResolveEqualPricesBreakTiesByInputOrder(t *testing.T) {
    bids := fakeBids{
        "bid_1": testBid("bid_1", "buyer_1", 2, "400", "450"),
        "bid_2": testBid("bid_2", "buyer_2", 2, "400", "450"),
    }
    tickets := fakeTickets{
        "tkt_1": testTicket("tkt_1", "seller_1", 2, "400", "350"),
    }
    r := testResolver(t, bids, tickets, &memTxStore{})

    kept, dropped, err := r.Resolve(context.Background(), []Agreement{
        agreement("bid_1", "tkt_1", "400", 2),
        agreement("bid_2", "tkt_1", "400", 2),
    })
    require.NoError(t, err)
    require.Len(t, kept, 1)
    require.Len(t, dropped, 1)
    assert.Equal(t, "bid_1", kept[0].BidID)
}

func TestResolveKeptSetIsExclusive(t *testing.T) {
    bids := fakeBids{
        "bid_1": testBid("bid_1", "buyer_1", 1, "500", "550"),
        "bid_2": testBid("bid_2", "buyer_1", 1, "480", "520"), // same buyer as bid_1
        "bid_3": testBid("bid_3", "buyer_3", 1, "460", "500"),
    }
    tickets := fakeTickets{
        "tkt_1": testTicket("tkt_1", "seller_1", 1, "500", "400"),
        "tkt_2": testTicket("tkt_2", "seller_2", 1, "480", "400"),
        "tkt_3": testTicket("tkt_3", "seller_1", 1, "460", "400"), // same seller as tkt_1
    }
    r := testResolver(t, bids, tickets, &memTxStore{})

    kept, dropped, err := r.Resolve(context.Background(), []Agreement{
        agreement("bid_1", "tkt_1", "500", 1),
        agreement("bid_2", "tkt_2", "480", 1),
        agreement("bid_3", "tkt_3", "460", 1),
    })
    require.NoError(t, err)

    buyers := make(map[string]bool)
    sellers := make(map[string]bool)
    for _, a := range kept {
        b, _ := bids.GetByID(context.Background(), a.BidID)
        tk, _ := tickets.GetByID(context.Background(), a.TicketID)
        assert.False(t, buyers[b.BuyerID], "buyer %s claimed twice", b.BuyerID)
        assert.False(t, sellers[tk.SellerID], "seller %s claimed twice", tk.SellerID)
        buyers[b.BuyerID] = true
        sellers[tk.SellerID] = true
    }
    assert.Len(t, kept, 1) // bid_1 takes buyer_1 and seller_1, blocking the rest
    assert.Len(t, dropped, 2)
}

func TestResolveIsIdempotent(t *testing.T) {
    bids := fakeBids{
        "bid_1": testBid("bid_1", "buyer_1", 2, "450", "500"),
        "bid_2": testBid("bid_2", "buyer_2", 2, "500", "550"),
    }
    tickets := fakeTickets{
        "tkt_1": testTicket("tkt_1", "seller_1", 2, "450", "400"),
        "tkt_2": testTicket("tkt_2", "seller_2", 2, "500", "450"),
    }
    r := testResolver(t, bids, tickets, &memTxStore{})

    kept, _, err := r.Resolve(context.Background(), []Agreement{
        agreement("bid_1", "tkt_1", "450", 2),
        agreement("bid_2", "tkt_2", "500", 2),
        agreement("bid_2", "tkt_1", "480", 2),
    })
    require.NoError(t, err)

    again, dropped, err := r.Resolve(context.Background(), kept)
    require.NoError(t, err)
    assert.Empty(t, dropped)
    assert.Equal(t, kept, again)
}

func TestResolveUnknownBidFails(t *testing.T) {
    r := testResolver(t, fakeBids{}, fakeTickets{}, &memTxStore{})
    _, _, err := r.Resolve(context.Background(), []Agreement{
        agreement("bid_ghost", "tkt_1", "100", 1),
    })
    assert.ErrorIs(t, err, ErrNotInSubMarket)
}

func TestSettleMaterializesTransactions(t *testing.T) {
    bids := fakeBids{
        "bid_1": testBid("bid_1", "buyer_1", 2, "450", "500"),
    }
    tickets := fakeTickets{
        "tkt_1": testTicket("tkt_1", "seller_1", 2, "450", "400"),
    }
    store := &memTxStore{}
    r := testResolver(t, bids, tickets, store)

    ag := agreement("bid_1", "tkt_1", "450", 2)
    ag.Conversation = []Entry{{Round: 1, Role: "buyer", Text: "I can do 450"}}

    txs, droppedCount, err := r.Settle(context.Background(), []Agreement{ag})
    require.NoError(t, err)
    assert.Zero(t, droppedCount)
    require.Len(t, txs, 1)

    tx := txs[0]
    assert.True(t, strings.HasPrefix(tx.ID, "txn_"))
    assert.Equal(t, "bid_1", tx.BidID)
    assert.Equal(t, "tkt_1", tx.TicketID)
    assert.Equal(t, "buyer_1", tx.BuyerID)
    assert.Equal(t, "seller_1", tx.SellerID)
    assert.True(t, tx.Price.Equal(dec("450")))
    assert.Equal(t, 2, tx.Quantity)
    assert.False(t, tx.CreatedAt.IsZero())

    var conv []Entry
    require.NoError(t, json.Unmarshal([]byte(tx.Conversation), &conv))
    require.Len(t, conv, 1)
    assert.Equal(t, "I can do 450", conv[0].Text)

    assert.Equal(t, 1, store.replaced)
    require.Len(t, store.txs, 1)
    assert.Equal(t, tx.ID, store.txs[0].ID)

    // Inventory untouched unless removal is enabled.
    _, err = bids.GetByID(context.Background(), "bid_1")
    assert.NoError(t, err)
    _, err = tickets.GetByID(context.Background(), "tkt_1")
    assert.NoError(t, err)
}

func TestSettleReplacesPreviousTransactionSet(t *testing.T) {
    bids := fakeBids{
        "bid_1": testBid("bid_1", "buyer_1", 2, "450", "500"),
        "bid_2": testBid("bid_2", "buyer_2", 2, "500", "550"),
    }
    tickets := fakeTickets{
        "tkt_1": testTicket("tkt_1", "seller_1", 2, "450", "400"),
    }
    store := &memTxStore{}
    r := testResolver(t, bids, tickets, store)

    txs, droppedCount, err := r.Settle(context.Background(), []Agreement{
        agreement("bid_1", "tkt_1", "450", 2),
        agreement("bid_2", "tkt_1", "500", 2),
    })
    require.NoError(t, err)
    assert.Equal(t, 1, droppedCount)
    require.Len(t, txs, 1)
    assert.Equal(t, "bid_2", txs[0].BidID)
    assert.Equal(t, 1, store.replaced)
}

func TestSettleRemovesInventoryWhenEnabled(t *testing.T) {
    bids := fakeBids{
        "bid_1": testBid("bid_1", "buyer_1", 2, "450", "500"),
        "bid_2": testBid("bid_2", "buyer_2", 2, "100", "150"), // not settled
    }
    tickets := fakeTickets{
        "tkt_1": testTicket("tkt_1", "seller_1", 2, "450", "400"),
    }
    store := &memTxStore{}
    r := testResolver(t, bids, tickets, store)
    r.RemoveInventory = true

    _, _, err := r.Settle(context.Background(), []Agreement{
        agreement("bid_1", "tkt_1", "450", 2),
    })
    require.NoError(t, err)

    _, err = bids.GetByID(context.Background(), "bid_1")
    assert.Error(t, err)
    _, err = tickets.GetByID(context.Background(), "tkt_1")
    assert.Error(t, err)
    _, err = bids.GetByID(context.Background(), "bid_2")
    assert.NoError(t, err)
}

func TestSettleEmptyAgreements(t *testing.T) {
    store := &memTxStore{}
    r := testResolver(t, fakeBids{}, fakeTickets{}, store)

    txs, droppedCount, err := r.Settle(context.Background(), nil)
    require.NoError(t, err)
    assert.Empty(t, txs)
    assert.Zero(t, droppedCount)
    assert.Equal(t, 1, store.replaced)
}
