package market

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/ticket-marketplace/internal/model"
)

func TestNewSubMarketFiltersTickets(t *testing.T) {
    otherEvent := testTicket("tkt_other_event", "seller_9", 2, "100", "80")
    otherEvent.EventID = "evt_2"
    otherGroup := testTicket("tkt_balcony", "seller_9", 2, "100", "80")
    otherGroup.GroupID = "BALCONY"

    m := testMarket([]model.Ticket{
        testTicket("tkt_1", "seller_1", 2, "400", "350"),
        otherEvent,
        otherGroup,
    }, nil)

    require.Equal(t, 1, m.NumTickets())
    _, ok := m.Ticket("tkt_1")
    assert.True(t, ok)
    _, ok = m.Ticket("tkt_other_event")
    assert.False(t, ok)
    _, ok = m.Ticket("tkt_balcony")
    assert.False(t, ok)
}

func TestNewSubMarketFiltersBids(t *testing.T) {
    otherEvent := testBid("bid_other_event", "buyer_9", 1, "100", "120")
    otherEvent.EventID = "evt_2"

    m := testMarket(nil, []model.Bid{
        testBid("bid_any_group", "buyer_1", 1, "100", "120"),
        testBid("bid_floor", "buyer_2", 1, "100", "120", "FLOOR_PREMIUM"),
        testBid("bid_balcony_only", "buyer_3", 1, "100", "120", "BALCONY"),
        otherEvent,
    })

    require.Equal(t, 2, m.NumBids())
    _, ok := m.Bid("bid_any_group") // empty allowed set means any group
    assert.True(t, ok)
    _, ok = m.Bid("bid_floor")
    assert.True(t, ok)
    _, ok = m.Bid("bid_balcony_only")
    assert.False(t, ok)
    _, ok = m.Bid("bid_other_event")
    assert.False(t, ok)
}

func TestSubMarketReferenceValues(t *testing.T) {
    m := testMarket(nil, nil)

    assert.True(t, m.Reference().Equal(dec("450")))

    v, ok := m.ReferenceValue("BALCONY")
    require.True(t, ok)
    assert.True(t, v.Equal(dec("180")))

    _, ok = m.ReferenceValue("PIT")
    assert.False(t, ok)
}

func TestSubMarketSnapshotsInput(t *testing.T) {
    tickets := []model.Ticket{testTicket("tkt_1", "seller_1", 2, "400", "350")}
    bids := []model.Bid{testBid("bid_1", "buyer_1", 1, "300", "350")}
    m := testMarket(tickets, bids)

    tickets[0].ID = "mutated"
    bids[0].ID = "mutated"

    _, ok := m.Ticket("tkt_1")
    assert.True(t, ok)
    _, ok = m.Bid("bid_1")
    assert.True(t, ok)
}
