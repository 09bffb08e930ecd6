package market

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "go.uber.org/zap/zaptest"

    "github.com/iliyamo/ticket-marketplace/internal/model"
)

func TestOrchestratorRun(t *testing.T) {
    tickets := []model.Ticket{
        testTicket("tkt_1", "seller_1", 2, "400", "350"),
        testTicket("tkt_2", "seller_2", 4, "900", "800"),
    }
    bids := []model.Bid{
        testBid("bid_1", "buyer_1", 2, "450", "500"), // fast path against tkt_1
        testBid("bid_2", "buyer_2", 1, "100", "120"), // will stall against tkt_2
    }
    m := testMarket(tickets, bids)

    pairs := []CandidatePair{
        {BidID: "bid_1", TicketID: "tkt_1"},
        {BidID: "bid_2", TicketID: "tkt_2"},
        {BidID: "bid_missing", TicketID: "tkt_1"},
        {BidID: "bid_1", TicketID: "tkt_missing"},
    }

    o := NewOrchestrator(staticService{buyer: "100", seller: "900"},
        zaptest.NewLogger(t), Options{MaxRounds: 3})
    outcomes := o.Run(context.Background(), m, pairs)

    require.Len(t, outcomes, len(pairs))
    // Slots stay aligned with the requested pairs.
    for i, out := range outcomes {
        assert.Equal(t, pairs[i], out.Pair)
    }

    assert.Equal(t, OutcomeAgreed, outcomes[0].Status)
    require.NotNil(t, outcomes[0].Agreement)
    assert.True(t, outcomes[0].Agreement.Price.Equal(dec("400")))

    assert.Equal(t, OutcomeImpasse, outcomes[1].Status)
    assert.Nil(t, outcomes[1].Agreement)
    assert.NoError(t, outcomes[1].Err)

    for _, i := range []int{2, 3} {
        assert.Equal(t, OutcomeSkipped, outcomes[i].Status)
        assert.ErrorIs(t, outcomes[i].Err, ErrNotInSubMarket)
    }
}

func TestOrchestratorIsolatesFailures(t *testing.T) {
    tickets := []model.Ticket{
        testTicket("tkt_1", "seller_1", 2, "400", "350"),
        testTicket("tkt_2", "seller_2", 2, "400", "350"),
    }
    bids := []model.Bid{
        testBid("bid_1", "buyer_1", 2, "450", "500"),
        testBid("bid_2", "buyer_2", 2, "100", "150"),
    }
    m := testMarket(tickets, bids)

    // bid_1/tkt_1 settles on the fast path before any service call;
    // bid_2/tkt_2 needs the service and fails.
    svc := failingService{err: errors.New("service down")}
    o := NewOrchestrator(svc, zaptest.NewLogger(t), Options{MaxRounds: 3})

    outcomes := o.Run(context.Background(), m, []CandidatePair{
        {BidID: "bid_1", TicketID: "tkt_1"},
        {BidID: "bid_2", TicketID: "tkt_2"},
    })

    assert.Equal(t, OutcomeAgreed, outcomes[0].Status)
    assert.Equal(t, OutcomeFailed, outcomes[1].Status)
    assert.Error(t, outcomes[1].Err)
}

func TestAgreements(t *testing.T) {
    a := &Agreement{BidID: "bid_1", TicketID: "tkt_1", Price: dec("400"), Quantity: 1}
    outcomes := []Outcome{
        {Status: OutcomeAgreed, Agreement: a},
        {Status: OutcomeImpasse},
        {Status: OutcomeSkipped, Err: ErrNotInSubMarket},
    }
    got := Agreements(outcomes)
    require.Len(t, got, 1)
    assert.Equal(t, "bid_1", got[0].BidID)
}

func TestOrchestratorManyConcurrentPairs(t *testing.T) {
    // One bid and ticket per pair so the batch holds no shared mutable
    // state; all pairs settle on the fast path.
    var (
        tickets []model.Ticket
        bids    []model.Bid
        pairs   []CandidatePair
    )
    for i := 0; i < 50; i++ {
        id := string(rune('a' + i%26))
        bidID := "bid_" + id + string(rune('0'+i/26))
        tktID := "tkt_" + id + string(rune('0'+i/26))
        bids = append(bids, testBid(bidID, "buyer_"+bidID, 1, "450", "500"))
        tickets = append(tickets, testTicket(tktID, "seller_"+tktID, 1, "400", "350"))
        pairs = append(pairs, CandidatePair{BidID: bidID, TicketID: tktID})
    }
    m := testMarket(tickets, bids)

    o := NewOrchestrator(staticService{}, zaptest.NewLogger(t), Options{MaxRounds: 2})
    outcomes := o.Run(context.Background(), m, pairs)

    require.Len(t, outcomes, 50)
    for i, out := range outcomes {
        assert.Equal(t, pairs[i], out.Pair)
        assert.Equal(t, OutcomeAgreed, out.Status)
    }
}

// An unresponsive proposal service must fail its own pair at the
// per-call deadline instead of stalling the whole batch.
func TestOrchestratorProposalTimeout(t *testing.T) {
    tickets := []model.Ticket{
        testTicket("tkt_1", "seller_1", 2, "400", "350"),
        testTicket("tkt_2", "seller_2", 2, "400", "350"),
    }
    bids := []model.Bid{
        testBid("bid_1", "buyer_1", 2, "450", "500"), // settles before any service call
        testBid("bid_2", "buyer_2", 2, "300", "350"), // needs the service, which never answers
    }
    m := testMarket(tickets, bids)
    pairs := []CandidatePair{
        {BidID: "bid_1", TicketID: "tkt_1"},
        {BidID: "bid_2", TicketID: "tkt_2"},
    }

    o := NewOrchestrator(blockingService{}, zaptest.NewLogger(t), Options{
        MaxRounds:       3,
        ProposalTimeout: 5 * time.Millisecond,
    })

    done := make(chan []Outcome, 1)
    go func() { done <- o.Run(context.Background(), m, pairs) }()

    var outcomes []Outcome
    select {
    case outcomes = <-done:
    case <-time.After(2 * time.Second):
        t.Fatal("batch stalled on unresponsive proposal service")
    }

    require.Len(t, outcomes, 2)
    assert.Equal(t, OutcomeAgreed, outcomes[0].Status)

    assert.Equal(t, OutcomeFailed, outcomes[1].Status)
    assert.Nil(t, outcomes[1].Agreement)
    assert.ErrorIs(t, outcomes[1].Err, context.DeadlineExceeded)
}
