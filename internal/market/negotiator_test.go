package market

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/ticket-marketplace/internal/model"
)

func TestExtractPrice(t *testing.T) {
    cases := []struct {
        name string
        text string
        want string
        ok   bool
    }{
        {"last amount wins", "I can do $500, maybe $480", "480", true},
        {"single integer", "How about 350 per ticket?", "350", true},
        {"two decimals", "Final answer: 312.50", "312.5", true},
        {"thousands separator", "These go for 1,250 each", "1250", true},
        {"thousands with decimals", "Premium seats run 1,250.75", "1250.75", true},
        {"long fraction clipped", "pi pricing: 3.14159", "3.14", true},
        {"no numbers", "Let me think about it", "", false},
        {"empty", "", "", false},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            got, ok := ExtractPrice(tc.text)
            require.Equal(t, tc.ok, ok)
            if tc.ok {
                assert.True(t, got.Equal(dec(tc.want)), "got %s want %s", got, tc.want)
            }
        })
    }
}

func TestExtractPriceDeterministic(t *testing.T) {
    const text = "Opening at 300, willing to go to 320.50 for 2 tickets"
    first, ok := ExtractPrice(text)
    require.True(t, ok)
    for i := 0; i < 10; i++ {
        again, ok := ExtractPrice(text)
        require.True(t, ok)
        assert.True(t, first.Equal(again))
    }
}

func newTestNegotiator(role Role, svc *scriptedService) (*Negotiator, *Conversation) {
    bid := testBid("bid_1", "buyer_1", 2, "300", "350")
    ticket := testTicket("tkt_1", "seller_1", 4, "400", "280")
    m := testMarket([]model.Ticket{ticket}, []model.Bid{bid})
    conv := NewConversation()
    spec := BuyerSpec(bid)
    if role == RoleSeller {
        spec = SellerSpec(ticket)
    }
    return NewNegotiator(spec, m, svc, conv, 2, 5, time.Second), conv
}

func TestNegotiatorProcessCounterOffer(t *testing.T) {
    t.Run("records offer and advances round", func(t *testing.T) {
        n, conv := newTestNegotiator(RoleBuyer, nil)
        require.NoError(t, n.ProcessCounterOffer("I'm asking 390 per ticket"))
        counter, ok := n.CounterOffer()
        require.True(t, ok)
        assert.True(t, counter.Equal(dec("390")))
        assert.Equal(t, 2, n.Round())
        require.Equal(t, 1, conv.Len())
        entry := conv.Entries()[0]
        assert.Equal(t, 1, entry.Round)
        assert.Equal(t, "seller", entry.Role)
    })

    t.Run("no price is an extraction error", func(t *testing.T) {
        n, conv := newTestNegotiator(RoleBuyer, nil)
        err := n.ProcessCounterOffer("Hmm, let me get back to you")
        var extractErr *ExtractionError
        require.ErrorAs(t, err, &extractErr)
        assert.Equal(t, "seller", extractErr.Role)
        assert.Equal(t, 1, n.Round())
        assert.Equal(t, 0, conv.Len())
    })

    t.Run("echoed standing offer resolves", func(t *testing.T) {
        svc := &scriptedService{buyer: []string{"I'll open at 300"}, seller: []string{"380"}}
        n, conv := newTestNegotiator(RoleBuyer, svc)
        _, err := n.ProposeOffer(context.Background())
        require.NoError(t, err)
        require.True(t, n.IsAccepted("Deal. 300 it is"))
        require.NoError(t, n.ProcessCounterOffer("Deal. 300 it is"))
        assert.True(t, n.Resolved())
        // Acceptance short-circuits: no log entry, no round advance.
        assert.Equal(t, 1, n.Round())
        assert.Equal(t, 0, conv.Len())
    })
}

func TestNegotiatorIsAcceptedRequiresStandingOffer(t *testing.T) {
    n, _ := newTestNegotiator(RoleBuyer, nil)
    // No offer stated yet, so nothing can be accepted.
    assert.False(t, n.IsAccepted("sure, 300"))
}

func TestNegotiatorProposeOncePerRound(t *testing.T) {
    svc := &scriptedService{buyer: []string{"300 works"}, seller: []string{"400"}}
    n, _ := newTestNegotiator(RoleBuyer, svc)
    _, err := n.ProposeOffer(context.Background())
    require.NoError(t, err)
    _, err = n.ProposeOffer(context.Background())
    assert.ErrorIs(t, err, ErrAlreadyProposed)
}

func TestNegotiatorProposeUpdatesStandingOffer(t *testing.T) {
    svc := &scriptedService{buyer: []string{"Let's start at 310.25"}, seller: []string{"400"}}
    n, _ := newTestNegotiator(RoleBuyer, svc)
    _, err := n.ProposeOffer(context.Background())
    require.NoError(t, err)
    cur, ok := n.CurrentOffer()
    require.True(t, ok)
    assert.True(t, cur.Equal(dec("310.25")))
}

func TestNegotiatorProposeError(t *testing.T) {
    bid := testBid("bid_1", "buyer_1", 2, "300", "350")
    ticket := testTicket("tkt_1", "seller_1", 4, "400", "280")
    m := testMarket([]model.Ticket{ticket}, []model.Bid{bid})
    wantErr := errors.New("proposal service down")
    n := NewNegotiator(BuyerSpec(bid), m, failingService{err: wantErr}, NewConversation(), 2, 5, 0)
    _, err := n.ProposeOffer(context.Background())
    assert.ErrorIs(t, err, wantErr)
}
