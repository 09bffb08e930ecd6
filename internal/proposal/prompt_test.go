package proposal

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func promptReq(role string) Request {
	return Request{
		Role:        role,
		EventName:   "Midnight Run Tour",
		GroupID:     "FLOOR_PREMIUM",
		Quantity:    2,
		Opening:     decimal.NewFromInt(300),
		Limit:       decimal.NewFromInt(350),
		Sensitivity: "normal",
		Reference:   decimal.NewFromInt(450),
		Round:       1,
		MaxRounds:   5,
	}
}

func TestBuildNegotiationPromptBuyer(t *testing.T) {
	system, user := BuildNegotiationPrompt(promptReq("buyer"))

	assert.Contains(t, system, "buyer's representative")
	assert.Contains(t, system, "ceiling is 350.00")
	assert.Contains(t, system, "LAST number")
	assert.NotContains(t, user, "350") // the limit never leaks into market context
	assert.Contains(t, user, "Round 1 of 5")
	assert.Contains(t, user, "benchmark for this group: 450.00")
	assert.Contains(t, user, "Open the negotiation")
}

func TestBuildNegotiationPromptSeller(t *testing.T) {
	req := promptReq("seller")
	req.ImmediateSale = true
	system, _ := BuildNegotiationPrompt(req)

	assert.Contains(t, system, "seller's representative")
	assert.Contains(t, system, "floor is 350.00")
	assert.Contains(t, system, "fast close")
}

func TestBuildNegotiationPromptHistoryAndFinalRound(t *testing.T) {
	req := promptReq("buyer")
	req.Round = 5
	req.History = []Turn{
		{Round: 1, Speaker: "buyer", Text: "I can do 300"},
		{Round: 1, Speaker: "seller", Text: "I need 340"},
	}
	_, user := BuildNegotiationPrompt(req)

	assert.Contains(t, user, "[round 1] buyer: I can do 300")
	assert.Contains(t, user, "[round 1] seller: I need 340")
	assert.Contains(t, user, "final round")
	assert.NotContains(t, user, "Open the negotiation")
}
