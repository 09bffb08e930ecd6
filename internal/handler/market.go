// Package handler exposes HTTP handlers for both authenticated and public endpoints.
// This file defines the negotiation endpoints: running a negotiation
// batch over one (event, seating group) slice of the market, settling
// the resulting agreements into transactions, and reading settled
// transactions back.
package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/ticket-marketplace/internal/config"
	"github.com/iliyamo/ticket-marketplace/internal/market"
	"github.com/iliyamo/ticket-marketplace/internal/model"
	"github.com/iliyamo/ticket-marketplace/internal/proposal"
	"github.com/iliyamo/ticket-marketplace/internal/queue"
	"github.com/iliyamo/ticket-marketplace/internal/repository"
	queue_publisher "github.com/iliyamo/ticket-marketplace/internal/service"
)

// MarketHandler bundles everything the negotiation endpoints need: the
// repositories that load the submarket snapshot, the proposal service
// that generates offers, and the resolver dependencies for settlement.
type MarketHandler struct {
	Cfg          config.Config
	Bids         *repository.BidRepo
	Tickets      *repository.TicketRepo
	Events       *repository.EventRepo
	Venues       *repository.VenueRepo
	Pairs        *repository.PairRepo
	Transactions *repository.TransactionRepo
	Proposals    proposal.Service
	Logger       *zap.Logger
}

type marketRunReq struct {
	EventID string                 `json:"event_id"`
	GroupID string                 `json:"group_id"`
	Pairs   []market.CandidatePair `json:"pairs"`
}

type settleReq struct {
	EventID    string             `json:"event_id"`
	GroupID    string             `json:"group_id"`
	Agreements []market.Agreement `json:"agreements"`
}

type outcomeResp struct {
	Pair      market.CandidatePair `json:"pair"`
	Status    string               `json:"status"`
	Agreement *market.Agreement    `json:"agreement,omitempty"`
	Error     string               `json:"error,omitempty"`
}

type transactionResp struct {
	ID        string    `json:"id"`
	BidID     string    `json:"bid_id"`
	TicketID  string    `json:"ticket_id"`
	BuyerID   string    `json:"buyer_id"`
	SellerID  string    `json:"seller_id"`
	Price     string    `json:"price"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

func toTransactionResp(t model.Transaction) transactionResp {
	return transactionResp{
		ID:        t.ID,
		BidID:     t.BidID,
		TicketID:  t.TicketID,
		BuyerID:   t.BuyerID,
		SellerID:  t.SellerID,
		Price:     t.Price.String(),
		Quantity:  t.Quantity,
		CreatedAt: t.CreatedAt,
	}
}

// Negotiate runs the negotiation batch for one (event, seating group)
// slice and reports the per-pair outcomes without settling anything.
// When no pairs are supplied, stored candidate pairs are used; when
// none are stored either, every eligible bid is paired with every
// eligible listing.
func (h *MarketHandler) Negotiate(c echo.Context) error {
	req, m, pairs, errResp := h.loadRun(c)
	if errResp != nil {
		return errResp(c)
	}

	outcomes := h.orchestrator().Run(c.Request().Context(), m, pairs)

	return c.JSON(http.StatusOK, echo.Map{
		"event_id": req.EventID,
		"group_id": req.GroupID,
		"outcomes": toOutcomeResps(outcomes),
	})
}

// Settle resolves a previously negotiated agreement set into a
// conflict-free transaction set, persists it and publishes a settlement
// event. It never re-runs negotiations: callers pass the agreements
// they received from Negotiate, so settlement is deterministic over
// exactly the outcomes the caller saw.
func (h *MarketHandler) Settle(c echo.Context) error {
	var req settleReq
	if err := c.Bind(&req); err != nil ||
		strings.TrimSpace(req.EventID) == "" || strings.TrimSpace(req.GroupID) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_id and group_id required"})
	}
	ctx := c.Request().Context()

	if _, err := h.Events.GetByID(ctx, req.EventID); err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	resolver := &market.Resolver{
		Bids:            h.Bids,
		Tickets:         h.Tickets,
		Transactions:    h.Transactions,
		Logger:          h.Logger,
		RemoveInventory: h.Cfg.FinalizeRemovesInventory,
	}
	txs, dropped, err := resolver.Settle(ctx, req.Agreements)
	if err != nil {
		h.Logger.Error("settlement failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "settlement failed"})
	}

	h.publishSettled(req.EventID, req.GroupID, txs, dropped)

	out := make([]transactionResp, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionResp(t))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"event_id":     req.EventID,
		"group_id":     req.GroupID,
		"transactions": out,
		"dropped":      dropped,
	})
}

// ListTransactions returns the settled transactions the calling party
// took part in.
func (h *MarketHandler) ListTransactions(c echo.Context) error {
	party := partyID(c)
	if party == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	txs, err := h.Transactions.ListByParty(ctx, party)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]transactionResp, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionResp(t))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetTransaction returns one settled transaction. Only the buyer or
// seller involved may read it.
func (h *MarketHandler) GetTransaction(c echo.Context) error {
	party := partyID(c)
	if party == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Transactions.GetByID(ctx, c.Param("id"))
	if err != nil {
		if err == repository.ErrTransactionNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "transaction not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if t.BuyerID != party && t.SellerID != party {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, toTransactionResp(t))
}

// loadRun binds the request, builds the submarket snapshot and decides
// the candidate pair set. On failure it returns a function that writes
// the error response.
func (h *MarketHandler) loadRun(c echo.Context) (marketRunReq, *market.SubMarket, []market.CandidatePair, func(echo.Context) error) {
	fail := func(status int, msg string) func(echo.Context) error {
		return func(c echo.Context) error {
			return c.JSON(status, echo.Map{"error": msg})
		}
	}

	var req marketRunReq
	if err := c.Bind(&req); err != nil {
		return req, nil, nil, fail(http.StatusBadRequest, "invalid body")
	}
	if strings.TrimSpace(req.EventID) == "" || strings.TrimSpace(req.GroupID) == "" {
		return req, nil, nil, fail(http.StatusBadRequest, "event_id and group_id required")
	}
	ctx := c.Request().Context()

	event, err := h.Events.GetByID(ctx, req.EventID)
	if err != nil {
		if err == repository.ErrEventNotFound {
			return req, nil, nil, fail(http.StatusNotFound, "event not found")
		}
		return req, nil, nil, fail(http.StatusInternalServerError, "database error")
	}
	venue, err := h.Venues.GetByID(ctx, event.VenueID)
	if err != nil {
		return req, nil, nil, fail(http.StatusInternalServerError, "database error")
	}
	if _, ok := venue.Group(req.GroupID); !ok {
		return req, nil, nil, fail(http.StatusBadRequest, "unknown seating group")
	}

	tickets, err := h.Tickets.ListByEventAndGroup(ctx, req.EventID, req.GroupID)
	if err != nil {
		return req, nil, nil, fail(http.StatusInternalServerError, "database error")
	}
	bids, err := h.Bids.ListByEvent(ctx, req.EventID)
	if err != nil {
		return req, nil, nil, fail(http.StatusInternalServerError, "database error")
	}

	m := market.NewSubMarket(event, venue, req.GroupID, tickets, bids)

	pairs := req.Pairs
	if len(pairs) > 0 {
		// Explicit pairs become the stored candidate set for this group so
		// later runs without a body reuse them.
		if err := h.Pairs.ReplaceForGroup(ctx, req.EventID, req.GroupID, pairs); err != nil {
			h.Logger.Warn("store candidate pairs failed", zap.Error(err))
		}
	} else {
		pairs, err = h.Pairs.ListForGroup(ctx, req.EventID, req.GroupID)
		if err != nil {
			return req, nil, nil, fail(http.StatusInternalServerError, "database error")
		}
	}
	if len(pairs) == 0 {
		pairs = crossPairs(m)
	}
	return req, m, pairs, nil
}

func (h *MarketHandler) orchestrator() *market.Orchestrator {
	return market.NewOrchestrator(h.Proposals, h.Logger, market.Options{
		MaxRounds:       h.Cfg.NegotiationMaxRounds,
		ProposalTimeout: h.Cfg.ProposalTimeout,
	})
}

// publishSettled fires the settlement event in the background; broker
// failures must not fail the request.
func (h *MarketHandler) publishSettled(eventID, groupID string, txs []model.Transaction, dropped int) {
	ev := queue.TransactionsSettledEvent{
		EventID:   eventID,
		GroupID:   groupID,
		Dropped:   dropped,
		SettledAt: time.Now().UTC().Format(time.RFC3339),
	}
	for _, t := range txs {
		ev.Transactions = append(ev.Transactions, queue.SettledTransaction{
			TransactionID: t.ID,
			BidID:         t.BidID,
			TicketID:      t.TicketID,
			BuyerID:       t.BuyerID,
			SellerID:      t.SellerID,
			Price:         t.Price.String(),
			Quantity:      t.Quantity,
		})
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = queue_publisher.PublishTransactionsSettled(ctx, ev)
	}()
}

// crossPairs pairs every eligible bid with every eligible listing of
// the submarket.
func crossPairs(m *market.SubMarket) []market.CandidatePair {
	pairs := make([]market.CandidatePair, 0, m.NumBids()*m.NumTickets())
	for _, b := range m.Bids() {
		for _, t := range m.Tickets() {
			pairs = append(pairs, market.CandidatePair{BidID: b.ID, TicketID: t.ID})
		}
	}
	return pairs
}

func toOutcomeResps(outcomes []market.Outcome) []outcomeResp {
	out := make([]outcomeResp, 0, len(outcomes))
	for _, o := range outcomes {
		r := outcomeResp{Pair: o.Pair, Status: string(o.Status), Agreement: o.Agreement}
		if o.Err != nil {
			r.Error = o.Err.Error()
		}
		out = append(out, r)
	}
	return out
}
