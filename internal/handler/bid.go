// Package handler exposes HTTP handlers for both authenticated and public endpoints.
// This file defines handlers for buyer bids: creating, listing and
// withdrawing the structured purchase requests that feed the
// negotiation engine.
package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ticket-marketplace/internal/model"
	"github.com/iliyamo/ticket-marketplace/internal/repository"
)

// BidHandler bundles dependencies for bid endpoints.
type BidHandler struct {
	Bids   *repository.BidRepo
	Events *repository.EventRepo
}

func NewBidHandler(b *repository.BidRepo, e *repository.EventRepo) *BidHandler {
	return &BidHandler{Bids: b, Events: e}
}

type createBidReq struct {
	EventID       string   `json:"event_id"`
	Quantity      int      `json:"quantity"`
	Price         string   `json:"price"`
	MaxPrice      string   `json:"max_price"`
	AllowedGroups []string `json:"allowed_groups"`
	Sensitivity   string   `json:"sensitivity"`
}

type bidResp struct {
	ID            string    `json:"id"`
	EventID       string    `json:"event_id"`
	Quantity      int       `json:"quantity"`
	Price         string    `json:"price"`
	MaxPrice      string    `json:"max_price"`
	AllowedGroups []string  `json:"allowed_groups,omitempty"`
	Sensitivity   string    `json:"sensitivity,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func toBidResp(b model.Bid) bidResp {
	return bidResp{
		ID:            b.ID,
		EventID:       b.EventID,
		Quantity:      b.Quantity,
		Price:         b.Price.String(),
		MaxPrice:      b.MaxPrice.String(),
		AllowedGroups: b.AllowedGroups,
		Sensitivity:   b.Sensitivity,
		CreatedAt:     b.CreatedAt,
	}
}

// Create places a new bid for the authenticated buyer. The opening
// price must not exceed the ceiling; both are per-ticket amounts.
func (h *BidHandler) Create(c echo.Context) error {
	buyerID := partyID(c)
	if buyerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBidReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.EventID) == "" || req.Quantity < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_id and positive quantity required"})
	}
	price, ok := parsePrice(req.Price)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid price"})
	}
	maxPrice, ok := parsePrice(req.MaxPrice)
	if !ok {
		maxPrice = price // ceiling defaults to the opening offer
	}
	if price.GreaterThan(maxPrice) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price exceeds max_price"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Events.GetByID(ctx, req.EventID); err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	bid := model.Bid{
		ID:            "bid_" + uuid.NewString(),
		BuyerID:       buyerID,
		EventID:       req.EventID,
		Quantity:      req.Quantity,
		MaxPrice:      maxPrice,
		Price:         price,
		AllowedGroups: req.AllowedGroups,
		Sensitivity:   strings.TrimSpace(req.Sensitivity),
	}
	if err := h.Bids.Create(ctx, &bid); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create bid failed"})
	}
	return c.JSON(http.StatusCreated, toBidResp(bid))
}

// List returns the authenticated buyer's bids.
func (h *BidHandler) List(c echo.Context) error {
	buyerID := partyID(c)
	if buyerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	bids, err := h.Bids.ListByBuyer(ctx, buyerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]bidResp, 0, len(bids))
	for _, b := range bids {
		out = append(out, toBidResp(b))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Delete withdraws a bid owned by the authenticated buyer.
func (h *BidHandler) Delete(c echo.Context) error {
	buyerID := partyID(c)
	if buyerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	switch err := h.Bids.DeleteByIDAndBuyer(ctx, c.Param("id"), buyerID); err {
	case nil:
		return c.NoContent(http.StatusNoContent)
	case repository.ErrBidNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "bid not found"})
	case repository.ErrForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
}
