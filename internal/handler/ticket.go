// Package handler exposes HTTP handlers for both authenticated and public endpoints.
// This file defines handlers for seller ticket listings.
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

// TicketHandler bundles dependencies for ticket listing endpoints.
type TicketHandler struct {
	Tickets *repository.TicketRepo
	Events  *repository.EventRepo
	Venues  *repository.VenueRepo
}

func NewTicketHandler(t *repository.TicketRepo, e *repository.EventRepo, v *repository.VenueRepo) *TicketHandler {
	return &TicketHandler{Tickets: t, Events: e, Venues: v}
}

type createTicketReq struct {
	EventID       string `json:"event_id"`
	GroupID       string `json:"group_id"`
	Quantity      int    `json:"quantity"`
	Price         string `json:"price"`
	MinPrice      string `json:"min_price"`
	Sensitivity   string `json:"sensitivity"`
	ImmediateSale bool   `json:"immediate_sale"`
}

type ticketResp struct {
	ID            string    `json:"id"`
	EventID       string    `json:"event_id"`
	GroupID       string    `json:"group_id"`
	Quantity      int       `json:"quantity"`
	Price         string    `json:"price"`
	MinPrice      string    `json:"min_price"`
	EventDate     time.Time `json:"event_date"`
	Sensitivity   string    `json:"sensitivity,omitempty"`
	ImmediateSale bool      `json:"immediate_sale"`
	CreatedAt     time.Time `json:"created_at"`
}

func toTicketResp(t model.Ticket) ticketResp {
	return ticketResp{
		ID:            t.ID,
		EventID:       t.EventID,
		GroupID:       t.GroupID,
		Quantity:      t.Quantity,
		Price:         t.Price.String(),
		MinPrice:      t.MinPrice.String(),
		EventDate:     t.EventDate,
		Sensitivity:   t.Sensitivity,
		ImmediateSale: t.ImmediateSale,
		CreatedAt:     t.CreatedAt,
	}
}

// Create lists tickets for the authenticated seller. The seating group
// must exist at the event's venue; the list price must not undercut the
// floor.
func (h *TicketHandler) Create(c echo.Context) error {
	sellerID := partyID(c)
	if sellerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createTicketReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.EventID) == "" || strings.TrimSpace(req.GroupID) == "" || req.Quantity < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_id, group_id and positive quantity required"})
	}
	price, ok := parsePrice(req.Price)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid price"})
	}
	minPrice, ok := parsePrice(req.MinPrice)
	if !ok {
		minPrice = price // floor defaults to the list price
	}
	if minPrice.GreaterThan(price) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "min_price exceeds price"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	event, err := h.Events.GetByID(ctx, req.EventID)
	if err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	venue, err := h.Venues.GetByID(ctx, event.VenueID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if _, ok := venue.Group(req.GroupID); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown seating group"})
	}

	ticket := model.Ticket{
		ID:            "tkt_" + uuid.NewString(),
		SellerID:      sellerID,
		EventID:       event.ID,
		GroupID:       req.GroupID,
		Quantity:      req.Quantity,
		Price:         price,
		MinPrice:      minPrice,
		EventDate:     event.Date,
		Sensitivity:   strings.TrimSpace(req.Sensitivity),
		ImmediateSale: req.ImmediateSale,
	}
	if err := h.Tickets.Create(ctx, &ticket); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create ticket failed"})
	}
	return c.JSON(http.StatusCreated, toTicketResp(ticket))
}

// List returns the authenticated seller's listings.
func (h *TicketHandler) List(c echo.Context) error {
	sellerID := partyID(c)
	if sellerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tickets, err := h.Tickets.ListBySeller(ctx, sellerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]ticketResp, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, toTicketResp(t))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Delete withdraws a listing owned by the authenticated seller.
func (h *TicketHandler) Delete(c echo.Context) error {
	sellerID := partyID(c)
	if sellerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	switch err := h.Tickets.DeleteByIDAndSeller(ctx, c.Param("id"), sellerID); err {
	case nil:
		return c.NoContent(http.StatusNoContent)
	case repository.ErrTicketNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
	case repository.ErrForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
}
