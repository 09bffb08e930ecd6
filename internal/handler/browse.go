// Package handler exposes HTTP handlers for both authenticated and public endpoints.
// This file defines handlers for the public browsing API. These routes allow
// unauthenticated users to browse events, venue seating groups and the
// listings available per group. Sensitive fields (price floors, ceilings,
// sensitivity labels) are filtered from responses.
package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ticket-marketplace/internal/model"
	"github.com/iliyamo/ticket-marketplace/internal/repository"
)

// PublicHandler aggregates repositories needed for unauthenticated
// browsing. It produces sanitized responses suitable for public
// consumption.
type PublicHandler struct {
	Events  *repository.EventRepo
	Venues  *repository.VenueRepo
	Tickets *repository.TicketRepo
}

// PublicEvent represents an event exposed via the public API.
type PublicEvent struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Date    time.Time `json:"date"`
	VenueID string    `json:"venue_id"`
}

// PublicGroup represents a venue seating group exposed via the public
// API.
type PublicGroup struct {
	GroupID        string `json:"group_id"`
	Name           string `json:"name"`
	ReferenceValue string `json:"reference_value"`
}

// PublicListing represents a ticket listing in public responses. Only
// the list price is exposed; the seller's floor stays private.
type PublicListing struct {
	ID       string `json:"id"`
	GroupID  string `json:"group_id"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
}

// GetEvents returns all events. Response JSON contains an "items" array
// of PublicEvent.
func (h *PublicHandler) GetEvents(c echo.Context) error {
	ctx := c.Request().Context()
	events, err := h.Events.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]PublicEvent, 0, len(events))
	for _, e := range events {
		out = append(out, PublicEvent{ID: e.ID, Name: e.Name, Date: e.Date, VenueID: e.VenueID})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetEvent returns one event by id.
func (h *PublicHandler) GetEvent(c echo.Context) error {
	ctx := c.Request().Context()
	event, err := h.Events.GetByID(ctx, c.Param("id"))
	if err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, PublicEvent{ID: event.ID, Name: event.Name, Date: event.Date, VenueID: event.VenueID})
}

// GetEventGroups lists the seating groups of an event's venue together
// with their reference values.
func (h *PublicHandler) GetEventGroups(c echo.Context) error {
	ctx := c.Request().Context()
	event, err := h.Events.GetByID(ctx, c.Param("id"))
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
	out := make([]PublicGroup, 0, len(venue.SeatingGroups))
	for _, g := range venue.SeatingGroups {
		out = append(out, PublicGroup{GroupID: g.GroupID, Name: g.Name, ReferenceValue: g.ReferenceValue.String()})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"venue": echo.Map{"id": venue.ID, "name": venue.Name, "city": venue.City},
		"items": out,
	})
}

// GetEventListings lists the available ticket listings of an event,
// optionally filtered by seating group via the "group" query parameter.
func (h *PublicHandler) GetEventListings(c echo.Context) error {
	ctx := c.Request().Context()
	eventID := c.Param("id")
	if _, err := h.Events.GetByID(ctx, eventID); err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	var (
		tickets []model.Ticket
		err     error
	)
	if group := c.QueryParam("group"); group != "" {
		tickets, err = h.Tickets.ListByEventAndGroup(ctx, eventID, group)
	} else {
		tickets, err = h.Tickets.ListByEvent(ctx, eventID)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	out := make([]PublicListing, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, PublicListing{
			ID:       t.ID,
			GroupID:  t.GroupID,
			Quantity: t.Quantity,
			Price:    t.Price.String(),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}
