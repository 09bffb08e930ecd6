// Package handler exposes HTTP handlers for both authenticated and public endpoints.
// This file defines the catalog management endpoints: sellers register
// the venues (with their seating groups and reference values) and the
// events that bids and listings later attach to.
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

// CatalogHandler bundles the repositories behind venue and event
// provisioning.
type CatalogHandler struct {
	Events *repository.EventRepo
	Venues *repository.VenueRepo
}

func NewCatalogHandler(e *repository.EventRepo, v *repository.VenueRepo) *CatalogHandler {
	return &CatalogHandler{Events: e, Venues: v}
}

type seatingGroupReq struct {
	GroupID        string `json:"group_id"`
	Name           string `json:"name"`
	ReferenceValue string `json:"reference_value"`
}

type createVenueReq struct {
	Name   string            `json:"name"`
	City   string            `json:"city"`
	Groups []seatingGroupReq `json:"groups"`
}

// CreateVenue handles POST /v1/venues. The venue and its seating
// groups are inserted together; a venue without groups has no
// submarkets and is rejected.
func (h *CatalogHandler) CreateVenue(c echo.Context) error {
	var req createVenueReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if len(req.Groups) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "at least one seating group is required"})
	}

	v := model.Venue{
		ID:   "ven_" + uuid.NewString(),
		Name: name,
		City: strings.TrimSpace(req.City),
	}
	for _, g := range req.Groups {
		gid := strings.TrimSpace(g.GroupID)
		if gid == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "group_id is required"})
		}
		ref, ok := parsePrice(g.ReferenceValue)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reference_value"})
		}
		v.SeatingGroups = append(v.SeatingGroups, model.SeatingGroup{
			GroupID:        gid,
			Name:           strings.TrimSpace(g.Name),
			ReferenceValue: ref,
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Venues.Create(ctx, &v); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create venue"})
	}

	groups := make([]PublicGroup, 0, len(v.SeatingGroups))
	for _, g := range v.SeatingGroups {
		groups = append(groups, PublicGroup{GroupID: g.GroupID, Name: g.Name, ReferenceValue: g.ReferenceValue.String()})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":     v.ID,
		"name":   v.Name,
		"city":   v.City,
		"groups": groups,
	})
}

type createEventReq struct {
	Name    string    `json:"name"`
	Date    time.Time `json:"date"`
	VenueID string    `json:"venue_id"`
}

// CreateEvent handles POST /v1/events. The venue must already exist.
func (h *CatalogHandler) CreateEvent(c echo.Context) error {
	var req createEventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if req.Date.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Venues.GetByID(ctx, strings.TrimSpace(req.VenueID)); err != nil {
		if err == repository.ErrVenueNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	e := model.Event{
		ID:      "evt_" + uuid.NewString(),
		Name:    name,
		Date:    req.Date,
		VenueID: strings.TrimSpace(req.VenueID),
	}
	if err := h.Events.Create(ctx, &e); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create event"})
	}
	return c.JSON(http.StatusCreated, PublicEvent{ID: e.ID, Name: e.Name, Date: e.Date, VenueID: e.VenueID})
}
