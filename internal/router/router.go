package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/ticket-marketplace/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/ticket-marketplace/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Operations that do not require an existing session.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout accepts a JSON body containing a refresh_token and
	// invalidates that token; no JWT is required.
	g.POST("/logout", a.Logout)

	// Protected endpoints live under /v1 and require a valid access
	// token with a known role.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("BUYER", "SELLER"))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers unauthenticated browse endpoints on the provided
// Echo instance.  The provided PublicHandler exposes handlers that return
// sanitized data for events, seating groups and listings.  These routes do
// not apply any JWT or role middleware and are intended for guest users.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler) {
	// Expose list of all events
	e.GET("/v1/events", p.GetEvents)
	// A single event by id
	e.GET("/v1/events/:id", p.GetEvent)
	// Seating groups (with reference values) of an event's venue
	e.GET("/v1/events/:id/groups", p.GetEventGroups)
	// Ticket listings of an event, optionally filtered by ?group=
	e.GET("/v1/events/:id/listings", p.GetEventListings)
}

// RegisterMarket registers the marketplace endpoints.  Bid management is
// BUYER-scoped, listing management is SELLER-scoped, and the negotiation
// endpoints are open to both roles.
func RegisterMarket(e *echo.Echo, b *handler.BidHandler, t *handler.TicketHandler, m *handler.MarketHandler, i *handler.IntentHandler, cat *handler.CatalogHandler, jwtSecret string) {
	buyers := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("BUYER"),
	)
	buyers.POST("/bids", b.Create)
	buyers.GET("/bids", b.List)
	buyers.DELETE("/bids/:id", b.Delete)
	buyers.POST("/buyer/intent", i.Extract)

	sellers := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("SELLER"),
	)
	sellers.POST("/tickets", t.Create)
	sellers.GET("/tickets", t.List)
	sellers.DELETE("/tickets/:id", t.Delete)
	// Catalog provisioning: sellers register the venues and events
	// their listings attach to.
	sellers.POST("/venues", cat.CreateVenue)
	sellers.POST("/events", cat.CreateEvent)

	parties := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("BUYER", "SELLER"),
	)
	parties.POST("/market/negotiate", m.Negotiate)
	parties.POST("/market/settle", m.Settle)
	parties.GET("/transactions", m.ListTransactions)
	parties.GET("/transactions/:id", m.GetTransaction)
}
