package middleware

// identity.go defines helper functions shared across middleware files.
// currentUserID resolves the identity a request should be attributed
// to: the marketplace party when the access token carries one, the
// bare user id otherwise. Rate limit keys use this so a buyer hammering
// the negotiation endpoints is throttled per party, not per IP.

import (
	"github.com/labstack/echo/v4"
)

// currentUserID extracts a stable identity from the request context.
// It returns "anon" for unauthenticated requests.
func currentUserID(c echo.Context) string {
	if v := c.Get("party_id"); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if v := c.Get("user_id"); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "anon"
}
