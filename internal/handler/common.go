package handler

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// partyID returns the buyer or seller identity the authenticated user
// acts for. JWTAuth stores the claim in the context; an empty string
// means the token predates party support and the caller should be
// rejected.
func partyID(c echo.Context) string {
	v, _ := c.Get("party_id").(string)
	return v
}

// parsePrice parses a decimal price field. Empty strings and
// non-positive values are rejected.
func parsePrice(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || !d.IsPositive() {
		return decimal.Decimal{}, false
	}
	return d, true
}
