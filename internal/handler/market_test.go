package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/iliyamo/ticket-marketplace/internal/config"
	"github.com/iliyamo/ticket-marketplace/internal/market"
	"github.com/iliyamo/ticket-marketplace/internal/proposal"
	"github.com/iliyamo/ticket-marketplace/internal/repository"
)

// countingProposals counts Propose calls; settlement must never reach
// the proposal service.
type countingProposals struct{ calls atomic.Int64 }

func (s *countingProposals) Propose(context.Context, proposal.Request) (string, error) {
	s.calls.Add(1)
	return "", nil
}

func newMarketHandler(t *testing.T) (*MarketHandler, *countingProposals, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	svc := &countingProposals{}
	h := &MarketHandler{
		Cfg:          config.Config{},
		Bids:         repository.NewBidRepo(conn),
		Tickets:      repository.NewTicketRepo(conn),
		Events:       repository.NewEventRepo(conn),
		Venues:       repository.NewVenueRepo(conn),
		Pairs:        repository.NewPairRepo(conn),
		Transactions: repository.NewTransactionRepo(conn),
		Proposals:    svc,
		Logger:       zaptest.NewLogger(t),
	}
	return h, svc, mock
}

func settleContext(t *testing.T, body any) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/v1/market/settle", bytes.NewReader(raw))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func bidRow(id, buyerID string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "buyer_id", "event_id", "quantity", "max_price", "price",
		"allowed_groups", "sensitivity", "created_at",
	}).AddRow(id, buyerID, "evt_1", 2, "350.00", "300.00", nil, "MEDIUM", time.Now())
}

func ticketRow(id, sellerID string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "seller_id", "event_id", "group_id", "quantity", "price",
		"min_price", "event_date", "sensitivity", "immediate_sale", "created_at",
	}).AddRow(id, sellerID, "evt_1", "FLOOR_PREMIUM", 2, "320.00",
		"280.00", time.Now(), "LOW", false, time.Now())
}

func eventRow(id string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "date", "venue_id", "created_at"}).
		AddRow(id, "Test Event", time.Now(), "ven_1", time.Now())
}

// Settlement consumes the agreements the caller already negotiated; it
// must persist exactly those and never run a second negotiation batch.
func TestSettleResolvesProvidedAgreements(t *testing.T) {
	h, svc, mock := newMarketHandler(t)

	mock.ExpectQuery("FROM events WHERE id").WillReturnRows(eventRow("evt_1"))
	// identity pass and materialization each resolve the pair.
	mock.ExpectQuery("FROM bids WHERE id").WillReturnRows(bidRow("bid_1", "byr_1"))
	mock.ExpectQuery("FROM tickets WHERE id").WillReturnRows(ticketRow("tkt_1", "slr_1"))
	mock.ExpectQuery("FROM bids WHERE id").WillReturnRows(bidRow("bid_1", "byr_1"))
	mock.ExpectQuery("FROM tickets WHERE id").WillReturnRows(ticketRow("tkt_1", "slr_1"))
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM transactions").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO transactions").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c, rec := settleContext(t, settleReq{
		EventID: "evt_1",
		GroupID: "FLOOR_PREMIUM",
		Agreements: []market.Agreement{{
			BidID:    "bid_1",
			TicketID: "tkt_1",
			Price:    decimal.RequireFromString("300.00"),
			Quantity: 2,
		}},
	})
	require.NoError(t, h.Settle(c))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Transactions []transactionResp `json:"transactions"`
		Dropped      int               `json:"dropped"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Transactions, 1)
	assert.Equal(t, "bid_1", resp.Transactions[0].BidID)
	assert.Equal(t, "tkt_1", resp.Transactions[0].TicketID)
	assert.Equal(t, "byr_1", resp.Transactions[0].BuyerID)
	assert.Equal(t, "slr_1", resp.Transactions[0].SellerID)
	assert.Equal(t, 0, resp.Dropped)

	assert.Zero(t, svc.calls.Load(), "settlement ran negotiations")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettleRequiresEventAndGroup(t *testing.T) {
	h, svc, mock := newMarketHandler(t)

	c, rec := settleContext(t, settleReq{GroupID: "FLOOR_PREMIUM"})
	require.NoError(t, h.Settle(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, svc.calls.Load())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettleUnknownEvent(t *testing.T) {
	h, _, mock := newMarketHandler(t)

	mock.ExpectQuery("FROM events WHERE id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "date", "venue_id", "created_at"}))

	c, rec := settleContext(t, settleReq{EventID: "evt_missing", GroupID: "FLOOR_PREMIUM"})
	require.NoError(t, h.Settle(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
