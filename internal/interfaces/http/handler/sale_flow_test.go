package handler_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	financeapp "github.com/landerp/backend/internal/application/finance"
	landapp "github.com/landerp/backend/internal/application/land"
	partnerapp "github.com/landerp/backend/internal/application/partner"
	salesapp "github.com/landerp/backend/internal/application/sales"
	"github.com/landerp/backend/internal/domain/shared"
	"github.com/landerp/backend/internal/interfaces/http/dto"
	"github.com/landerp/backend/internal/testutil"
)

type tokens struct {
	admin, manager, hof string
}

func newServer(t *testing.T) (*testutil.HTTPServer, testutil.Actors, tokens) {
	t.Helper()
	srv := testutil.NewHTTPServer(t, testutil.NewApp(t))
	actors := testutil.NewActors(t)
	return srv, actors, tokens{
		admin:   srv.Token(t, actors.Admin),
		manager: srv.Token(t, actors.Manager),
		hof:     srv.Token(t, actors.HOF),
	}
}

func receiptAction(t *testing.T, srv *testutil.HTTPServer, token string, id uuid.UUID, action string) *financeapp.ReceiptResponse {
	t.Helper()
	var out financeapp.ReceiptResponse
	w := srv.Do(t, http.MethodPost, fmt.Sprintf("/api/v1/finance/receipts/%s/%s", id, action), token, nil)
	testutil.RequireHTTPStatus(t, w, http.StatusOK, &out)
	return &out
}

func TestSaleFlow_HTTP(t *testing.T) {
	srv, _, tok := newServer(t)

	var rs landapp.RSNumberResponse
	w := srv.Do(t, http.MethodPost, "/api/v1/land/rs-numbers", tok.admin, map[string]any{
		"number":       "RS-900",
		"project_name": "River Side",
		"total_area":   "100",
		"unit_type":    "KATHA",
	})
	testutil.RequireHTTPStatus(t, w, http.StatusCreated, &rs)

	var plot landapp.PlotResponse
	w = srv.Do(t, http.MethodPost, "/api/v1/land/plots", tok.admin, map[string]any{
		"rs_number_id": rs.ID,
		"plot_number":  "A-1",
		"area":         "30",
	})
	testutil.RequireHTTPStatus(t, w, http.StatusCreated, &plot)

	var client partnerapp.ClientResponse
	w = srv.Do(t, http.MethodPost, "/api/v1/clients", tok.manager, map[string]any{
		"code":  "C-900",
		"name":  "Rahim Uddin",
		"phone": "01711111111",
	})
	testutil.RequireHTTPStatus(t, w, http.StatusCreated, &client)

	var account financeapp.AccountResponse
	w = srv.Do(t, http.MethodPost, "/api/v1/finance/accounts", tok.admin, map[string]any{
		"kind":            "CASH",
		"name":            "Head office cash",
		"opening_balance": "0",
	})
	testutil.RequireHTTPStatus(t, w, http.StatusCreated, &account)

	var sale salesapp.SaleResponse
	w = srv.Do(t, http.MethodPost, "/api/v1/sales", tok.manager, map[string]any{
		"client_id":   client.ID,
		"plot_id":     plot.ID,
		"total_price": "1000000",
		"sale_date":   "2024-01-15T00:00:00Z",
	})
	testutil.RequireHTTPStatus(t, w, http.StatusCreated, &sale)
	assert.Equal(t, "ACTIVE", sale.Status)
	require.Len(t, sale.Stages, 4)

	var receipt financeapp.ReceiptResponse
	w = srv.Do(t, http.MethodPost, "/api/v1/finance/receipts", tok.manager, map[string]any{
		"sale_id":        sale.ID,
		"receipt_type":   "BOOKING",
		"amount":         "150000",
		"payment_method": "CASH",
		"account_id":     account.ID,
		"received_date":  "2024-01-20T00:00:00Z",
	})
	testutil.RequireHTTPStatus(t, w, http.StatusCreated, &receipt)
	assert.Equal(t, "DRAFT", receipt.Status)

	receiptAction(t, srv, tok.manager, receipt.ID, "submit")
	receiptAction(t, srv, tok.manager, receipt.ID, "approve")

	// the account manager cannot pass the HOF tier
	w = srv.Do(t, http.MethodPost, fmt.Sprintf("/api/v1/finance/receipts/%s/approve", receipt.ID), tok.manager, nil)
	testutil.RequireHTTPError(t, w, http.StatusForbidden, shared.CodeForbidden)

	approved := receiptAction(t, srv, tok.hof, receipt.ID, "approve")
	assert.Equal(t, "APPROVED", approved.Status)

	w = srv.Do(t, http.MethodGet, "/api/v1/sales/"+sale.ID.String(), tok.manager, nil)
	testutil.RequireHTTPStatus(t, w, http.StatusOK, &sale)
	testutil.AssertDecimal(t, "150000", sale.PaidAmount, "paid_amount")
	testutil.AssertDecimal(t, "850000", sale.DueAmount, "due_amount")

	var receipts []financeapp.ReceiptResponse
	w = srv.Do(t, http.MethodGet, "/api/v1/sales/"+sale.ID.String()+"/receipts", tok.manager, nil)
	env := testutil.RequireHTTPStatus(t, w, http.StatusOK, &receipts)
	require.Len(t, receipts, 1)
	require.NotNil(t, env.Meta)
	assert.EqualValues(t, 1, env.Meta.Total)

	// a receipt above the due amount cannot be submitted
	var over financeapp.ReceiptResponse
	w = srv.Do(t, http.MethodPost, "/api/v1/finance/receipts", tok.manager, map[string]any{
		"sale_id":        sale.ID,
		"receipt_type":   "INSTALLMENT",
		"amount":         "850000.01",
		"payment_method": "CASH",
		"account_id":     account.ID,
		"received_date":  "2024-02-20T00:00:00Z",
	})
	testutil.RequireHTTPStatus(t, w, http.StatusCreated, &over)

	w = srv.Do(t, http.MethodPost, fmt.Sprintf("/api/v1/finance/receipts/%s/submit", over.ID), tok.manager, nil)
	testutil.RequireHTTPError(t, w, http.StatusUnprocessableEntity, shared.CodeOverpayment)
}

func TestSaleFlow_Errors(t *testing.T) {
	srv, actors, tok := newServer(t)
	f := srv.App.SeedSale(t, actors, "100", "30", "1000000")

	t.Run("manager cannot register land", func(t *testing.T) {
		w := srv.Do(t, http.MethodPost, "/api/v1/land/rs-numbers", tok.manager, map[string]any{
			"number": "RS-1", "project_name": "X", "total_area": "1", "unit_type": "KATHA",
		})
		testutil.RequireHTTPError(t, w, http.StatusForbidden, dto.CodeForbidden)
	})

	t.Run("hof cannot create sales", func(t *testing.T) {
		w := srv.Do(t, http.MethodPost, "/api/v1/sales", tok.hof, map[string]any{})
		testutil.RequireHTTPError(t, w, http.StatusForbidden, dto.CodeForbidden)
	})

	t.Run("missing required fields", func(t *testing.T) {
		w := srv.Do(t, http.MethodPost, "/api/v1/finance/receipts", tok.manager, map[string]any{
			"sale_id": f.Sale.ID,
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		env := testutil.DecodeEnvelope(t, w, nil)
		require.NotNil(t, env.Error)
		assert.Equal(t, dto.CodeValidation, env.Error.Code)
		assert.NotEmpty(t, env.Error.Fields)
	})

	t.Run("invalid path id", func(t *testing.T) {
		w := srv.Do(t, http.MethodGet, "/api/v1/sales/not-a-uuid", tok.manager, nil)
		testutil.RequireHTTPError(t, w, http.StatusBadRequest, dto.CodeBadRequest)
	})

	t.Run("unknown sale", func(t *testing.T) {
		w := srv.Do(t, http.MethodGet, "/api/v1/sales/"+uuid.NewString(), tok.manager, nil)
		testutil.RequireHTTPError(t, w, http.StatusNotFound, shared.CodeNotFound)
	})

	t.Run("sold plot", func(t *testing.T) {
		w := srv.Do(t, http.MethodPost, "/api/v1/sales", tok.manager, map[string]any{
			"client_id":   f.Client.ID,
			"plot_id":     f.Plot.ID,
			"total_price": "5",
			"sale_date":   "2024-01-15T00:00:00Z",
		})
		testutil.RequireHTTPError(t, w, http.StatusUnprocessableEntity, shared.CodeInvalidState)
	})

	t.Run("oversized plot", func(t *testing.T) {
		w := srv.Do(t, http.MethodPost, "/api/v1/land/plots", tok.admin, map[string]any{
			"rs_number_id": f.RSNumber.ID,
			"plot_number":  "BIG",
			"area":         "70.5",
		})
		testutil.RequireHTTPError(t, w, http.StatusUnprocessableEntity, shared.CodeInsufficientArea)
	})

	t.Run("reject without remarks", func(t *testing.T) {
		receipt := srv.App.DraftReceipt(t, actors.Manager, f, "1000")
		w := srv.Do(t, http.MethodPost, fmt.Sprintf("/api/v1/finance/receipts/%s/submit", receipt.ID), tok.manager, nil)
		testutil.RequireHTTPStatus(t, w, http.StatusOK, nil)

		w = srv.Do(t, http.MethodPost, fmt.Sprintf("/api/v1/finance/receipts/%s/reject", receipt.ID), tok.manager, map[string]any{})
		testutil.RequireHTTPError(t, w, http.StatusBadRequest, shared.CodeValidation)

		w = srv.Do(t, http.MethodPost, fmt.Sprintf("/api/v1/finance/receipts/%s/reject", receipt.ID), tok.manager, map[string]any{
			"remarks": "amount does not match slip",
		})
		var rejected financeapp.ReceiptResponse
		testutil.RequireHTTPStatus(t, w, http.StatusOK, &rejected)
		assert.Equal(t, "REJECTED", rejected.Status)
	})
}

func TestSaleFlow_ListPagination(t *testing.T) {
	srv, actors, tok := newServer(t)
	for i := 0; i < 3; i++ {
		srv.App.SeedSale(t, actors, "100", "10", "500000")
	}

	var list []salesapp.SaleResponse
	w := srv.Do(t, http.MethodGet, "/api/v1/sales?page=1&page_size=2", tok.manager, nil)
	env := testutil.RequireHTTPStatus(t, w, http.StatusOK, &list)
	assert.Len(t, list, 2)
	require.NotNil(t, env.Meta)
	assert.EqualValues(t, 3, env.Meta.Total)
	assert.Equal(t, 2, env.Meta.TotalPages)

	w = srv.Do(t, http.MethodGet, "/api/v1/sales?status=BOGUS", tok.manager, nil)
	testutil.RequireHTTPError(t, w, http.StatusBadRequest, shared.CodeValidation)
}
