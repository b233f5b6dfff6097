package sales_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	financeapp "github.com/landerp/backend/internal/application/finance"
	landapp "github.com/landerp/backend/internal/application/land"
	salesapp "github.com/landerp/backend/internal/application/sales"
	settingsapp "github.com/landerp/backend/internal/application/settings"
	"github.com/landerp/backend/internal/domain/sales"
	"github.com/landerp/backend/internal/domain/shared"
	"github.com/landerp/backend/internal/testutil"
)

func workflow(remarks string) financeapp.WorkflowRequest {
	return financeapp.WorkflowRequest{Remarks: remarks}
}

func landReserve(clientID uuid.UUID) landapp.ReservePlotRequest {
	return landapp.ReservePlotRequest{ClientID: clientID}
}

func settingsUpdate(percent string, reminderDays int) settingsapp.UpdateSettingsRequest {
	pct := testutil.Dec(percent)
	return settingsapp.UpdateSettingsRequest{OfficeChargePercent: &pct, InstallmentReminderDays: &reminderDays}
}

func cancellationRequest() salesapp.RequestCancellationRequest {
	return salesapp.RequestCancellationRequest{
		CancellationDate: testutil.Date(2024, 3, 1),
		Reason:           "client relocating",
	}
}

// Refunds are capped at the refundable amount
func TestCancellationService_RefundLifecycle(t *testing.T) {
	app := testutil.NewApp(t)
	actors := testutil.NewActors(t)
	ctx := context.Background()

	f := app.SeedSale(t, actors, "100", "30", "1000000")
	app.ApproveReceipt(t, actors, f, "100000")
	app.ApproveReceipt(t, actors, f, "400000")

	c, err := app.Cancellations.RequestCancellation(ctx, actors.Manager, f.Sale.ID, cancellationRequest())
	require.NoError(t, err)
	assert.Equal(t, "PENDING", c.Status)
	assert.Equal(t, "ACTIVE", c.PriorSaleStatus)
	testutil.AssertDecimal(t, "500000", c.TotalPaid, "total_paid")
	testutil.AssertDecimal(t, "10", c.OfficeChargePercent, "office_charge_percent")
	testutil.AssertDecimal(t, "50000", c.OfficeCharge, "office_charge")
	testutil.AssertDecimal(t, "450000", c.RefundableAmount, "refundable_amount")
	assert.Len(t, c.PaymentSnapshot, 2)

	sale, err := app.Sales.GetSale(ctx, f.Sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "ON_HOLD", sale.Status)
	assert.True(t, sale.CancellationPending)

	// refunds wait for the decision
	_, err = app.Cancellations.RecordRefundPayment(ctx, actors.Manager, c.ID, salesapp.RecordRefundRequest{
		Amount: testutil.Dec("1000"),
		Method: "CASH",
	})
	testutil.AssertErrorCode(t, err, shared.CodeInvalidState)

	approved, err := app.Cancellations.ApproveCancellation(ctx, actors.HOF, c.ID, salesapp.DecisionRequest{Remarks: "ok"})
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", approved.Status)
	require.NotNil(t, approved.DecidedBy)
	assert.Equal(t, actors.HOF.UserID, *approved.DecidedBy)

	sale, err = app.Sales.GetSale(ctx, f.Sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", sale.Status)

	plot, err := app.Allocator.GetPlot(ctx, f.Plot.ID)
	require.NoError(t, err)
	assert.Equal(t, "AVAILABLE", plot.Status)
	assert.Nil(t, plot.ClientID)

	rs, err := app.Allocator.GetRSNumber(ctx, f.RSNumber.ID)
	require.NoError(t, err)
	testutil.AssertDecimal(t, "100", rs.RemainingArea, "remaining_area")
	testutil.AssertDecimal(t, "0", rs.SoldArea, "sold_area")
	require.NoError(t, app.Allocator.ReconcileRSNumber(ctx, f.RSNumber.ID))

	_, err = app.Cancellations.RecordRefundPayment(ctx, actors.Manager, c.ID, salesapp.RecordRefundRequest{
		Amount: testutil.Dec("500000"),
		Method: "CASH",
	})
	testutil.AssertErrorCode(t, err, shared.CodeOverrefund)

	partial, err := app.Cancellations.RecordRefundPayment(ctx, actors.Manager, c.ID, salesapp.RecordRefundRequest{
		Amount:    testutil.Dec("200000"),
		Method:    "BANK_TRANSFER",
		Reference: "TRX-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "PARTIAL_REFUND", partial.Status)
	testutil.AssertDecimal(t, "250000", partial.RemainingRefundable, "remaining_refundable")

	done, err := app.Cancellations.RecordRefundPayment(ctx, actors.Manager, c.ID, salesapp.RecordRefundRequest{
		Amount: testutil.Dec("250000"),
		Method: "CHEQUE",
	})
	require.NoError(t, err)
	assert.Equal(t, "REFUNDED", done.Status)
	testutil.AssertDecimal(t, "450000", done.RefundedAmount, "refunded_amount")
	assert.Len(t, done.Refunds, 2)

	_, err = app.Cancellations.RecordRefundPayment(ctx, actors.Manager, c.ID, salesapp.RecordRefundRequest{
		Amount: testutil.Dec("0.01"),
		Method: "CASH",
	})
	testutil.AssertErrorCode(t, err, shared.CodeInvalidState)

	assert.Len(t, app.Events.OfType(sales.EventTypeCancellationApproved), 1)
	assert.Len(t, app.Events.OfType(sales.EventTypeRefundRecorded), 2)
}

func TestCancellationService_RequestUsesCurrentOfficeCharge(t *testing.T) {
	app := testutil.NewApp(t)
	actors := testutil.NewActors(t)
	ctx := context.Background()

	f := app.SeedSale(t, actors, "100", "30", "1000000")
	app.ApproveReceipt(t, actors, f, "200000")

	_, err := app.Settings.Update(ctx, actors.Admin, settingsUpdate("12.5", 7))
	require.NoError(t, err)

	c, err := app.Cancellations.RequestCancellation(ctx, actors.Manager, f.Sale.ID, cancellationRequest())
	require.NoError(t, err)
	testutil.AssertDecimal(t, "25000", c.OfficeCharge, "office_charge")
	testutil.AssertDecimal(t, "175000", c.RefundableAmount, "refundable_amount")

	// later setting changes do not touch the snapshot
	_, err = app.Settings.Update(ctx, actors.Admin, settingsUpdate("20", 7))
	require.NoError(t, err)
	approved, err := app.Cancellations.ApproveCancellation(ctx, actors.Admin, c.ID, salesapp.DecisionRequest{})
	require.NoError(t, err)
	testutil.AssertDecimal(t, "175000", approved.RefundableAmount, "refundable_amount")
}

func TestCancellationService_RejectRestoresPriorStatus(t *testing.T) {
	app := testutil.NewApp(t)
	actors := testutil.NewActors(t)
	ctx := context.Background()

	f := app.SeedSale(t, actors, "100", "30", "1000000")
	_, err := app.Sales.HoldSale(ctx, f.Sale.ID, salesapp.HoldSaleRequest{Reason: "documents missing"})
	require.NoError(t, err)

	c, err := app.Cancellations.RequestCancellation(ctx, actors.Manager, f.Sale.ID, cancellationRequest())
	require.NoError(t, err)
	assert.Equal(t, "ON_HOLD", c.PriorSaleStatus)
	testutil.AssertDecimal(t, "0", c.RefundableAmount, "refundable_amount")

	_, err = app.Cancellations.RequestCancellation(ctx, actors.Manager, f.Sale.ID, cancellationRequest())
	testutil.AssertErrorCode(t, err, shared.CodeInvalidState)

	_, err = app.Cancellations.RejectCancellation(ctx, actors.HOF, c.ID, salesapp.DecisionRequest{})
	testutil.AssertErrorCode(t, err, shared.CodeValidation)

	rejected, err := app.Cancellations.RejectCancellation(ctx, actors.HOF, c.ID, salesapp.DecisionRequest{Remarks: "client changed mind"})
	require.NoError(t, err)
	assert.Equal(t, "REJECTED", rejected.Status)

	sale, err := app.Sales.GetSale(ctx, f.Sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "ON_HOLD", sale.Status)
	assert.False(t, sale.CancellationPending)

	plot, err := app.Allocator.GetPlot(ctx, f.Plot.ID)
	require.NoError(t, err)
	assert.Equal(t, "SOLD", plot.Status)

	_, err = app.Cancellations.ApproveCancellation(ctx, actors.HOF, c.ID, salesapp.DecisionRequest{})
	testutil.AssertErrorCode(t, err, shared.CodeInvalidState)
}

func TestCancellationService_DecisionRoles(t *testing.T) {
	app := testutil.NewApp(t)
	actors := testutil.NewActors(t)
	ctx := context.Background()

	f := app.SeedSale(t, actors, "100", "30", "1000000")
	c, err := app.Cancellations.RequestCancellation(ctx, actors.Manager, f.Sale.ID, cancellationRequest())
	require.NoError(t, err)

	_, err = app.Cancellations.ApproveCancellation(ctx, actors.Manager, c.ID, salesapp.DecisionRequest{})
	testutil.AssertErrorCode(t, err, shared.CodeForbidden)

	_, err = app.Cancellations.RejectCancellation(ctx, actors.Manager, c.ID, salesapp.DecisionRequest{Remarks: "no"})
	testutil.AssertErrorCode(t, err, shared.CodeForbidden)

	got, err := app.Cancellations.GetCancellation(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "PENDING", got.Status)
}

func TestCancellationService_CancelledSaleRefusesReceipts(t *testing.T) {
	app := testutil.NewApp(t)
	actors := testutil.NewActors(t)
	ctx := context.Background()

	f := app.SeedSale(t, actors, "100", "30", "1000000")
	c, err := app.Cancellations.RequestCancellation(ctx, actors.Manager, f.Sale.ID, cancellationRequest())
	require.NoError(t, err)
	_, err = app.Cancellations.ApproveCancellation(ctx, actors.HOF, c.ID, salesapp.DecisionRequest{})
	require.NoError(t, err)

	_, err = app.Receipts.CreateReceipt(ctx, actors.Manager, financeapp.CreateReceiptRequest{
		SaleID:       f.Sale.ID,
		ReceiptType:  "INSTALLMENT",
		Amount:       testutil.Dec("1000"),
		Method:       "CASH",
		ReceivedDate: testutil.Date(2024, 4, 1),
	})
	testutil.AssertErrorCode(t, err, shared.CodeInvalidState)

	// the plot can be sold again
	other := app.CreateClient(t)
	resold, err := app.Sales.CreateSale(ctx, actors.Manager, salesapp.CreateSaleRequest{
		ClientID:   other.ID,
		PlotID:     f.Plot.ID,
		TotalPrice: testutil.Dec("1100000"),
		SaleDate:   testutil.Date(2024, 5, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", resold.Status)

	list, total, err := app.Cancellations.ListCancellations(ctx, salesapp.CancellationListFilter{SaleID: f.Sale.ID.String()})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, c.ID, list[0].ID)
}
