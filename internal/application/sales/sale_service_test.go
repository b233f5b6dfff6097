package sales_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	salesapp "github.com/landerp/backend/internal/application/sales"
	"github.com/landerp/backend/internal/domain/sales"
	"github.com/landerp/backend/internal/domain/shared"
	"github.com/landerp/backend/internal/testutil"
)

func TestSaleService_CreateSale_SplitsPlanAndMarksPlotSold(t *testing.T) {
	app := testutil.NewApp(t)
	actors := testutil.NewActors(t)
	ctx := context.Background()

	f := app.SeedSale(t, actors, "100", "30", "1000000")

	rs, err := app.Allocator.GetRSNumber(ctx, f.RSNumber.ID)
	require.NoError(t, err)
	testutil.AssertDecimal(t, "70", rs.RemainingArea, "remaining_area")
	testutil.AssertDecimal(t, "30", rs.SoldArea, "sold_area")
	testutil.AssertDecimal(t, "0", rs.AllocatedArea, "allocated_area")

	plot, err := app.Allocator.GetPlot(ctx, f.Plot.ID)
	require.NoError(t, err)
	assert.Equal(t, "SOLD", plot.Status)
	require.NotNil(t, plot.ClientID)
	assert.Equal(t, f.Client.ID, *plot.ClientID)

	sale := f.Sale
	assert.Equal(t, "ACTIVE", sale.Status)
	testutil.AssertDecimal(t, "1000000", sale.DueAmount, "due_amount")
	testutil.AssertDecimal(t, "0", sale.PaidAmount, "paid_amount")
	require.Len(t, sale.Stages, 4)

	want := []struct {
		stage   string
		planned string
		dueDate string
	}{
		{"BOOKING", "100000", "2024-01-15"},
		{"INSTALLMENTS", "700000", "2024-07-13"},
		{"REGISTRATION", "150000", "2024-10-11"},
		{"HANDOVER", "50000", "2025-01-14"},
	}
	for i, w := range want {
		st := sale.Stages[i]
		assert.Equal(t, i+1, st.Sequence)
		assert.Equal(t, w.stage, st.Stage)
		testutil.AssertDecimal(t, w.planned, st.PlannedAmount, w.stage)
		assert.Equal(t, "PENDING", st.Status)
		assert.Equal(t, w.dueDate, st.DueDate.Format("2006-01-02"))
	}

	assert.Len(t, app.Events.OfType(sales.EventTypeSaleCreated), 1)
}

func TestSaleService_CreateSale_Rejections(t *testing.T) {
	app := testutil.NewApp(t)
	actors := testutil.NewActors(t)
	ctx := context.Background()

	f := app.SeedSale(t, actors, "100", "30", "1000000")

	t.Run("plot already sold", func(t *testing.T) {
		other := app.CreateClient(t)
		_, err := app.Sales.CreateSale(ctx, actors.Manager, salesapp.CreateSaleRequest{
			ClientID:   other.ID,
			PlotID:     f.Plot.ID,
			TotalPrice: testutil.Dec("500000"),
			SaleDate:   testutil.Date(2024, 2, 1),
		})
		testutil.AssertErrorCode(t, err, shared.CodeInvalidState)
	})

	t.Run("non positive price", func(t *testing.T) {
		plot := app.CreatePlot(t, f.RSNumber.ID, "10")
		_, err := app.Sales.CreateSale(ctx, actors.Manager, salesapp.CreateSaleRequest{
			ClientID:   f.Client.ID,
			PlotID:     plot.ID,
			TotalPrice: testutil.Dec("0"),
			SaleDate:   testutil.Date(2024, 2, 1),
		})
		testutil.AssertErrorCode(t, err, shared.CodeValidation)

		again, err := app.Allocator.GetPlot(ctx, plot.ID)
		require.NoError(t, err)
		assert.Equal(t, "AVAILABLE", again.Status)
	})

	t.Run("plot reserved for another client", func(t *testing.T) {
		plot := app.CreatePlot(t, f.RSNumber.ID, "5")
		holder := app.CreateClient(t)
		_, err := app.Allocator.ReservePlot(ctx, plot.ID, landReserve(holder.ID))
		require.NoError(t, err)

		_, err = app.Sales.CreateSale(ctx, actors.Manager, salesapp.CreateSaleRequest{
			ClientID:   f.Client.ID,
			PlotID:     plot.ID,
			TotalPrice: testutil.Dec("200000"),
			SaleDate:   testutil.Date(2024, 2, 1),
		})
		testutil.AssertErrorCode(t, err, shared.CodeInvalidState)

		sale, err := app.Sales.CreateSale(ctx, actors.Manager, salesapp.CreateSaleRequest{
			ClientID:   holder.ID,
			PlotID:     plot.ID,
			TotalPrice: testutil.Dec("200000"),
			SaleDate:   testutil.Date(2024, 2, 1),
		})
		require.NoError(t, err)
		assert.Equal(t, holder.ID, sale.ClientID)
	})

	t.Run("unknown client", func(t *testing.T) {
		plot := app.CreatePlot(t, f.RSNumber.ID, "5")
		_, err := app.Sales.CreateSale(ctx, actors.Manager, salesapp.CreateSaleRequest{
			ClientID:   testutil.NewActor(t, shared.RoleAdmin).UserID,
			PlotID:     plot.ID,
			TotalPrice: testutil.Dec("200000"),
			SaleDate:   testutil.Date(2024, 2, 1),
		})
		testutil.AssertErrorCode(t, err, shared.CodeNotFound)
	})
}

// Receipts fill stages in plan order
func TestSaleService_ReceiptWaterfall(t *testing.T) {
	app := testutil.NewApp(t)
	actors := testutil.NewActors(t)
	ctx := context.Background()

	f := app.SeedSale(t, actors, "100", "30", "1000000")

	app.ApproveReceipt(t, actors, f, "100000")

	sale, err := app.Sales.GetSale(ctx, f.Sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", sale.Stages[0].Status)
	assert.Equal(t, "PENDING", sale.Stages[1].Status)
	testutil.AssertDecimal(t, "900000", sale.DueAmount, "due_amount")
	testutil.AssertDecimal(t, "100000", sale.PaidAmount, "paid_amount")

	app.ApproveReceipt(t, actors, f, "750000")

	sale, err = app.Sales.GetSale(ctx, f.Sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", sale.Stages[0].Status)
	assert.Equal(t, "COMPLETED", sale.Stages[1].Status)
	testutil.AssertDecimal(t, "700000", sale.Stages[1].ReceivedAmount, "installments received")
	assert.Equal(t, "PARTIAL", sale.Stages[2].Status)
	testutil.AssertDecimal(t, "50000", sale.Stages[2].ReceivedAmount, "registration received")
	testutil.AssertDecimal(t, "100000", sale.Stages[2].DueAmount, "registration due")
	assert.Equal(t, "PENDING", sale.Stages[3].Status)
	testutil.AssertDecimal(t, "150000", sale.DueAmount, "due_amount")
	assert.Equal(t, "ACTIVE", sale.Status)

	applied := app.Events.OfType(sales.EventTypeSalePaymentApplied)
	assert.Len(t, applied, 2)

	app.ApproveReceipt(t, actors, f, "150000")

	sale, err = app.Sales.GetSale(ctx, f.Sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", sale.Status)
	testutil.AssertDecimal(t, "0", sale.DueAmount, "due_amount")
	require.NotNil(t, sale.CompletedAt)
	assert.Len(t, app.Events.OfType(sales.EventTypeSaleCompleted), 1)
}

// An overpaying receipt leaves the sale untouched
func TestSaleService_OverpaymentRejectedOnSubmit(t *testing.T) {
	app := testutil.NewApp(t)
	actors := testutil.NewActors(t)
	ctx := context.Background()

	f := app.SeedSale(t, actors, "100", "30", "1000000")
	app.ApproveReceipt(t, actors, f, "900000")

	receipt := app.DraftReceipt(t, actors.Manager, f, "100000.01")
	_, err := app.Receipts.SubmitReceipt(ctx, actors.Manager, receipt.ID, workflow(""))
	testutil.AssertErrorCode(t, err, shared.CodeOverpayment)

	stored, err := app.Receipts.GetReceipt(ctx, receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, "DRAFT", stored.Status)

	sale, err := app.Sales.GetSale(ctx, f.Sale.ID)
	require.NoError(t, err)
	testutil.AssertDecimal(t, "100000", sale.DueAmount, "due_amount")
	testutil.AssertDecimal(t, "900000", sale.PaidAmount, "paid_amount")
}

// Two receipts that each fit on submit can still overpay together
func TestSaleService_OverpaymentRollsBackApproval(t *testing.T) {
	app := testutil.NewApp(t)
	actors := testutil.NewActors(t)
	ctx := context.Background()

	f := app.SeedSale(t, actors, "100", "30", "1000000")
	app.ApproveReceipt(t, actors, f, "900000")

	first := app.DraftReceipt(t, actors.Manager, f, "60000")
	second := app.DraftReceipt(t, actors.Manager, f, "60000")
	for _, id := range []uuid.UUID{first.ID, second.ID} {
		_, err := app.Receipts.SubmitReceipt(ctx, actors.Manager, id, workflow(""))
		require.NoError(t, err)
		_, err = app.Receipts.ApproveReceipt(ctx, actors.Manager, id, workflow(""))
		require.NoError(t, err)
	}

	_, err := app.Receipts.ApproveReceipt(ctx, actors.HOF, first.ID, workflow(""))
	require.NoError(t, err)

	_, err = app.Receipts.ApproveReceipt(ctx, actors.HOF, second.ID, workflow(""))
	testutil.AssertErrorCode(t, err, shared.CodeOverpayment)

	stored, err := app.Receipts.GetReceipt(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "PENDING_HOF", stored.Status)

	sale, err := app.Sales.GetSale(ctx, f.Sale.ID)
	require.NoError(t, err)
	testutil.AssertDecimal(t, "40000", sale.DueAmount, "due_amount")
	testutil.AssertDecimal(t, "960000", sale.PaidAmount, "paid_amount")
	assert.Equal(t, "COMPLETED", sale.Stages[2].Status)
	assert.Equal(t, "PARTIAL", sale.Stages[3].Status)

	account, err := app.Accounts.GetAccount(ctx, f.Account.ID)
	require.NoError(t, err)
	testutil.AssertDecimal(t, "960000", account.CurrentBalance, "account balance")
}

func TestSaleService_HoldAndResume(t *testing.T) {
	app := testutil.NewApp(t)
	actors := testutil.NewActors(t)
	ctx := context.Background()

	f := app.SeedSale(t, actors, "100", "30", "1000000")

	held, err := app.Sales.HoldSale(ctx, f.Sale.ID, salesapp.HoldSaleRequest{Reason: "client abroad"})
	require.NoError(t, err)
	assert.Equal(t, "ON_HOLD", held.Status)
	assert.Equal(t, "client abroad", held.HoldReason)

	// payments cannot land on a sale on hold
	receipt := app.DraftReceipt(t, actors.Manager, f, "100000")
	_, err = app.Receipts.SubmitReceipt(ctx, actors.Manager, receipt.ID, workflow(""))
	require.NoError(t, err)
	_, err = app.Receipts.ApproveReceipt(ctx, actors.Manager, receipt.ID, workflow(""))
	require.NoError(t, err)
	_, err = app.Receipts.ApproveReceipt(ctx, actors.HOF, receipt.ID, workflow(""))
	testutil.AssertErrorCode(t, err, shared.CodeInvalidState)

	_, err = app.Sales.HoldSale(ctx, f.Sale.ID, salesapp.HoldSaleRequest{Reason: "again"})
	testutil.AssertErrorCode(t, err, shared.CodeInvalidState)

	resumed, err := app.Sales.ResumeSale(ctx, f.Sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", resumed.Status)

	_, err = app.Receipts.ApproveReceipt(ctx, actors.HOF, receipt.ID, workflow(""))
	require.NoError(t, err)
}

func TestSaleService_ListSales(t *testing.T) {
	app := testutil.NewApp(t)
	actors := testutil.NewActors(t)
	ctx := context.Background()

	first := app.SeedSale(t, actors, "100", "30", "1000000")
	app.SeedSale(t, actors, "50", "10", "400000")

	all, total, err := app.Sales.ListSales(ctx, salesapp.SaleListFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, all, 2)

	byClient, total, err := app.Sales.ListSales(ctx, salesapp.SaleListFilter{ClientID: first.Client.ID.String()})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, byClient, 1)
	assert.Equal(t, first.Sale.ID, byClient[0].ID)

	_, _, err = app.Sales.ListSales(ctx, salesapp.SaleListFilter{Status: "SOMETHING"})
	testutil.AssertErrorCode(t, err, shared.CodeValidation)

	_, _, err = app.Sales.ListSales(ctx, salesapp.SaleListFilter{PlotID: "not-a-uuid"})
	testutil.AssertErrorCode(t, err, shared.CodeValidation)
}

func TestSaleService_DueInstallments(t *testing.T) {
	app := testutil.NewApp(t)
	actors := testutil.NewActors(t)
	ctx := context.Background()

	f := app.SeedSale(t, actors, "100", "30", "1000000")

	due, err := app.Sales.DueInstallments(ctx, testutil.Date(2024, 1, 20))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "BOOKING", due[0].Stage)
	assert.True(t, due[0].Overdue)
	assert.Equal(t, 5, due[0].DaysOverdue)

	app.ApproveReceipt(t, actors, f, "100000")

	// installments fall due on 2024-07-13, inside the 7 day window
	due, err = app.Sales.DueInstallments(ctx, testutil.Date(2024, 7, 10))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "INSTALLMENTS", due[0].Stage)
	assert.False(t, due[0].Overdue)
	testutil.AssertDecimal(t, "700000", due[0].DueAmount, "due_amount")

	due, err = app.Sales.DueInstallments(ctx, testutil.Date(2024, 6, 1))
	require.NoError(t, err)
	assert.Empty(t, due)

	count, err := app.Sales.PublishInstallmentReminders(ctx, app.Bus, testutil.Date(2024, 8, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	reminders := app.Events.OfType(sales.EventTypeInstallmentReminder)
	require.Len(t, reminders, 1)
	assert.Equal(t, f.Sale.ID, reminders[0].AggregateID())
}

func TestSaleService_PreviewRefund(t *testing.T) {
	app := testutil.NewApp(t)
	actors := testutil.NewActors(t)
	ctx := context.Background()

	f := app.SeedSale(t, actors, "100", "30", "1000000")
	app.ApproveReceipt(t, actors, f, "333333.33")

	quote, err := app.Sales.PreviewRefund(ctx, f.Sale.ID)
	require.NoError(t, err)
	testutil.AssertDecimal(t, "333333.33", quote.TotalPaid, "total_paid")
	testutil.AssertDecimal(t, "10", quote.OfficeChargePercent, "office_charge_percent")
	testutil.AssertDecimal(t, "33333.33", quote.OfficeCharge, "office_charge")
	testutil.AssertDecimal(t, "300000", quote.RefundableAmount, "refundable_amount")
}
