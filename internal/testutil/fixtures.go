package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	financeapp "github.com/landerp/backend/internal/application/finance"
	landapp "github.com/landerp/backend/internal/application/land"
	partnerapp "github.com/landerp/backend/internal/application/partner"
	salesapp "github.com/landerp/backend/internal/application/sales"
	"github.com/landerp/backend/internal/domain/shared"
)

var fixtureSeq atomic.Int64

// Actors holds one actor per role
type Actors struct {
	Admin   shared.Actor
	Manager shared.Actor
	HOF     shared.Actor
}

// NewActors returns a fresh actor for each role
func NewActors(t *testing.T) Actors {
	t.Helper()
	return Actors{
		Admin:   NewActor(t, shared.RoleAdmin),
		Manager: NewActor(t, shared.RoleAccountManager),
		HOF:     NewActor(t, shared.RoleHOF),
	}
}

// SaleFixture is a sold plot with everything it references
type SaleFixture struct {
	RSNumber *landapp.RSNumberResponse
	Plot     *landapp.PlotResponse
	Client   *partnerapp.ClientResponse
	Account  *financeapp.AccountResponse
	Sale     *salesapp.SaleResponse
}

// Dec parses a decimal literal
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// DecPtr is Dec for optional request fields
func DecPtr(s string) *decimal.Decimal {
	d := Dec(s)
	return &d
}

// RegisterRSNumber creates an RS number of totalArea katha
func (a *App) RegisterRSNumber(t *testing.T, totalArea string) *landapp.RSNumberResponse {
	t.Helper()
	n := fixtureSeq.Add(1)
	rs, err := a.Allocator.RegisterRSNumber(context.Background(), landapp.CreateRSNumberRequest{
		Number:      fmt.Sprintf("RS-%04d", n),
		ProjectName: "Green Valley",
		TotalArea:   Dec(totalArea),
		UnitType:    "KATHA",
	})
	require.NoError(t, err)
	return rs
}

// CreatePlot carves an available plot out of rsID
func (a *App) CreatePlot(t *testing.T, rsID uuid.UUID, area string) *landapp.PlotResponse {
	t.Helper()
	n := fixtureSeq.Add(1)
	plot, err := a.Allocator.CreatePlot(context.Background(), landapp.CreatePlotRequest{
		RSNumberID: rsID,
		PlotNumber: fmt.Sprintf("P-%04d", n),
		Area:       DecPtr(area),
	})
	require.NoError(t, err)
	return plot
}

// CreateClient registers an active client
func (a *App) CreateClient(t *testing.T) *partnerapp.ClientResponse {
	t.Helper()
	n := fixtureSeq.Add(1)
	client, err := a.Clients.Create(context.Background(), partnerapp.CreateClientRequest{
		Code:  fmt.Sprintf("C-%04d", n),
		Name:  fmt.Sprintf("Client %d", n),
		Phone: fmt.Sprintf("0170000%04d", n),
	})
	require.NoError(t, err)
	return client
}

// CreateAccount opens a cash account with the given opening balance
func (a *App) CreateAccount(t *testing.T, opening string) *financeapp.AccountResponse {
	t.Helper()
	n := fixtureSeq.Add(1)
	account, err := a.Accounts.CreateAccount(context.Background(), financeapp.CreateAccountRequest{
		Kind:           "CASH",
		Name:           fmt.Sprintf("Cash box %d", n),
		OpeningBalance: Dec(opening),
	})
	require.NoError(t, err)
	return account
}

// SeedSale registers an RS number of totalArea, a plot of plotArea and a
// sale of price on it, plus a cash account for receipts.
func (a *App) SeedSale(t *testing.T, actors Actors, totalArea, plotArea, price string) SaleFixture {
	t.Helper()
	rs := a.RegisterRSNumber(t, totalArea)
	plot := a.CreatePlot(t, rs.ID, plotArea)
	client := a.CreateClient(t)
	account := a.CreateAccount(t, "0")

	sale, err := a.Sales.CreateSale(context.Background(), actors.Manager, salesapp.CreateSaleRequest{
		ClientID:   client.ID,
		PlotID:     plot.ID,
		TotalPrice: Dec(price),
		SaleDate:   Date(2024, 1, 15),
	})
	require.NoError(t, err)

	return SaleFixture{RSNumber: rs, Plot: plot, Client: client, Account: account, Sale: sale}
}

// DraftReceipt records a cash receipt draft against a sale
func (a *App) DraftReceipt(t *testing.T, actor shared.Actor, f SaleFixture, amount string) *financeapp.ReceiptResponse {
	t.Helper()
	receipt, err := a.Receipts.CreateReceipt(context.Background(), actor, financeapp.CreateReceiptRequest{
		SaleID:       f.Sale.ID,
		ReceiptType:  "INSTALLMENT",
		Amount:       Dec(amount),
		Method:       "CASH",
		AccountID:    &f.Account.ID,
		ReceivedDate: Date(2024, 2, 1),
	})
	require.NoError(t, err)
	return receipt
}

// ApproveReceipt drafts a receipt and drives it through both approval tiers
func (a *App) ApproveReceipt(t *testing.T, actors Actors, f SaleFixture, amount string) *financeapp.ReceiptResponse {
	t.Helper()
	ctx := context.Background()
	receipt := a.DraftReceipt(t, actors.Manager, f, amount)

	_, err := a.Receipts.SubmitReceipt(ctx, actors.Manager, receipt.ID, financeapp.WorkflowRequest{})
	require.NoError(t, err)
	_, err = a.Receipts.ApproveReceipt(ctx, actors.Manager, receipt.ID, financeapp.WorkflowRequest{Remarks: "accounts ok"})
	require.NoError(t, err)
	approved, err := a.Receipts.ApproveReceipt(ctx, actors.HOF, receipt.ID, financeapp.WorkflowRequest{Remarks: "hof ok"})
	require.NoError(t, err)
	require.Equal(t, "APPROVED", approved.Status)
	return approved
}
