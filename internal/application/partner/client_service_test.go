package partner_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	partnerapp "github.com/landerp/backend/internal/application/partner"
	salesapp "github.com/landerp/backend/internal/application/sales"
	"github.com/landerp/backend/internal/domain/shared"
	"github.com/landerp/backend/internal/testutil"
)

func TestClientService_CreateAndUpdate(t *testing.T) {
	app := testutil.NewApp(t)
	ctx := context.Background()

	client, err := app.Clients.Create(ctx, partnerapp.CreateClientRequest{
		Code:  "CL-001",
		Name:  "Rahim Uddin",
		Phone: "01711000000",
		Email: "rahim@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", client.Status)

	_, err = app.Clients.Create(ctx, partnerapp.CreateClientRequest{
		Code:  "CL-001",
		Name:  "Someone Else",
		Phone: "01711000001",
	})
	testutil.AssertErrorCode(t, err, shared.CodeAlreadyExists)

	updated, err := app.Clients.Update(ctx, client.ID, partnerapp.UpdateClientRequest{
		Name:    "Rahim Uddin Ahmed",
		Phone:   "01711000002",
		Address: "Mirpur, Dhaka",
	})
	require.NoError(t, err)
	assert.Equal(t, "Rahim Uddin Ahmed", updated.Name)
	assert.Equal(t, "Mirpur, Dhaka", updated.Address)

	got, err := app.Clients.GetByID(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, "01711000002", got.Phone)
}

func TestClientService_StatusAndList(t *testing.T) {
	app := testutil.NewApp(t)
	ctx := context.Background()

	first := app.CreateClient(t)
	app.CreateClient(t)

	inactive, err := app.Clients.Deactivate(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "INACTIVE", inactive.Status)

	active, total, err := app.Clients.List(ctx, partnerapp.ClientListFilter{Status: "ACTIVE"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, active, 1)

	_, _, err = app.Clients.List(ctx, partnerapp.ClientListFilter{Status: "GONE"})
	testutil.AssertErrorCode(t, err, shared.CodeValidation)

	reactivated, err := app.Clients.Activate(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", reactivated.Status)
}

func TestClientService_InactiveClientCannotBuy(t *testing.T) {
	app := testutil.NewApp(t)
	actors := testutil.NewActors(t)
	ctx := context.Background()

	rs := app.RegisterRSNumber(t, "100")
	plot := app.CreatePlot(t, rs.ID, "10")
	client := app.CreateClient(t)
	_, err := app.Clients.Deactivate(ctx, client.ID)
	require.NoError(t, err)

	_, err = app.Sales.CreateSale(ctx, actors.Manager, salesRequest(client.ID, plot.ID))
	testutil.AssertErrorCode(t, err, shared.CodeInvalidState)
}

func TestClientService_DeleteGuardedByActiveSales(t *testing.T) {
	app := testutil.NewApp(t)
	actors := testutil.NewActors(t)
	ctx := context.Background()

	f := app.SeedSale(t, actors, "100", "30", "1000000")

	err := app.Clients.Delete(ctx, f.Client.ID)
	testutil.AssertErrorCode(t, err, shared.CodeInvalidState)

	idle := app.CreateClient(t)
	require.NoError(t, app.Clients.Delete(ctx, idle.ID))
	_, err = app.Clients.GetByID(ctx, idle.ID)
	testutil.AssertErrorCode(t, err, shared.CodeNotFound)
}

func salesRequest(clientID, plotID uuid.UUID) salesapp.CreateSaleRequest {
	return salesapp.CreateSaleRequest{
		ClientID:   clientID,
		PlotID:     plotID,
		TotalPrice: testutil.Dec("250000"),
		SaleDate:   testutil.Date(2024, 1, 15),
	}
}
