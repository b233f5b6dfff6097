package land_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	landapp "github.com/landerp/backend/internal/application/land"
	"github.com/landerp/backend/internal/domain/land"
	"github.com/landerp/backend/internal/domain/shared"
	"github.com/landerp/backend/internal/testutil"
)

func TestAllocatorService_RegisterRSNumber(t *testing.T) {
	app := testutil.NewApp(t)
	ctx := context.Background()

	rs, err := app.Allocator.RegisterRSNumber(ctx, landapp.CreateRSNumberRequest{
		Number:      "RS-101",
		ProjectName: "Lake View",
		TotalArea:   testutil.Dec("100"),
		UnitType:    "KATHA",
	})
	require.NoError(t, err)
	testutil.AssertDecimal(t, "100", rs.RemainingArea, "remaining_area")
	assert.Equal(t, "KATHA", rs.UnitType)

	_, err = app.Allocator.RegisterRSNumber(ctx, landapp.CreateRSNumberRequest{
		Number:      "RS-101",
		ProjectName: "Lake View",
		TotalArea:   testutil.Dec("50"),
		UnitType:    "KATHA",
	})
	testutil.AssertErrorCode(t, err, shared.CodeAlreadyExists)

	_, err = app.Allocator.RegisterRSNumber(ctx, landapp.CreateRSNumberRequest{
		Number:      "RS-102",
		ProjectName: "Lake View",
		TotalArea:   testutil.Dec("0"),
		UnitType:    "KATHA",
	})
	testutil.AssertErrorCode(t, err, shared.CodeValidation)

	assert.Len(t, app.Events.OfType(land.EventTypeRSNumberRegistered), 1)
}

func TestAllocatorService_PlotLifecycle(t *testing.T) {
	app := testutil.NewApp(t)
	ctx := context.Background()

	rs := app.RegisterRSNumber(t, "100")
	plot := app.CreatePlot(t, rs.ID, "30")
	assert.Equal(t, "AVAILABLE", plot.Status)
	assert.Equal(t, "ALLOCATED", plot.Bucket)

	got, err := app.Allocator.GetRSNumber(ctx, rs.ID)
	require.NoError(t, err)
	testutil.AssertDecimal(t, "70", got.RemainingArea, "remaining_area")
	testutil.AssertDecimal(t, "30", got.AllocatedArea, "allocated_area")

	_, err = app.Allocator.CreatePlot(ctx, landapp.CreatePlotRequest{
		RSNumberID: rs.ID,
		PlotNumber: plot.PlotNumber,
		Area:       testutil.DecPtr("1"),
	})
	testutil.AssertErrorCode(t, err, shared.CodeAlreadyExists)

	_, err = app.Allocator.CreatePlot(ctx, landapp.CreatePlotRequest{
		RSNumberID: rs.ID,
		PlotNumber: "TOO-BIG",
		Area:       testutil.DecPtr("70.01"),
	})
	testutil.AssertErrorCode(t, err, shared.CodeInsufficientArea)

	resized, err := app.Allocator.ResizePlot(ctx, plot.ID, landapp.ResizePlotRequest{Area: testutil.DecPtr("40")})
	require.NoError(t, err)
	testutil.AssertDecimal(t, "40", resized.Area, "area")

	_, err = app.Allocator.ResizePlot(ctx, plot.ID, landapp.ResizePlotRequest{Area: testutil.DecPtr("100.5")})
	testutil.AssertErrorCode(t, err, shared.CodeInsufficientArea)

	got, err = app.Allocator.GetRSNumber(ctx, rs.ID)
	require.NoError(t, err)
	testutil.AssertDecimal(t, "60", got.RemainingArea, "remaining_area")
	testutil.AssertDecimal(t, "40", got.AllocatedArea, "allocated_area")

	blocked, err := app.Allocator.BlockPlot(ctx, plot.ID)
	require.NoError(t, err)
	assert.Equal(t, "BLOCKED", blocked.Status)

	unblocked, err := app.Allocator.UnblockPlot(ctx, plot.ID)
	require.NoError(t, err)
	assert.Equal(t, "AVAILABLE", unblocked.Status)

	require.NoError(t, app.Allocator.ReconcileRSNumber(ctx, rs.ID))

	require.NoError(t, app.Allocator.DeletePlot(ctx, plot.ID))
	_, err = app.Allocator.GetPlot(ctx, plot.ID)
	testutil.AssertErrorCode(t, err, shared.CodeNotFound)

	got, err = app.Allocator.GetRSNumber(ctx, rs.ID)
	require.NoError(t, err)
	testutil.AssertDecimal(t, "100", got.RemainingArea, "remaining_area")
	testutil.AssertDecimal(t, "0", got.AllocatedArea, "allocated_area")
}

func TestAllocatorService_CorrectTotalArea(t *testing.T) {
	app := testutil.NewApp(t)
	actors := testutil.NewActors(t)
	ctx := context.Background()

	f := app.SeedSale(t, actors, "100", "30", "1000000")
	app.CreatePlot(t, f.RSNumber.ID, "20")

	_, err := app.Allocator.CorrectTotalArea(ctx, f.RSNumber.ID, landapp.CorrectAreaRequest{
		TotalArea: testutil.Dec("49.99"),
		Reason:    "survey",
	})
	testutil.AssertErrorCode(t, err, shared.CodeInsufficientArea)

	_, err = app.Allocator.CorrectTotalArea(ctx, f.RSNumber.ID, landapp.CorrectAreaRequest{
		TotalArea: testutil.Dec("80"),
	})
	testutil.AssertErrorCode(t, err, shared.CodeValidation)

	rs, err := app.Allocator.CorrectTotalArea(ctx, f.RSNumber.ID, landapp.CorrectAreaRequest{
		TotalArea: testutil.Dec("80"),
		Reason:    "resurvey 2024",
	})
	require.NoError(t, err)
	testutil.AssertDecimal(t, "80", rs.TotalArea, "total_area")
	testutil.AssertDecimal(t, "30", rs.SoldArea, "sold_area")
	testutil.AssertDecimal(t, "20", rs.AllocatedArea, "allocated_area")
	testutil.AssertDecimal(t, "30", rs.RemainingArea, "remaining_area")
	assert.Len(t, app.Events.OfType(land.EventTypeRSNumberAreaCorrected), 1)
}

func TestAllocatorService_SoldPlotIsFrozen(t *testing.T) {
	app := testutil.NewApp(t)
	actors := testutil.NewActors(t)
	ctx := context.Background()

	f := app.SeedSale(t, actors, "100", "30", "1000000")

	_, err := app.Allocator.BlockPlot(ctx, f.Plot.ID)
	testutil.AssertErrorCode(t, err, shared.CodeInvalidState)

	err = app.Allocator.DeletePlot(ctx, f.Plot.ID)
	testutil.AssertErrorCode(t, err, shared.CodeInvalidState)

	_, err = app.Allocator.ReservePlot(ctx, f.Plot.ID, landapp.ReservePlotRequest{ClientID: f.Client.ID})
	testutil.AssertErrorCode(t, err, shared.CodeInvalidState)
}

func TestAllocatorService_ConcurrentPlotCreationNeverOverAllocates(t *testing.T) {
	app := testutil.NewApp(t)
	ctx := context.Background()

	rs := app.RegisterRSNumber(t, "100")

	const attempts = 10
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		errs    []error
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := app.Allocator.CreatePlot(ctx, landapp.CreatePlotRequest{
				RSNumberID: rs.ID,
				PlotNumber: fmt.Sprintf("C-%02d", i),
				Area:       testutil.DecPtr("15"),
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			created++
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 6, created)
	require.Len(t, errs, attempts-6)
	for _, err := range errs {
		testutil.AssertErrorCode(t, err, shared.CodeInsufficientArea)
	}

	got, err := app.Allocator.GetRSNumber(ctx, rs.ID)
	require.NoError(t, err)
	testutil.AssertDecimal(t, "10", got.RemainingArea, "remaining_area")
	testutil.AssertDecimal(t, "90", got.AllocatedArea, "allocated_area")
	require.NoError(t, app.Allocator.ReconcileRSNumber(ctx, rs.ID))

	plots, total, err := app.Allocator.ListPlots(ctx, landapp.PlotListFilter{RSNumberID: rs.ID.String()})
	require.NoError(t, err)
	assert.EqualValues(t, 6, total)
	assert.Len(t, plots, 6)
}

func TestAllocatorService_ConcurrentResizeNeverOverAllocates(t *testing.T) {
	app := testutil.NewApp(t)
	ctx := context.Background()

	rs := app.RegisterRSNumber(t, "100")
	const plots = 5
	ids := make([]uuid.UUID, plots)
	for i := range ids {
		ids[i] = app.CreatePlot(t, rs.ID, "10").ID
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		resized int
		errs    []error
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, err := app.Allocator.ResizePlot(ctx, id, landapp.ResizePlotRequest{Area: testutil.DecPtr("30")})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			resized++
		}(id)
	}
	wg.Wait()

	// 50 katha remain after the plots are carved; each resize takes 20
	assert.Equal(t, 2, resized)
	require.Len(t, errs, plots-2)
	for _, err := range errs {
		testutil.AssertErrorCode(t, err, shared.CodeInsufficientArea)
	}

	got, err := app.Allocator.GetRSNumber(ctx, rs.ID)
	require.NoError(t, err)
	testutil.AssertDecimal(t, "10", got.RemainingArea, "remaining_area")
	testutil.AssertDecimal(t, "90", got.AllocatedArea, "allocated_area")
	require.NoError(t, app.Allocator.ReconcileRSNumber(ctx, rs.ID))
}
