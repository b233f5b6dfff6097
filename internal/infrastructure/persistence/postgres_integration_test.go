//go:build integration

package persistence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	appshared "github.com/landerp/backend/internal/application/shared"
	"github.com/landerp/backend/internal/domain/land"
	"github.com/landerp/backend/internal/domain/partner"
	"github.com/landerp/backend/internal/domain/sales"
	"github.com/landerp/backend/internal/domain/shared"
	"github.com/landerp/backend/internal/infrastructure/migration"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newPostgresDB starts a throwaway postgres container and applies the
// embedded migrations to it
func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("landerp_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(10)
	t.Cleanup(func() { _ = sqlDB.Close() })

	m, err := migration.New(sqlDB, migration.Embedded(), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	return db
}

func TestPostgres_ConcurrentPlotCreationNeverOverAllocates(t *testing.T) {
	ctx := context.Background()
	db := newPostgresDB(t)
	scope := NewGormTransactionScope(db)

	rs := newTestRSNumber(t, "RS-900", 100)
	require.NoError(t, NewGormRSNumberRepository(db).Save(ctx, rs))

	const workers = 6
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		rejected  int
		allocator = land.NewAllocator()
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := scope.Execute(ctx, func(repos appshared.Repositories) error {
				locked, err := repos.RSNumbers().FindByIDForUpdate(ctx, rs.ID)
				if err != nil {
					return err
				}
				plot, err := allocator.CreatePlot(locked, "P-"+string(rune('A'+i)), decimal.NewFromInt(30), land.PlotStatusAvailable)
				if err != nil {
					return err
				}
				if err := repos.Plots().Save(ctx, plot); err != nil {
					return err
				}
				return repos.RSNumbers().SaveWithLock(ctx, locked)
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case shared.IsCode(err, shared.CodeInsufficientArea):
				rejected++
			default:
				assert.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 3, created)
	assert.Equal(t, workers-3, rejected)

	final, err := NewGormRSNumberRepository(db).FindByID(ctx, rs.ID)
	require.NoError(t, err)
	assert.True(t, final.AllocatedArea.Equal(decimal.NewFromInt(90)))
	assert.True(t, final.RemainingArea.Equal(decimal.NewFromInt(10)))
	totals, err := NewGormPlotRepository(db).SumActiveArea(ctx, rs.ID)
	require.NoError(t, err)
	assert.NoError(t, final.Reconcile(totals))
}

func TestPostgres_PlotAreasFitTheSchema(t *testing.T) {
	ctx := context.Background()
	db := newPostgresDB(t)
	scope := NewGormTransactionScope(db)
	allocator := land.NewAllocator()

	rs := newTestRSNumber(t, "RS-901", 100)
	require.NoError(t, NewGormRSNumberRepository(db).Save(ctx, rs))

	plots := map[string]string{"Z-0": "0", "Z-1": "33.33335"}
	for number, area := range plots {
		err := scope.Execute(ctx, func(repos appshared.Repositories) error {
			locked, err := repos.RSNumbers().FindByIDForUpdate(ctx, rs.ID)
			if err != nil {
				return err
			}
			plot, err := allocator.CreatePlot(locked, number, decimal.RequireFromString(area), land.PlotStatusAvailable)
			if err != nil {
				return err
			}
			if err := repos.Plots().Save(ctx, plot); err != nil {
				return err
			}
			return repos.RSNumbers().SaveWithLock(ctx, locked)
		})
		require.NoError(t, err, "plot %s with area %s", number, area)
	}

	final, err := NewGormRSNumberRepository(db).FindByID(ctx, rs.ID)
	require.NoError(t, err)
	assert.True(t, final.AllocatedArea.Equal(decimal.RequireFromString("33.3334")), final.AllocatedArea.String())
	assert.True(t, final.RemainingArea.Equal(decimal.RequireFromString("66.6666")), final.RemainingArea.String())
	assert.NoError(t, final.CheckInvariant())
}

func TestPostgres_OneLiveSalePerPlot(t *testing.T) {
	ctx := context.Background()
	db := newPostgresDB(t)
	allocator := land.NewAllocator()

	rs := newTestRSNumber(t, "RS-901", 100)
	plot, err := allocator.CreatePlot(rs, "B-1", decimal.NewFromInt(20), land.PlotStatusAvailable)
	require.NoError(t, err)
	require.NoError(t, NewGormRSNumberRepository(db).Save(ctx, rs))
	require.NoError(t, NewGormPlotRepository(db).Save(ctx, plot))

	client, err := partner.NewClient("CL-1", "Nasima Akter", "01711000000")
	require.NoError(t, err)
	require.NoError(t, NewGormClientRepository(db).Save(ctx, client))

	saleRepo := NewGormSaleRepository(db)
	newSale := func(number string) *sales.Sale {
		sale, err := sales.NewSale(number, client.ID, plot.ID, rs.ID, decimal.NewFromInt(500000),
			saleDate, sales.DefaultStagePlan(), uuid.New())
		require.NoError(t, err)
		return sale
	}

	first := newSale("SL-202601-00001")
	require.NoError(t, saleRepo.Save(ctx, first))
	assert.Error(t, saleRepo.Save(ctx, newSale("SL-202601-00002")))

	_, err = first.ApplyApprovedReceipt(uuid.New(), decimal.NewFromInt(50000))
	require.NoError(t, err)
	require.NoError(t, saleRepo.SaveWithLock(ctx, first))

	loaded, err := saleRepo.FindByIDForUpdate(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, loaded.PaidAmount.Equal(decimal.NewFromInt(50000)))
	assert.Equal(t, sales.StageStatusCompleted, loaded.Stages[0].Status)
	assert.NoError(t, loaded.CheckInvariant())
}
