package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/landerp/backend/internal/domain/land"
	"github.com/landerp/backend/internal/domain/shared"
	"github.com/landerp/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRSNumber(t *testing.T, number string, total int64) *land.RSNumber {
	t.Helper()
	rs, err := land.NewRSNumber(number, "Green Valley", "North block", decimal.NewFromInt(total), valueobject.AreaUnitKatha)
	require.NoError(t, err)
	return rs
}

func TestGormRSNumberRepository_SaveWithLock_VersionConflict(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	repo := NewGormRSNumberRepository(db)

	rs := newTestRSNumber(t, "RS-100", 100)
	rs.MarkPersisted()
	require.NoError(t, rs.UpdateDetails("Green Valley II", "North block", ""))
	assert.Equal(t, 2, rs.Version)

	mock.ExpectExec(`UPDATE "rs_numbers" SET .* WHERE \(?id = \$\d+ AND version = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SaveWithLock(context.Background(), rs)
	require.Error(t, err)
	assert.True(t, shared.IsCode(err, shared.CodeConcurrencyConflict))
	assert.Equal(t, 1, rs.PersistedVersion(), "a failed save must not move the persisted version")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRSNumberRepository_SaveWithLock_Success(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	repo := NewGormRSNumberRepository(db)

	rs := newTestRSNumber(t, "RS-101", 100)
	rs.MarkPersisted()
	require.NoError(t, rs.UpdateDetails("Green Valley", "South block", "corner"))

	mock.ExpectExec(`UPDATE "rs_numbers" SET .* WHERE \(?id = \$\d+ AND version = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SaveWithLock(context.Background(), rs))
	assert.Equal(t, 2, rs.PersistedVersion())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRSNumberRepository_FindByIDForUpdate_LocksRow(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	repo := NewGormRSNumberRepository(db)

	id := uuid.New()
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "created_at", "updated_at", "version", "number", "project_name",
		"location", "unit_type", "total_area", "sold_area", "allocated_area", "remaining_area", "notes"}).
		AddRow(id.String(), now, now, 3, "RS-7", "Green Valley", "", "KATHA", "100", "10", "20", "70", "")

	mock.ExpectQuery(`SELECT \* FROM "rs_numbers" WHERE id = \$1 .*FOR UPDATE`).
		WithArgs(id, 1).
		WillReturnRows(rows)

	rs, err := repo.FindByIDForUpdate(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "RS-7", rs.Number)
	assert.Equal(t, 3, rs.PersistedVersion())
	assert.True(t, rs.RemainingArea.Equal(decimal.NewFromInt(70)))
	assert.NoError(t, rs.CheckInvariant())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRSNumberRepository_FindByID_NotFound(t *testing.T) {
	repo := NewGormRSNumberRepository(newSQLiteDB(t))

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormLandRepositories_SQLite(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	rsRepo := NewGormRSNumberRepository(db)
	plotRepo := NewGormPlotRepository(db)
	allocator := land.NewAllocator()

	rs := newTestRSNumber(t, "RS-200", 100)
	require.NoError(t, rsRepo.Save(ctx, rs))
	assert.False(t, rs.IsNew())

	exists, err := rsRepo.ExistsByNumber(ctx, "RS-200")
	require.NoError(t, err)
	assert.True(t, exists)

	p1, err := allocator.CreatePlot(rs, "A-1", decimal.NewFromInt(30), land.PlotStatusAvailable)
	require.NoError(t, err)
	p2, err := allocator.CreatePlot(rs, "A-2", decimal.NewFromInt(25), land.PlotStatusAvailable)
	require.NoError(t, err)
	require.NoError(t, plotRepo.Save(ctx, p1))
	require.NoError(t, plotRepo.Save(ctx, p2))

	require.NoError(t, allocator.MarkSold(rs, p2, uuid.New(), time.Now()))
	require.NoError(t, plotRepo.SaveWithLock(ctx, p2))
	require.NoError(t, rsRepo.SaveWithLock(ctx, rs))

	loaded, err := rsRepo.FindByID(ctx, rs.ID)
	require.NoError(t, err)
	assert.True(t, loaded.AllocatedArea.Equal(decimal.NewFromInt(30)))
	assert.True(t, loaded.SoldArea.Equal(decimal.NewFromInt(25)))
	assert.True(t, loaded.RemainingArea.Equal(decimal.NewFromInt(45)))

	totals, err := plotRepo.SumActiveArea(ctx, rs.ID)
	require.NoError(t, err)
	assert.NoError(t, loaded.Reconcile(totals))

	taken, err := plotRepo.ExistsByPlotNumber(ctx, rs.ID, "A-1")
	require.NoError(t, err)
	assert.True(t, taken)

	sold := land.PlotStatusSold
	plots, total, err := plotRepo.FindAll(ctx, land.PlotFilter{
		Filter:     shared.Filter{Page: 1, PageSize: 10},
		RSNumberID: &rs.ID,
		Status:     &sold,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, plots, 1)
	assert.Equal(t, "A-2", plots[0].PlotNumber)
	require.NotNil(t, plots[0].ClientID)

	// a stale copy of the plot cannot overwrite the newer row
	stale, err := plotRepo.FindByID(ctx, p1.ID)
	require.NoError(t, err)
	fresh, err := plotRepo.FindByID(ctx, p1.ID)
	require.NoError(t, err)
	fresh.UpdateDetails("North", "20ft", "")
	require.NoError(t, plotRepo.SaveWithLock(ctx, fresh))
	stale.UpdateDetails("South", "30ft", "")
	err = plotRepo.SaveWithLock(ctx, stale)
	assert.True(t, shared.IsCode(err, shared.CodeConcurrencyConflict))

	require.NoError(t, plotRepo.Delete(ctx, p1.ID))
	assert.ErrorIs(t, plotRepo.Delete(ctx, p1.ID), shared.ErrNotFound)
}

func TestGormRSNumberRepository_FindAll_Search(t *testing.T) {
	ctx := context.Background()
	repo := NewGormRSNumberRepository(newSQLiteDB(t))

	for _, n := range []string{"RS-300", "RS-301", "DAG-9"} {
		require.NoError(t, repo.Save(ctx, newTestRSNumber(t, n, 50)))
	}

	items, total, err := repo.FindAll(ctx, land.RSNumberFilter{
		Filter: shared.Filter{Page: 1, PageSize: 10, Search: "rs-30", OrderBy: "number", OrderDir: "asc"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, items, 2)
	assert.Equal(t, "RS-300", items[0].Number)
	assert.Equal(t, "RS-301", items[1].Number)
}
