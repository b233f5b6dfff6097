package persistence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	appshared "github.com/landerp/backend/internal/application/shared"
	"github.com/landerp/backend/internal/domain/partner"
	"github.com/landerp/backend/internal/domain/settings"
	"github.com/landerp/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormClientRepository_SaveAndSearch(t *testing.T) {
	ctx := context.Background()
	repo := NewGormClientRepository(newSQLiteDB(t))

	client, err := partner.NewClient("cl-001", "Rahim Uddin", "+880 1711-000000")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, client))

	loaded, err := repo.FindByCode(ctx, "CL-001")
	require.NoError(t, err)
	require.NoError(t, loaded.Update("Rahim Uddin Ahmed", "+880 1711-000001"))
	require.NoError(t, repo.Save(ctx, loaded))

	// the first copy is stale now
	require.NoError(t, client.Update("Someone Else", "+880 1711-000002"))
	err = repo.Save(ctx, client)
	assert.True(t, shared.IsCode(err, shared.CodeConcurrencyConflict))

	list, total, err := repo.FindAll(ctx, partner.ClientFilter{
		Filter: shared.Filter{Page: 1, PageSize: 10, Search: "ahmed"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, "+880 1711-000001", list[0].Phone)

	exists, err := repo.ExistsByCode(ctx, "CL-001")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, repo.Delete(ctx, client.ID))
	_, err = repo.FindByID(ctx, client.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormSettingsRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	repo := NewGormSettingsRepository(newSQLiteDB(t))
	admin := uuid.New()
	at := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Upsert(ctx, []settings.Setting{
		{Key: settings.KeyOfficeChargePercent, Value: "10", UpdatedBy: admin, UpdatedAt: at},
		{Key: settings.KeyInstallmentReminderDays, Value: "7", UpdatedBy: admin, UpdatedAt: at},
	}))
	require.NoError(t, repo.Upsert(ctx, []settings.Setting{
		{Key: settings.KeyOfficeChargePercent, Value: "12.5", UpdatedBy: admin, UpdatedAt: at.Add(time.Hour)},
	}))

	stored, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, settings.KeyInstallmentReminderDays, stored[0].Key)
	assert.Equal(t, "12.5", stored[1].Value)
	assert.Equal(t, admin, stored[1].UpdatedBy)
}

func TestGormNumberSequence_Next(t *testing.T) {
	ctx := context.Background()
	seq := NewGormNumberSequence(newSQLiteDB(t))
	jan := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		prefix string
		at     time.Time
		want   string
	}{
		{"SL", jan, "SL-202601-00001"},
		{"SL", jan.AddDate(0, 0, 3), "SL-202601-00002"},
		{"RCV", jan, "RCV-202601-00001"},
		{"SL", jan.AddDate(0, 1, 0), "SL-202602-00001"},
		{"SL", jan, "SL-202601-00003"},
	}
	for _, tt := range tests {
		got, err := seq.Next(ctx, tt.prefix, tt.at)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestGormNumberSequence_ConcurrentCallersGetDistinctNumbers(t *testing.T) {
	ctx := context.Background()
	scope := NewGormTransactionScope(newSQLiteDB(t))
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	const callers = 10
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[string]bool)
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var got string
			err := scope.Execute(ctx, func(repos appshared.Repositories) error {
				var err error
				got, err = repos.Sequences().Next(ctx, "EXP", at)
				return err
			})
			assert.NoError(t, err)
			mu.Lock()
			seen[got] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, callers)
}

func TestFormatDocumentNumber(t *testing.T) {
	assert.Equal(t, "CAN-202612-00042", FormatDocumentNumber("CAN", "202612", 42))
	assert.Equal(t, "SL-202601-123456", FormatDocumentNumber("SL", "202601", 123456))
}

func TestGormTransactionScope_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	scope := NewGormTransactionScope(db)
	boom := errors.New("boom")

	client, err := partner.NewClient("CL-900", "Karim", "01711000000")
	require.NoError(t, err)
	err = scope.Execute(ctx, func(repos appshared.Repositories) error {
		if err := repos.Clients().Save(ctx, client); err != nil {
			return err
		}
		_, err := repos.Sequences().Next(ctx, "SL", time.Now())
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	exists, err := NewGormClientRepository(db).ExistsByCode(ctx, "CL-900")
	require.NoError(t, err)
	assert.False(t, exists)

	next, err := NewGormNumberSequence(db).Next(ctx, "SL", time.Now())
	require.NoError(t, err)
	assert.Contains(t, next, "-00001")
}
