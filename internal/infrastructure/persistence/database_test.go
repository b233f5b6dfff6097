package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/landerp/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newSQLMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: conn, DriverName: "postgres"}), &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	})
	require.NoError(t, err)
	return &Database{DB: gormDB}, mock
}

func TestNewDatabase_SQLiteMigratesEveryTable(t *testing.T) {
	db, err := NewDatabase(&config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	for _, table := range []string{
		"rs_numbers", "plots", "clients", "sales", "sale_stages",
		"cancellations", "refund_payments", "receipts", "expenses",
		"approval_history", "accounts", "account_transactions",
		"expense_categories", "settings", "number_sequences",
	} {
		assert.True(t, db.DB.Migrator().HasTable(table), table)
	}
	assert.Equal(t, 1, db.Stats().MaxOpenConnections)
	assert.NoError(t, db.PingContext(context.Background()))
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "file::memory:?_foreign_keys=on", sqliteDSN(":memory:"))
	assert.Equal(t, "/var/lib/landerp.db?_busy_timeout=5000&_foreign_keys=on", sqliteDSN("/var/lib/landerp.db"))
}

func TestDatabase_PingContext(t *testing.T) {
	db, mock := newSQLMockDatabase(t)

	mock.ExpectPing()
	require.NoError(t, db.PingContext(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	assert.EqualError(t, db.PingContext(context.Background()), "connection refused")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabase_Close(t *testing.T) {
	db, mock := newSQLMockDatabase(t)

	mock.ExpectClose()
	require.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
