package migration

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add plots table", "add_plots_table"},
		{"Add-Sale-Stages", "add_sale_stages"},
		{"ADD_REFUND_PAYMENTS", "add_refund_payments"},
		{"add__receipt__index", "add_receipt_index"},
		{"Seed Categories 2", "seed_categories_2"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "migrations")

	mf, err := CreateMigration(dir, "add plot facing index", "Index plots by facing")
	require.NoError(t, err)

	assert.Len(t, mf.Version, 14)
	upBase := strings.TrimSuffix(filepath.Base(mf.UpPath), ".up.sql")
	downBase := strings.TrimSuffix(filepath.Base(mf.DownPath), ".down.sql")
	assert.Equal(t, upBase, downBase)
	assert.True(t, strings.HasSuffix(upBase, "_add_plot_facing_index"))

	upContent, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(upContent), "add plot facing index")
	assert.Contains(t, string(upContent), "Index plots by facing")

	downContent, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(downContent), "Rollback")

	_, err = CreateMigration(dir, "!!!", "")
	assert.Error(t, err)

	listed, err := ListMigrations(Dir(dir))
	require.NoError(t, err)
	assert.Equal(t, []string{upBase}, listed)
}

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"000002_add_sales.up.sql":   {Data: []byte("--")},
		"000002_add_sales.down.sql": {Data: []byte("--")},
		"000001_init.up.sql":        {Data: []byte("--")},
		"000001_init.down.sql":      {Data: []byte("--")},
		"README.md":                 {Data: []byte("docs")},
		".gitkeep":                  {Data: []byte("")},
		"embed.go":                  {Data: []byte("package migrations")},
		"subdir.up.sql/x":           {Data: []byte("--")},
	}

	listed, err := ListMigrations(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_init", "000002_add_sales"}, listed)
}

func TestListMigrations_MissingDirectory(t *testing.T) {
	listed, err := ListMigrations(Dir(filepath.Join(t.TempDir(), "missing")))
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestEmbeddedMigrations_ArePaired(t *testing.T) {
	fsys := Embedded()
	listed, err := ListMigrations(fsys)
	require.NoError(t, err)
	require.NotEmpty(t, listed)

	for _, name := range listed {
		up, err := fs.ReadFile(fsys, name+".up.sql")
		require.NoError(t, err)
		assert.NotEmpty(t, strings.TrimSpace(string(up)))

		_, err = fs.Stat(fsys, name+".down.sql")
		assert.NoError(t, err, "missing down migration for %s", name)
	}
}

func TestEmbeddedMigrations_CreateEveryTable(t *testing.T) {
	up, err := fs.ReadFile(Embedded(), "20260101000000_land_sales_schema.up.sql")
	require.NoError(t, err)

	for _, table := range []string{
		"rs_numbers", "plots", "clients", "sales", "sale_stages",
		"cancellations", "refund_payments", "accounts", "account_transactions",
		"expense_categories", "receipts", "expenses", "approval_history",
		"settings", "number_sequences",
	} {
		assert.Contains(t, string(up), "CREATE TABLE "+table+" (")
	}
}
