package migration

import (
	"testing"
	"testing/fstest"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingVersions(t *testing.T) {
	fsys := fstest.MapFS{
		"20260101000000_schema.up.sql":    {Data: []byte("SELECT 1;")},
		"20260101000000_schema.down.sql":  {Data: []byte("SELECT 1;")},
		"20260101000100_seed.up.sql":      {Data: []byte("SELECT 1;")},
		"20260101000100_seed.down.sql":    {Data: []byte("SELECT 1;")},
		"20260201000000_indexes.up.sql":   {Data: []byte("SELECT 1;")},
		"20260201000000_indexes.down.sql": {Data: []byte("SELECT 1;")},
	}
	src, err := iofs.New(fsys, ".")
	require.NoError(t, err)
	defer src.Close()

	pending, err := pendingVersions(src, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint{20260101000000, 20260101000100, 20260201000000}, pending)

	pending, err = pendingVersions(src, 20260101000100)
	require.NoError(t, err)
	assert.Equal(t, []uint{20260201000000}, pending)

	pending, err = pendingVersions(src, 20260201000000)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	names, err := ListMigrations(Embedded())
	require.NoError(t, err)
	assert.NotEmpty(t, names)

	src, err := iofs.New(Embedded(), ".")
	require.NoError(t, err)
	defer src.Close()

	versions, err := pendingVersions(src, 0)
	require.NoError(t, err)
	for _, v := range versions {
		_, _, err := src.ReadDown(v)
		assert.NoError(t, err, "version %d has no down migration", v)
	}
}
