package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAndMigrate_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "colorpress.db")

	db, err := Open(DriverSQLite, path)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db, DriverSQLite))
	// A second run has nothing to apply.
	require.NoError(t, Migrate(db, DriverSQLite))

	for _, table := range []string{"themes", "generated_pages", "approved_pages", "scheduler_settings", "scheduled_posts"} {
		var n int
		err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n)
		require.NoError(t, err, table)
		assert.Equal(t, 0, n, table)
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("mysql", "whatever")
	assert.Error(t, err)
}
