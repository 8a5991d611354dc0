package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationRunner(t *testing.T) {
	t.Run("loadMigrations", func(t *testing.T) {
		migrations, err := loadMigrations()
		require.NoError(t, err)
		require.Len(t, migrations, 2)

		for i := 1; i < len(migrations); i++ {
			assert.Greater(t, migrations[i].Version, migrations[i-1].Version, "migrations not sorted")
		}
		for _, m := range migrations {
			assert.NotEmpty(t, m.Up, "migration %d missing up SQL", m.Version)
			assert.NotEmpty(t, m.Down, "migration %d missing down SQL", m.Version)
		}
		assert.Equal(t, "create_catalog", migrations[0].Name)
		assert.Equal(t, "create_album_log", migrations[1].Name)
	})

	t.Run("RunMigrations And Rollback", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		require.NoError(t, err)
		defer db.Close()
		db.SetMaxOpenConns(1)

		require.NoError(t, RunMigrations(db))

		var count int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
		assert.Equal(t, 2, count)

		_, err = db.Exec("SELECT 1 FROM catalog_items LIMIT 1")
		assert.NoError(t, err, "catalog_items table should exist after migrations")
		_, err = db.Exec("SELECT 1 FROM album_log LIMIT 1")
		assert.NoError(t, err, "album_log table should exist after migrations")

		require.NoError(t, RollbackMigration(db))

		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
		assert.Equal(t, 1, count)
		_, err = db.Exec("SELECT 1 FROM album_log LIMIT 1")
		assert.Error(t, err, "album_log should be dropped by rollback")

		require.NoError(t, RollbackMigration(db))
		assert.Error(t, RollbackMigration(db), "nothing left to roll back")
	})

	t.Run("Idempotent Migrations", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		require.NoError(t, err)
		defer db.Close()
		db.SetMaxOpenConns(1)

		require.NoError(t, RunMigrations(db))
		require.NoError(t, RunMigrations(db))

		var count int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))

		migrations, _ := loadMigrations()
		assert.Equal(t, len(migrations), count)
	})
}

func TestStripComments(t *testing.T) {
	got := stripComments("-- header\nCREATE TABLE x (id TEXT) -- trailing\n\n")
	assert.Equal(t, "CREATE TABLE x (id TEXT)", got)
}
