package migration

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "migrations.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func baseFiles() fstest.MapFS {
	return fstest.MapFS{
		"001_rooms.sql":        {Data: []byte("CREATE TABLE rooms (code TEXT PRIMARY KEY);")},
		"002_reservations.sql": {Data: []byte("CREATE TABLE reservations (id INTEGER PRIMARY KEY);\nCREATE INDEX idx_res ON reservations(id);")},
	}
}

func TestManagerRunMigrations(t *testing.T) {
	ctx := context.Background()

	t.Run("applies pending migrations once", func(t *testing.T) {
		db := openTestDB(t)
		manager := NewManager(NewScanner(baseFiles()), NewExecutor(db), quietLogger())

		require.NoError(t, manager.RunMigrations(ctx))
		require.NoError(t, manager.RunMigrations(ctx))

		status, err := manager.Status(ctx)
		require.NoError(t, err)
		assert.Equal(t, "002", status.CurrentVersion)
		assert.Zero(t, status.PendingCount)
		assert.Len(t, status.AppliedMigrations, 2)

		var count int
		require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('rooms', 'reservations')`).Scan(&count))
		assert.Equal(t, 2, count)
	})

	t.Run("reports pending migrations added later", func(t *testing.T) {
		db := openTestDB(t)
		files := baseFiles()
		require.NoError(t, NewManager(NewScanner(files), NewExecutor(db), quietLogger()).RunMigrations(ctx))

		files["003_users.sql"] = &fstest.MapFile{Data: []byte("CREATE TABLE users (id TEXT PRIMARY KEY);")}
		manager := NewManager(NewScanner(files), NewExecutor(db), quietLogger())

		pending, err := manager.PendingMigrations(ctx)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, "003", pending[0].Version)
	})

	t.Run("rolls back a failing migration", func(t *testing.T) {
		db := openTestDB(t)
		files := fstest.MapFS{
			"001_broken.sql": {Data: []byte("CREATE TABLE ok_table (id INTEGER);\nCREATE TABLE broken (;")},
		}
		manager := NewManager(NewScanner(files), NewExecutor(db), quietLogger())

		err := manager.RunMigrations(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMigrationFailed)

		var count int
		require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE name = 'ok_table'`).Scan(&count))
		assert.Zero(t, count)

		applied, err := NewExecutor(db).GetAppliedVersions(ctx)
		require.NoError(t, err)
		assert.Empty(t, applied)
	})

	t.Run("detects edited migrations", func(t *testing.T) {
		db := openTestDB(t)
		files := baseFiles()
		require.NoError(t, NewManager(NewScanner(files), NewExecutor(db), quietLogger()).RunMigrations(ctx))

		files["001_rooms.sql"] = &fstest.MapFile{Data: []byte("CREATE TABLE rooms (code TEXT PRIMARY KEY, name TEXT);")}
		err := NewManager(NewScanner(files), NewExecutor(db), quietLogger()).RunMigrations(ctx)
		assert.ErrorIs(t, err, ErrChecksumMismatch)
	})

	t.Run("detects gaps in the sequence", func(t *testing.T) {
		db := openTestDB(t)
		files := fstest.MapFS{
			"001_rooms.sql": {Data: []byte("CREATE TABLE rooms (code TEXT PRIMARY KEY);")},
			"003_users.sql": {Data: []byte("CREATE TABLE users (id TEXT PRIMARY KEY);")},
		}
		err := NewManager(NewScanner(files), NewExecutor(db), quietLogger()).RunMigrations(ctx)
		assert.ErrorIs(t, err, ErrVersionConflict)
	})
}
