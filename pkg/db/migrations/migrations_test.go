package migrations

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/fadedpez/tucoblackjack/internal/logging"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrateUpAppliesInVersionOrder(t *testing.T) {
	db := openTestDB(t)
	fsys := fstest.MapFS{
		"sql/002_add_note.sql":      {Data: []byte(`ALTER TABLE things ADD COLUMN note TEXT;`)},
		"sql/001_create_things.sql": {Data: []byte(`CREATE TABLE things (id TEXT PRIMARY KEY);`)},
		"sql/README.md":             {Data: []byte(`ignored`)},
	}

	m := NewMigrator(db, fsys, "sql", "test_migrations", SQLite, logging.Discard())
	require.NoError(t, m.MigrateUp(context.Background()))

	_, err := db.Exec(`INSERT INTO things (id, note) VALUES ('a', 'b')`)
	assert.NoError(t, err, "both migrations should have run")

	applied, err := m.GetAppliedMigrations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"001": true, "002": true}, applied)
}

func TestMigrateUpIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	fsys := fstest.MapFS{
		"sql/001_create_things.sql": {Data: []byte(`CREATE TABLE things (id TEXT PRIMARY KEY);`)},
	}
	m := NewMigrator(db, fsys, "sql", "test_migrations", SQLite, logging.Discard())

	require.NoError(t, m.MigrateUp(context.Background()))
	assert.NoError(t, m.MigrateUp(context.Background()), "second run must skip the applied migration")
}

func TestLoadMigrationsRejectsBadName(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/nounderscore.sql": {Data: []byte(`SELECT 1;`)},
	}
	m := NewMigrator(nil, fsys, "sql", "test_migrations", SQLite, logging.Discard())

	_, err := m.LoadMigrations()
	assert.Error(t, err)
}

func TestFailedMigrationIsNotRecorded(t *testing.T) {
	db := openTestDB(t)
	fsys := fstest.MapFS{
		"sql/001_broken.sql": {Data: []byte(`CREATE TABLE;`)},
	}
	m := NewMigrator(db, fsys, "sql", "test_migrations", SQLite, logging.Discard())

	require.Error(t, m.MigrateUp(context.Background()))

	applied, err := m.GetAppliedMigrations(context.Background())
	require.NoError(t, err)
	assert.Empty(t, applied)
}
