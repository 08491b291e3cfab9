package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/fadedpez/tucoblackjack/internal/logging"
)

// Dialect selects placeholder and type syntax for the migrations table
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// Migration represents a database migration
type Migration struct {
	Version     string
	Description string
	SQL         string
}

// Migrator applies versioned .sql files from a filesystem, usually an embed.FS
type Migrator struct {
	db      *sql.DB
	fsys    fs.FS
	dir     string
	table   string
	dialect Dialect
	logger  *logging.Logger
}

// NewMigrator creates a new migrator. table names the bookkeeping table so several
// repositories can share one database.
func NewMigrator(db *sql.DB, fsys fs.FS, dir, table string, dialect Dialect, logger *logging.Logger) *Migrator {
	return &Migrator{
		db:      db,
		fsys:    fsys,
		dir:     dir,
		table:   table,
		dialect: dialect,
		logger:  logging.OrDefault(logger).WithComponent("migrations"),
	}
}

// Initialize creates the migrations table if it doesn't exist
func (m *Migrator) Initialize(ctx context.Context) error {
	appliedAt := "TIMESTAMP DEFAULT CURRENT_TIMESTAMP"
	if m.dialect == Postgres {
		appliedAt = "TIMESTAMPTZ DEFAULT NOW()"
	}
	_, err := m.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version TEXT PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at %s
		)`, m.table, appliedAt))
	return err
}

// GetAppliedMigrations returns a map of already applied migrations
func (m *Migrator) GetAppliedMigrations(ctx context.Context) (map[string]bool, error) {
	rows, err := m.db.QueryContext(ctx, fmt.Sprintf("SELECT version FROM %s", m.table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}

	return applied, rows.Err()
}

// LoadMigrations loads all migration files, sorted by version
func (m *Migrator) LoadMigrations() ([]Migration, error) {
	entries, err := fs.ReadDir(m.fsys, m.dir)
	if err != nil {
		return nil, err
	}

	var migrations []Migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		content, err := fs.ReadFile(m.fsys, path.Join(m.dir, entry.Name()))
		if err != nil {
			return nil, err
		}

		// Parse version and description from filename (e.g., "001_initial_schema.sql")
		parts := strings.SplitN(strings.TrimSuffix(entry.Name(), ".sql"), "_", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid migration filename: %s", entry.Name())
		}

		migrations = append(migrations, Migration{
			Version:     parts[0],
			Description: strings.ReplaceAll(parts[1], "_", " "),
			SQL:         string(content),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

// ApplyMigration applies a single migration inside a transaction
func (m *Migrator) ApplyMigration(ctx context.Context, migration Migration) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, migration.SQL); err != nil {
		tx.Rollback()
		return fmt.Errorf("error applying migration %s: %w", migration.Version, err)
	}

	insert := fmt.Sprintf("INSERT INTO %s (version, description) VALUES (?, ?)", m.table)
	if m.dialect == Postgres {
		insert = fmt.Sprintf("INSERT INTO %s (version, description) VALUES ($1, $2)", m.table)
	}
	if _, err := tx.ExecContext(ctx, insert, migration.Version, migration.Description); err != nil {
		tx.Rollback()
		return fmt.Errorf("error recording migration %s: %w", migration.Version, err)
	}

	return tx.Commit()
}

// MigrateUp applies all pending migrations
func (m *Migrator) MigrateUp(ctx context.Context) error {
	if err := m.Initialize(ctx); err != nil {
		return fmt.Errorf("error creating %s table: %w", m.table, err)
	}

	applied, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}

	migrations, err := m.LoadMigrations()
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if applied[migration.Version] {
			continue
		}

		m.logger.Info("applying migration", "table", m.table, "version", migration.Version, "description", migration.Description)
		if err := m.ApplyMigration(ctx, migration); err != nil {
			return err
		}
	}

	return nil
}
