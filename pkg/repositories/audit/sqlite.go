package audit

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fadedpez/tucoblackjack/internal/logging"
	"github.com/fadedpez/tucoblackjack/pkg/db/migrations"
	"github.com/fadedpez/tucoblackjack/pkg/entities"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var schemaFS embed.FS

// SQLiteStore implements Store using SQLite. The full event is kept as JSON next to
// the columns used for lookups and pruning.
type SQLiteStore struct {
	db     *sql.DB
	logger *logging.Logger
}

// NewSQLiteStore opens (or creates) the audit database at dbPath and migrates it
func NewSQLiteStore(dbPath string, logger *logging.Logger) (*SQLiteStore, error) {
	logger = logging.OrDefault(logger).WithComponent("audit_repo")

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("error creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	m := migrations.NewMigrator(db, schemaFS, "migrations", "audit_migrations", migrations.SQLite, logger)
	if err := m.MigrateUp(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("error migrating audit schema: %w", err)
	}

	return &SQLiteStore{db: db, logger: logger}, nil
}

// Record implements Sink. Re-recording the same event ID is a no-op.
func (s *SQLiteStore) Record(ctx context.Context, event *entities.SettlementEvent) error {
	if err := validate(event); err != nil {
		return err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("error marshaling settlement: %w", err)
	}

	query := `
		INSERT INTO settlements (id, game_id, player_id, total_stake, total_credit, net, forced, settled_at, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`
	_, err = s.db.ExecContext(ctx, query,
		event.ID,
		event.GameID,
		event.PlayerID,
		event.TotalStake,
		event.TotalCredit,
		event.Net,
		event.Forced,
		event.SettledAt.UTC(),
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("error recording settlement: %w", err)
	}
	return nil
}

// ListByPlayer implements Store
func (s *SQLiteStore) ListByPlayer(ctx context.Context, playerID string, limit int) ([]*entities.SettlementEvent, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT payload FROM settlements
		WHERE player_id = ?
		ORDER BY settled_at DESC
		LIMIT ?
	`, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing settlements: %w", err)
	}
	defer rows.Close()

	var events []*entities.SettlementEvent
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("error scanning settlement: %w", err)
		}

		var event entities.SettlementEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			s.logger.Warn("skipping unreadable settlement", "player", playerID, "error", err)
			continue
		}
		events = append(events, &event)
	}

	return events, rows.Err()
}

// PruneOlderThan implements Store
func (s *SQLiteStore) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM settlements WHERE settled_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("error pruning settlements: %w", err)
	}
	return res.RowsAffected()
}

// Close implements Store
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
