package wallet

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fadedpez/tucoblackjack/internal/logging"
	"github.com/fadedpez/tucoblackjack/pkg/db/migrations"
	"github.com/fadedpez/tucoblackjack/pkg/entities"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations
var schemaFS embed.FS

// SQLiteRepository implements Repository using SQLite
type SQLiteRepository struct {
	db     *sql.DB
	logger *logging.Logger
}

// NewSQLiteRepository opens (or creates) the database at dbPath and migrates it
func NewSQLiteRepository(dbPath string, logger *logging.Logger) (*SQLiteRepository, error) {
	logger = logging.OrDefault(logger).WithComponent("wallet_repo")

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("error creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	m := migrations.NewMigrator(db, schemaFS, "migrations/sqlite", "wallet_migrations", migrations.SQLite, logger)
	if err := m.MigrateUp(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("error migrating wallet schema: %w", err)
	}

	return &SQLiteRepository{db: db, logger: logger}, nil
}

// GetWallet retrieves a wallet by user ID
func (r *SQLiteRepository) GetWallet(ctx context.Context, userID string) (*entities.Wallet, error) {
	query := `SELECT user_id, balance, created_at, updated_at FROM wallets WHERE user_id = ?`

	var wallet entities.Wallet
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&wallet.UserID,
		&wallet.Balance,
		&wallet.CreatedAt,
		&wallet.LastUpdated,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("error getting wallet: %w", err)
	}

	return &wallet, nil
}

// CreateWallet inserts the wallet unless one already exists
func (r *SQLiteRepository) CreateWallet(ctx context.Context, wallet *entities.Wallet) (bool, error) {
	now := time.Now().UTC()
	query := `
		INSERT INTO wallets (user_id, balance, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query, wallet.UserID, wallet.Balance, now, now)
	if err != nil {
		return false, fmt.Errorf("error creating wallet: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error getting rows affected: %w", err)
	}

	if rowsAffected == 1 {
		r.logger.Info("wallet created", "user", wallet.UserID, "balance", wallet.Balance)
	}
	return rowsAffected == 1, nil
}

// DeductIfSufficient subtracts amount only if the balance covers it
func (r *SQLiteRepository) DeductIfSufficient(ctx context.Context, userID string, amount int64) (int64, bool, error) {
	if amount <= 0 {
		return 0, false, ErrInvalidAmount
	}

	query := `
		UPDATE wallets
		SET balance = balance - ?,
			updated_at = ?
		WHERE user_id = ? AND balance >= ?
		RETURNING balance
	`

	var balance int64
	err := r.db.QueryRowContext(ctx, query, amount, time.Now().UTC(), userID, amount).Scan(&balance)
	if err == nil {
		return balance, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, fmt.Errorf("error deducting balance: %w", err)
	}

	// No row updated: either no wallet or not enough credits
	wallet, err := r.GetWallet(ctx, userID)
	if err != nil {
		return 0, false, err
	}
	return wallet.Balance, false, nil
}

// Increment adds amount to the balance
func (r *SQLiteRepository) Increment(ctx context.Context, userID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	query := `
		UPDATE wallets
		SET balance = balance + ?,
			updated_at = ?
		WHERE user_id = ?
		RETURNING balance
	`

	var balance int64
	err := r.db.QueryRowContext(ctx, query, amount, time.Now().UTC(), userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrWalletNotFound
		}
		return 0, fmt.Errorf("error incrementing balance: %w", err)
	}

	return balance, nil
}

// AddTransaction records a new transaction
func (r *SQLiteRepository) AddTransaction(ctx context.Context, transaction *entities.Transaction) error {
	if transaction.ID == "" {
		transaction.ID = uuid.New().String()
	}
	if transaction.Timestamp.IsZero() {
		transaction.Timestamp = time.Now().UTC()
	}

	query := `
		INSERT INTO transactions (
			id, user_id, amount, type, reference_id, description, timestamp, balance_after
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		transaction.ID,
		transaction.UserID,
		transaction.Amount,
		transaction.Type,
		transaction.ReferenceID,
		transaction.Description,
		transaction.Timestamp,
		transaction.BalanceAfter,
	)
	if err != nil {
		return fmt.Errorf("error adding transaction: %w", err)
	}

	return nil
}

// GetTransactions retrieves recent transactions for a user, newest first
func (r *SQLiteRepository) GetTransactions(ctx context.Context, userID string, limit int) ([]*entities.Transaction, error) {
	query := `
		SELECT id, user_id, amount, type, reference_id, description, timestamp, balance_after
		FROM transactions
		WHERE user_id = ?
		ORDER BY timestamp DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// scanTransactions reads transaction rows in the column order used by both SQL backends
func scanTransactions(rows *sql.Rows) ([]*entities.Transaction, error) {
	transactions := make([]*entities.Transaction, 0)

	for rows.Next() {
		var tx entities.Transaction
		var referenceID, description sql.NullString

		err := rows.Scan(
			&tx.ID,
			&tx.UserID,
			&tx.Amount,
			&tx.Type,
			&referenceID,
			&description,
			&tx.Timestamp,
			&tx.BalanceAfter,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning transaction row: %w", err)
		}
		tx.ReferenceID = referenceID.String
		tx.Description = description.String

		transactions = append(transactions, &tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	return transactions, nil
}
