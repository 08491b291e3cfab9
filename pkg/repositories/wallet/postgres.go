package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fadedpez/tucoblackjack/internal/logging"
	"github.com/fadedpez/tucoblackjack/pkg/db/migrations"
	"github.com/fadedpez/tucoblackjack/pkg/entities"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	db     *sql.DB
	logger *logging.Logger
}

// NewPostgresRepository connects to dsn and migrates the wallet schema
func NewPostgresRepository(ctx context.Context, dsn string, logger *logging.Logger) (*PostgresRepository, error) {
	logger = logging.OrDefault(logger).WithComponent("wallet_repo")

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to postgres: %w", err)
	}

	m := migrations.NewMigrator(db, schemaFS, "migrations/postgres", "wallet_migrations", migrations.Postgres, logger)
	if err := m.MigrateUp(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error migrating wallet schema: %w", err)
	}

	return &PostgresRepository{db: db, logger: logger}, nil
}

// GetWallet retrieves a wallet by user ID
func (r *PostgresRepository) GetWallet(ctx context.Context, userID string) (*entities.Wallet, error) {
	query := `SELECT user_id, balance, created_at, updated_at FROM wallets WHERE user_id = $1`

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
func (r *PostgresRepository) CreateWallet(ctx context.Context, wallet *entities.Wallet) (bool, error) {
	query := `
		INSERT INTO wallets (user_id, balance)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query, wallet.UserID, wallet.Balance)
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
func (r *PostgresRepository) DeductIfSufficient(ctx context.Context, userID string, amount int64) (int64, bool, error) {
	if amount <= 0 {
		return 0, false, ErrInvalidAmount
	}

	query := `
		UPDATE wallets
		SET balance = balance - $1,
			updated_at = NOW()
		WHERE user_id = $2 AND balance >= $1
		RETURNING balance
	`

	var balance int64
	err := r.db.QueryRowContext(ctx, query, amount, userID).Scan(&balance)
	if err == nil {
		return balance, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, fmt.Errorf("error deducting balance: %w", err)
	}

	wallet, err := r.GetWallet(ctx, userID)
	if err != nil {
		return 0, false, err
	}
	return wallet.Balance, false, nil
}

// Increment adds amount to the balance
func (r *PostgresRepository) Increment(ctx context.Context, userID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	query := `
		UPDATE wallets
		SET balance = balance + $1,
			updated_at = NOW()
		WHERE user_id = $2
		RETURNING balance
	`

	var balance int64
	err := r.db.QueryRowContext(ctx, query, amount, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrWalletNotFound
		}
		return 0, fmt.Errorf("error incrementing balance: %w", err)
	}

	return balance, nil
}

// AddTransaction records a new transaction
func (r *PostgresRepository) AddTransaction(ctx context.Context, transaction *entities.Transaction) error {
	if transaction.ID == "" {
		transaction.ID = uuid.New().String()
	}
	if transaction.Timestamp.IsZero() {
		transaction.Timestamp = time.Now().UTC()
	}

	query := `
		INSERT INTO transactions (
			id, user_id, amount, type, reference_id, description, timestamp, balance_after
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
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
func (r *PostgresRepository) GetTransactions(ctx context.Context, userID string, limit int) ([]*entities.Transaction, error) {
	query := `
		SELECT id, user_id, amount, type, reference_id, description, timestamp, balance_after
		FROM transactions
		WHERE user_id = $1
		ORDER BY timestamp DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}
