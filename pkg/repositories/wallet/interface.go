package wallet

import (
	"context"
	"errors"

	"github.com/fadedpez/tucoblackjack/pkg/entities"
)

var (
	ErrWalletNotFound = errors.New("wallet not found")
	ErrInvalidAmount  = errors.New("amount must be positive")
)

// Repository defines the interface for wallet data operations. Balance changes are
// single atomic operations; callers never read-modify-write a balance.
type Repository interface {
	// GetWallet retrieves a wallet by user ID
	GetWallet(ctx context.Context, userID string) (*entities.Wallet, error)

	// CreateWallet inserts the wallet unless one already exists, reporting whether it was created
	CreateWallet(ctx context.Context, wallet *entities.Wallet) (bool, error)

	// DeductIfSufficient subtracts amount only if the balance covers it
	DeductIfSufficient(ctx context.Context, userID string, amount int64) (balanceAfter int64, ok bool, err error)

	// Increment adds amount to the balance
	Increment(ctx context.Context, userID string, amount int64) (balanceAfter int64, err error)

	// AddTransaction records a new transaction
	AddTransaction(ctx context.Context, transaction *entities.Transaction) error

	// GetTransactions retrieves recent transactions for a user, newest first
	GetTransactions(ctx context.Context, userID string, limit int) ([]*entities.Transaction, error)

	// Close releases any underlying resources
	Close() error
}
