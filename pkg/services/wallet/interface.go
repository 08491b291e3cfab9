package wallet

import (
	"context"

	"github.com/fadedpez/tucoblackjack/pkg/entities"
)

// Ledger is the atomic credit surface the game engine settles against
//
//go:generate mockgen -source=$GOFILE -destination=mock/mock.go -package=mock_wallet_service
type Ledger interface {
	// DeductIfSufficient removes amount only if the balance covers it; false means it did not
	DeductIfSufficient(ctx context.Context, userID string, amount int64) (bool, error)
	// Increment adds amount; false means the user has no wallet
	Increment(ctx context.Context, userID string, amount int64) (bool, error)
	// GetBalance returns the balance; found is false when the user has no wallet
	GetBalance(ctx context.Context, userID string) (balance int64, found bool, err error)
}

// WalletService is the ledger plus the account operations the chat and admin surfaces use
type WalletService interface {
	Ledger
	GetOrCreateWallet(ctx context.Context, userID string) (*entities.Wallet, bool, error)
	Grant(ctx context.Context, userID string, amount int64, description string) (int64, error)
	GetRecentTransactions(ctx context.Context, userID string, limit int) ([]*entities.Transaction, error)
}
