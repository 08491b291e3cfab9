package wallet

import (
	"context"
	"sync"
	"time"

	"github.com/fadedpez/tucoblackjack/pkg/entities"
	"github.com/google/uuid"
)

// MemoryRepository implements Repository using in-memory storage
type MemoryRepository struct {
	wallets      map[string]*entities.Wallet
	transactions map[string][]*entities.Transaction
	mu           sync.RWMutex
}

// NewMemoryRepository creates a new in-memory wallet repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		wallets:      make(map[string]*entities.Wallet),
		transactions: make(map[string][]*entities.Transaction),
	}
}

// GetWallet retrieves a wallet by user ID
func (r *MemoryRepository) GetWallet(ctx context.Context, userID string) (*entities.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wallet, exists := r.wallets[userID]
	if !exists {
		return nil, ErrWalletNotFound
	}

	// Return a copy to prevent concurrent modification
	walletCopy := *wallet
	return &walletCopy, nil
}

// CreateWallet inserts the wallet unless one already exists
func (r *MemoryRepository) CreateWallet(ctx context.Context, wallet *entities.Wallet) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.wallets[wallet.UserID]; exists {
		return false, nil
	}

	now := time.Now()
	walletCopy := *wallet
	walletCopy.CreatedAt = now
	walletCopy.LastUpdated = now
	r.wallets[wallet.UserID] = &walletCopy

	return true, nil
}

// DeductIfSufficient subtracts amount only if the balance covers it
func (r *MemoryRepository) DeductIfSufficient(ctx context.Context, userID string, amount int64) (int64, bool, error) {
	if amount <= 0 {
		return 0, false, ErrInvalidAmount
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	wallet, exists := r.wallets[userID]
	if !exists {
		return 0, false, ErrWalletNotFound
	}
	if wallet.Balance < amount {
		return wallet.Balance, false, nil
	}

	wallet.Balance -= amount
	wallet.LastUpdated = time.Now()
	return wallet.Balance, true, nil
}

// Increment adds amount to the balance
func (r *MemoryRepository) Increment(ctx context.Context, userID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	wallet, exists := r.wallets[userID]
	if !exists {
		return 0, ErrWalletNotFound
	}

	wallet.Balance += amount
	wallet.LastUpdated = time.Now()
	return wallet.Balance, nil
}

// AddTransaction records a new transaction
func (r *MemoryRepository) AddTransaction(ctx context.Context, transaction *entities.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if transaction.ID == "" {
		transaction.ID = uuid.New().String()
	}
	if transaction.Timestamp.IsZero() {
		transaction.Timestamp = time.Now()
	}

	txCopy := *transaction
	r.transactions[transaction.UserID] = append(r.transactions[transaction.UserID], &txCopy)

	return nil
}

// GetTransactions retrieves recent transactions for a user, newest first
func (r *MemoryRepository) GetTransactions(ctx context.Context, userID string, limit int) ([]*entities.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	transactions := r.transactions[userID]
	result := make([]*entities.Transaction, 0, limit)
	for i := len(transactions) - 1; i >= 0 && len(result) < limit; i-- {
		txCopy := *transactions[i]
		result = append(result, &txCopy)
	}

	return result, nil
}

// Close implements Repository
func (r *MemoryRepository) Close() error {
	return nil
}
