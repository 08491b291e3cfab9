package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fadedpez/tucoblackjack/internal/logging"
	"github.com/fadedpez/tucoblackjack/pkg/entities"
	walletRepo "github.com/fadedpez/tucoblackjack/pkg/repositories/wallet"
	"github.com/google/uuid"
)

const DefaultStartingBalance int64 = 1000

var (
	ErrNegativeAmount = errors.New("amount must be positive")
)

type referenceKey struct{}

type reference struct {
	id          string
	description string
}

// WithReference tags ledger calls made with ctx so their journal entries point at a game
func WithReference(ctx context.Context, referenceID, description string) context.Context {
	return context.WithValue(ctx, referenceKey{}, reference{id: referenceID, description: description})
}

func referenceFrom(ctx context.Context) reference {
	ref, _ := ctx.Value(referenceKey{}).(reference)
	return ref
}

// Service handles wallet business logic
type Service struct {
	repo            walletRepo.Repository
	startingBalance int64
	logger          *logging.Logger
}

var _ WalletService = (*Service)(nil)

// NewService creates a new wallet service
func NewService(repo walletRepo.Repository, startingBalance int64, logger *logging.Logger) *Service {
	if startingBalance < 0 {
		startingBalance = DefaultStartingBalance
	}
	return &Service{
		repo:            repo,
		startingBalance: startingBalance,
		logger:          logging.OrDefault(logger).WithComponent("wallet"),
	}
}

// GetOrCreateWallet retrieves a wallet or creates a new one if it doesn't exist
func (s *Service) GetOrCreateWallet(ctx context.Context, userID string) (*entities.Wallet, bool, error) {
	wallet, err := s.repo.GetWallet(ctx, userID)
	if err == nil {
		return wallet, false, nil
	}
	if !errors.Is(err, walletRepo.ErrWalletNotFound) {
		return nil, false, err
	}

	created, err := s.repo.CreateWallet(ctx, &entities.Wallet{
		UserID:  userID,
		Balance: s.startingBalance,
	})
	if err != nil {
		return nil, false, err
	}

	// Another request may have created it between the read and the insert
	wallet, err = s.repo.GetWallet(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if created {
		s.logger.Info("opened wallet", "user", userID, "balance", wallet.Balance)
	}
	return wallet, created, nil
}

// GetBalance returns the current balance for a user
func (s *Service) GetBalance(ctx context.Context, userID string) (int64, bool, error) {
	wallet, err := s.repo.GetWallet(ctx, userID)
	if err != nil {
		if errors.Is(err, walletRepo.ErrWalletNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return wallet.Balance, true, nil
}

// DeductIfSufficient atomically removes amount if the balance covers it
func (s *Service) DeductIfSufficient(ctx context.Context, userID string, amount int64) (bool, error) {
	if amount <= 0 {
		return false, ErrNegativeAmount
	}

	balance, ok, err := s.repo.DeductIfSufficient(ctx, userID, amount)
	if err != nil {
		if errors.Is(err, walletRepo.ErrWalletNotFound) {
			return false, nil
		}
		s.logger.Error("deduct failed", "user", userID, "amount", amount, "err", err)
		return false, err
	}
	if !ok {
		s.logger.Debug("insufficient credits", "user", userID, "amount", amount, "balance", balance)
		return false, nil
	}

	s.logger.Info("deducted", "user", userID, "amount", amount, "balance", balance)
	s.record(ctx, userID, -amount, entities.TransactionTypeBet, balance)
	return true, nil
}

// Increment atomically adds amount to the balance
func (s *Service) Increment(ctx context.Context, userID string, amount int64) (bool, error) {
	if amount <= 0 {
		return false, ErrNegativeAmount
	}

	balance, err := s.repo.Increment(ctx, userID, amount)
	if err != nil {
		if errors.Is(err, walletRepo.ErrWalletNotFound) {
			return false, nil
		}
		s.logger.Error("increment failed", "user", userID, "amount", amount, "err", err)
		return false, err
	}

	s.logger.Info("credited", "user", userID, "amount", amount, "balance", balance)
	s.record(ctx, userID, amount, entities.TransactionTypePayout, balance)
	return true, nil
}

// Grant credits a user outside of play, opening a wallet if needed
func (s *Service) Grant(ctx context.Context, userID string, amount int64, description string) (int64, error) {
	if amount <= 0 {
		return 0, ErrNegativeAmount
	}
	if _, _, err := s.GetOrCreateWallet(ctx, userID); err != nil {
		return 0, err
	}

	balance, err := s.repo.Increment(ctx, userID, amount)
	if err != nil {
		return 0, fmt.Errorf("error granting credits: %w", err)
	}

	s.record(WithReference(ctx, "", description), userID, amount, entities.TransactionTypeGrant, balance)
	return balance, nil
}

// GetRecentTransactions returns the user's latest journal entries, newest first
func (s *Service) GetRecentTransactions(ctx context.Context, userID string, limit int) ([]*entities.Transaction, error) {
	return s.repo.GetTransactions(ctx, userID, limit)
}

// record journals a balance change. The balance change has already happened, so a
// journal failure is logged rather than returned.
func (s *Service) record(ctx context.Context, userID string, amount int64, txType entities.TransactionType, balanceAfter int64) {
	ref := referenceFrom(ctx)
	transaction := &entities.Transaction{
		ID:           uuid.New().String(),
		UserID:       userID,
		Amount:       amount,
		Type:         txType,
		ReferenceID:  ref.id,
		Description:  ref.description,
		Timestamp:    time.Now().UTC(),
		BalanceAfter: balanceAfter,
	}

	if err := s.repo.AddTransaction(ctx, transaction); err != nil {
		s.logger.Error("error recording transaction", "id", transaction.ID, "user", userID, "err", err)
	}
}
