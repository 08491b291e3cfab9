package blackjack

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/fadedpez/tucoblackjack/internal/logging"
	"github.com/fadedpez/tucoblackjack/pkg/entities"
	"github.com/fadedpez/tucoblackjack/pkg/repositories/audit"
	walletRepo "github.com/fadedpez/tucoblackjack/pkg/repositories/wallet"
	"github.com/fadedpez/tucoblackjack/pkg/services/wallet"
	"github.com/stretchr/testify/require"
)

// stacked builds a deck that deals ranks in order. Opening deal order is player,
// dealer, player, dealer.
func stacked(ranks ...entities.Rank) *entities.Deck {
	cards := make([]entities.Card, 0, len(ranks))
	for i, r := range ranks {
		cards = append(cards, entities.NewCard(entities.Suits[i%len(entities.Suits)], r))
	}
	return entities.NewDeckFromCards(cards...)
}

func cards(ranks ...entities.Rank) []entities.Card {
	out := make([]entities.Card, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, entities.NewCard(entities.Spades, r))
	}
	return out
}

func handOf(ranks ...entities.Rank) *Hand {
	h := NewHand(100)
	h.Cards = cards(ranks...)
	if h.Value() > BlackjackValue {
		h.Status = StatusBust
	}
	return h
}

// withDecks makes the service deal the given stacked decks in turn, repeating the last one
func withDecks(decks ...[]entities.Rank) Option {
	var mu sync.Mutex
	next := 0
	return func(s *Service) {
		s.newDeck = func() (*entities.Deck, error) {
			mu.Lock()
			defer mu.Unlock()
			ranks := decks[min(next, len(decks)-1)]
			next++
			return stacked(ranks...), nil
		}
	}
}

type recordingObserver struct {
	mu    sync.Mutex
	views []*GameView
}

func (o *recordingObserver) GameUpdated(view *GameView) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.views = append(o.views, view)
}

func (o *recordingObserver) Views() []*GameView {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]*GameView(nil), o.views...)
}

const (
	testInitialDelay = time.Second
	testHitDelay     = 500 * time.Millisecond
)

// table is a service wired to an in-memory ledger, an in-memory audit store and a mock clock
type table struct {
	t        *testing.T
	ctx      context.Context
	clock    *quartz.Mock
	wallets  *wallet.Service
	store    *audit.MemoryStore
	observer *recordingObserver
	svc      *Service
}

func newTable(t *testing.T, opts ...Option) *table {
	t.Helper()

	tb := &table{
		t:        t,
		ctx:      context.Background(),
		clock:    quartz.NewMock(t),
		wallets:  wallet.NewService(walletRepo.NewMemoryRepository(), 1000, logging.Discard()),
		store:    audit.NewMemoryStore(),
		observer: &recordingObserver{},
	}
	_, _, err := tb.wallets.GetOrCreateWallet(tb.ctx, "alice")
	require.NoError(t, err)

	base := []Option{
		WithClock(tb.clock),
		WithAuditSink(tb.store),
		WithObserver(tb.observer),
		WithLogger(logging.Discard()),
		WithDealerDelays(testInitialDelay, testHitDelay),
	}
	tb.svc = NewService(tb.wallets, append(base, opts...)...)
	return tb
}

func (tb *table) advance(d time.Duration) {
	tb.t.Helper()
	ctx, cancel := context.WithTimeout(tb.ctx, 5*time.Second)
	defer cancel()
	tb.clock.Advance(d).MustWait(ctx)
}

func (tb *table) balance(playerID string) int64 {
	tb.t.Helper()
	balance, found, err := tb.wallets.GetBalance(tb.ctx, playerID)
	require.NoError(tb.t, err)
	require.True(tb.t, found)
	return balance
}

// settlements waits for pending audit writes and returns the player's events
func (tb *table) settlements(playerID string) []*entities.SettlementEvent {
	tb.t.Helper()
	tb.svc.Wait()
	events, err := tb.store.ListByPlayer(tb.ctx, playerID, 0)
	require.NoError(tb.t, err)
	return events
}
