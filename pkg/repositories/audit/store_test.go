package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/fadedpez/tucoblackjack/internal/logging"
	"github.com/fadedpez/tucoblackjack/pkg/entities"
	"github.com/stretchr/testify/suite"
)

type StoreTestSuite struct {
	suite.Suite
	newStore func(t *testing.T) Store
	store    Store
	ctx      context.Context
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, &StoreTestSuite{newStore: func(*testing.T) Store {
		return NewMemoryStore()
	}})
}

func TestSQLiteStoreSuite(t *testing.T) {
	suite.Run(t, &StoreTestSuite{newStore: func(t *testing.T) Store {
		store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "audit.db"), logging.Discard())
		if err != nil {
			t.Fatalf("opening sqlite store: %v", err)
		}
		return store
	}})
}

func (s *StoreTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.newStore(s.T())
}

func (s *StoreTestSuite) TearDownTest() {
	s.NoError(s.store.Close())
}

func event(id, player string, settledAt time.Time, net int64) *entities.SettlementEvent {
	return &entities.SettlementEvent{
		ID:          id,
		GameID:      "game-" + id,
		PlayerID:    player,
		Bet:         100,
		Multiplier:  1,
		TotalStake:  100,
		TotalCredit: 100 + net,
		Net:         net,
		Hands: []entities.HandOutcome{{
			Cards:  []entities.Card{entities.NewCard(entities.Spades, entities.Ace), entities.NewCard(entities.Hearts, entities.King)},
			Value:  21,
			Stake:  100,
			Result: "PLAYER_BLACKJACK",
			Credit: 100 + net,
		}},
		DealerCards: []entities.Card{entities.NewCard(entities.Clubs, entities.Ten), entities.NewCard(entities.Clubs, entities.Seven)},
		DealerValue: 17,
		SettledAt:   settledAt,
	}
}

func (s *StoreTestSuite) TestRecordAndList() {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.Require().NoError(s.store.Record(s.ctx, event("e1", "alice", base, 150)))
	s.Require().NoError(s.store.Record(s.ctx, event("e2", "alice", base.Add(time.Minute), -100)))
	s.Require().NoError(s.store.Record(s.ctx, event("e3", "bob", base, 0)))

	events, err := s.store.ListByPlayer(s.ctx, "alice", 10)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal("e2", events[0].ID)
	s.Equal("e1", events[1].ID)
	s.Equal(int64(250), events[1].TotalCredit)
	s.Require().Len(events[1].Hands, 1)
	s.Equal("PLAYER_BLACKJACK", events[1].Hands[0].Result)
	s.Equal(entities.Ace, events[1].Hands[0].Cards[0].Rank)

	events, err = s.store.ListByPlayer(s.ctx, "alice", 1)
	s.Require().NoError(err)
	s.Len(events, 1)
}

func (s *StoreTestSuite) TestRecordRejectsAnonymousEvents() {
	s.ErrorIs(s.store.Record(s.ctx, &entities.SettlementEvent{ID: "x"}), ErrInvalidEvent)
	s.ErrorIs(s.store.Record(s.ctx, nil), ErrInvalidEvent)
}

func (s *StoreTestSuite) TestPruneOlderThan() {
	now := time.Now().UTC()
	s.Require().NoError(s.store.Record(s.ctx, event("old", "alice", now.Add(-48*time.Hour), 0)))
	s.Require().NoError(s.store.Record(s.ctx, event("new", "alice", now, 0)))

	pruned, err := s.store.PruneOlderThan(s.ctx, now.Add(-24*time.Hour))
	s.Require().NoError(err)
	s.Equal(int64(1), pruned)

	events, err := s.store.ListByPlayer(s.ctx, "alice", 10)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal("new", events[0].ID)
}
