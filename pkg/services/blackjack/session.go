package blackjack

import (
	"sync"
	"time"

	"github.com/fadedpez/tucoblackjack/pkg/entities"
	"github.com/google/uuid"
)

// session guards one game. The action handler and the dealer loop only touch the
// game while holding mu.
type session struct {
	mu            sync.Mutex
	game          *Game // nil until the bet is paid and the cards are dealt
	dealerStarted bool
	settleOnce    sync.Once
}

// newLockedSession returns a session that is already locked by the caller
func newLockedSession() *session {
	s := &session{}
	s.mu.Lock()
	return s
}

// view projects the game under the session lock
func (s *session) view() *GameView {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game == nil {
		return nil
	}
	return NewGameView(s.game)
}

// newSettlementEvent builds the audit record of a settled game
func newSettlementEvent(g *Game, st Settlement) *entities.SettlementEvent {
	event := &entities.SettlementEvent{
		ID:          uuid.NewString(),
		GameID:      g.ID,
		PlayerID:    g.PlayerID,
		Bet:         g.Bet,
		Multiplier:  g.Multiplier,
		Hands:       make([]entities.HandOutcome, 0, len(g.Hands)),
		DealerCards: g.Dealer.cloneCards(),
		DealerValue: g.Dealer.Value(),
		TotalStake:  st.TotalStake,
		TotalCredit: st.TotalCredit,
		Net:         st.Net(),
		Forced:      g.Forced,
		SettledAt:   time.Now().UTC(),
	}

	for i, h := range g.Hands {
		event.Hands = append(event.Hands, entities.HandOutcome{
			Cards:   h.cloneCards(),
			Value:   h.Value(),
			Stake:   h.Stake,
			Result:  h.Result.String(),
			Credit:  st.Hands[i].Credit,
			Doubled: h.Doubled,
		})
	}
	return event
}
