package blackjack

import (
	"github.com/fadedpez/tucoblackjack/pkg/entities"
)

// HandView is a read-only snapshot of a player hand
type HandView struct {
	Cards   []entities.Card
	Value   int
	Soft    bool
	Status  Status
	Stake   int64
	Doubled bool
	Result  Result
}

// DealerView is a read-only snapshot of the dealer hand
type DealerView struct {
	Cards      []entities.Card // The hole card is omitted while hidden
	HoleHidden bool
	Value      int // Value of the visible cards only
}

// GameView is the read-only projection handed to the presentation layer
type GameView struct {
	GameID     string
	PlayerID   string
	Bet        int64
	Multiplier float64
	Phase      Phase
	Dealer     DealerView
	Hands      []HandView
	Active     int
	SplitAces  bool
	Forced     bool
	Actions    []Action
	Settlement *Settlement // Set once the game has ended
}

// Ended reports whether the viewed game had ended
func (v *GameView) Ended() bool {
	return v.Phase == PhaseEnded
}

// CanAct reports whether the action is currently offered
func (v *GameView) CanAct(a Action) bool {
	for _, candidate := range v.Actions {
		if candidate == a {
			return true
		}
	}
	return false
}

// NewGameView projects the game. The caller must hold the game's lock.
func NewGameView(g *Game) *GameView {
	v := &GameView{
		GameID:     g.ID,
		PlayerID:   g.PlayerID,
		Bet:        g.Bet,
		Multiplier: g.Multiplier,
		Phase:      g.Phase,
		Active:     g.Active,
		SplitAces:  g.SplitAces,
		Forced:     g.Forced,
		Actions:    g.AvailableActions(),
		Hands:      make([]HandView, 0, len(g.Hands)),
	}

	dealerCards := g.Dealer.cloneCards()
	if g.HoleCardHidden() && len(dealerCards) > 0 {
		// Hole card is the first card dealt to the dealer
		dealerCards = dealerCards[1:]
		v.Dealer.HoleHidden = true
	}
	v.Dealer.Cards = dealerCards
	v.Dealer.Value = GetBestScore(dealerCards)

	for _, h := range g.Hands {
		v.Hands = append(v.Hands, HandView{
			Cards:   h.cloneCards(),
			Value:   h.Value(),
			Soft:    h.IsSoft(),
			Status:  h.Status,
			Stake:   h.Stake,
			Doubled: h.Doubled,
			Result:  h.Result,
		})
	}

	if g.Ended() {
		s := Settle(g)
		v.Settlement = &s
	}
	return v
}
