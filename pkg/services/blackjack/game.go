package blackjack

import (
	"errors"
	"fmt"
	"time"

	"github.com/fadedpez/tucoblackjack/pkg/entities"
)

var (
	ErrInvalidBet       = errors.New("bet must be positive")
	ErrGameEnded        = errors.New("game has ended")
	ErrNotPlayerTurn    = errors.New("player phase is over")
	ErrNotDealerTurn    = errors.New("not the dealer's turn")
	ErrNotActiveHand    = errors.New("hand is not the active hand")
	ErrActionNotAllowed = errors.New("action not allowed for this hand")
	ErrDealerNotDone    = errors.New("dealer must keep drawing")
)

// Phase is where the game is in its lifecycle. ENDED is terminal.
type Phase string

const (
	PhasePlayerTurn Phase = "PLAYER_TURN"
	PhaseDealerTurn Phase = "DEALER_TURN"
	PhaseEnded      Phase = "ENDED"
)

// Action is a player decision
type Action string

const (
	ActionHit        Action = "hit"
	ActionStand      Action = "stand"
	ActionDoubleDown Action = "double"
	ActionSplit      Action = "split"
)

// ParseAction converts a button or command token into an Action
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionHit, ActionStand, ActionDoubleDown, ActionSplit:
		return a, nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// Game is one player's single-deck blackjack game against the dealer
type Game struct {
	ID         string
	PlayerID   string
	Bet        int64   // Original bet, the stake of each hand before doubling
	Multiplier float64 // Applied to winnings only
	Dealer     *Hand
	Hands      []*Hand // One hand, or two after a split
	Active     int     // Index of the hand the player is acting on
	Phase      Phase
	SplitAces  bool
	Forced     bool // Ended by the failure fallback rather than normal play
	StartedAt  time.Time

	deck *entities.Deck
}

// NewGame deals the opening cards. A player natural ends the game immediately.
func NewGame(id, playerID string, bet int64, multiplier float64, deck *entities.Deck) (*Game, error) {
	if bet <= 0 {
		return nil, ErrInvalidBet
	}
	if multiplier < 1 {
		multiplier = 1
	}

	g := &Game{
		ID:         id,
		PlayerID:   playerID,
		Bet:        bet,
		Multiplier: multiplier,
		Dealer:     NewHand(0),
		Hands:      []*Hand{NewHand(bet)},
		Phase:      PhasePlayerTurn,
		StartedAt:  time.Now(),
		deck:       deck,
	}

	for i := 0; i < InitialHandSize; i++ {
		if err := g.draw(g.Hands[0]); err != nil {
			return nil, err
		}
		if err := g.draw(g.Dealer); err != nil {
			return nil, err
		}
	}

	if g.Hands[0].IsBlackjack() {
		g.Hands[0].Status = StatusStand
		g.finish()
	}

	return g, nil
}

// draw deals the next card from the deck into h
func (g *Game) draw(h *Hand) error {
	card, err := g.deck.Draw()
	if err != nil {
		return err
	}
	return h.AddCard(card)
}

// Ended reports whether the game has reached its terminal state
func (g *Game) Ended() bool {
	return g.Phase == PhaseEnded
}

// HoleCardHidden reports whether the dealer's first card is still face down
func (g *Game) HoleCardHidden() bool {
	return g.Phase == PhasePlayerTurn
}

// IsSplit reports whether the player has split
func (g *Game) IsSplit() bool {
	return len(g.Hands) > 1
}

// TotalStake returns the credits reserved across all hands
func (g *Game) TotalStake() int64 {
	var total int64
	for _, h := range g.Hands {
		total += h.Stake
	}
	return total
}

// actionHand validates that handIndex is the hand the player may act on
func (g *Game) actionHand(handIndex int) (*Hand, error) {
	if g.Ended() {
		return nil, ErrGameEnded
	}
	if g.Phase != PhasePlayerTurn {
		return nil, ErrNotPlayerTurn
	}
	if handIndex < 0 || handIndex >= len(g.Hands) || handIndex != g.Active {
		return nil, ErrNotActiveHand
	}
	hand := g.Hands[handIndex]
	if !hand.IsPlaying() {
		return nil, ErrActionNotAllowed
	}
	return hand, nil
}

// Hit deals one card to the active hand
func (g *Game) Hit(handIndex int) error {
	hand, err := g.actionHand(handIndex)
	if err != nil {
		return err
	}

	if err := g.draw(hand); err != nil {
		return err
	}

	if hand.Status == StatusBust {
		g.advance()
	}
	return nil
}

// Stand ends play on the active hand
func (g *Game) Stand(handIndex int) error {
	hand, err := g.actionHand(handIndex)
	if err != nil {
		return err
	}

	if err := hand.Stand(); err != nil {
		return err
	}

	g.advance()
	return nil
}

// DoubleDownCost validates a double down and returns the extra stake it needs
func (g *Game) DoubleDownCost(handIndex int) (int64, error) {
	hand, err := g.actionHand(handIndex)
	if err != nil {
		return 0, err
	}
	if len(hand.Cards) != InitialHandSize || hand.Doubled || g.SplitAces {
		return 0, ErrActionNotAllowed
	}
	return hand.Stake, nil
}

// DoubleDown doubles the hand's stake, deals exactly one card and stands the hand.
// The caller must already have reserved DoubleDownCost.
func (g *Game) DoubleDown(handIndex int) error {
	if _, err := g.DoubleDownCost(handIndex); err != nil {
		return err
	}
	hand := g.Hands[handIndex]

	hand.Stake *= 2
	hand.Doubled = true

	if err := g.draw(hand); err != nil {
		return err
	}
	if hand.IsPlaying() {
		hand.Status = StatusStand
	}

	g.advance()
	return nil
}

// SplitCost validates a split and returns the extra stake it needs
func (g *Game) SplitCost(handIndex int) (int64, error) {
	hand, err := g.actionHand(handIndex)
	if err != nil {
		return 0, err
	}
	if g.IsSplit() || !hand.IsPair() {
		return 0, ErrActionNotAllowed
	}
	return g.Bet, nil
}

// Split moves the second card of a pair into a new hand and deals one card to each.
// Split aces get exactly one card each and stand. The caller must already have reserved SplitCost.
func (g *Game) Split(handIndex int) error {
	if _, err := g.SplitCost(handIndex); err != nil {
		return err
	}
	first := g.Hands[handIndex]

	second := NewHand(g.Bet)
	second.FromSplit = true
	second.Cards = append(second.Cards, first.Cards[1])
	first.Cards = first.Cards[:1]
	first.FromSplit = true
	g.Hands = append(g.Hands, second)

	g.SplitAces = first.Cards[0].IsAce() && second.Cards[0].IsAce()

	for _, h := range g.Hands {
		if err := g.draw(h); err != nil {
			return err
		}
	}

	if g.SplitAces {
		for _, h := range g.Hands {
			if h.IsPlaying() {
				h.Status = StatusStand
			}
		}
		g.advance()
	}
	return nil
}

// advance moves the turn past finished hands and ends the player phase when none remain
func (g *Game) advance() {
	for g.Active < len(g.Hands) && !g.Hands[g.Active].IsPlaying() {
		g.Active++
	}
	if g.Active < len(g.Hands) {
		return
	}
	g.Active = len(g.Hands) - 1

	for _, h := range g.Hands {
		if !h.IsBusted() {
			g.Phase = PhaseDealerTurn
			return
		}
	}

	// Every hand busted, the dealer has nothing to play for
	g.finish()
}

// DealerShouldDraw reports whether the dealer turn needs another card
func (g *Game) DealerShouldDraw() bool {
	return g.Phase == PhaseDealerTurn && DealerShouldHit(g.Dealer)
}

// DealerDraw deals one card to the dealer
func (g *Game) DealerDraw() error {
	if g.Phase != PhaseDealerTurn {
		return ErrNotDealerTurn
	}
	if !DealerShouldHit(g.Dealer) {
		return ErrActionNotAllowed
	}
	return g.draw(g.Dealer)
}

// Finish ends a dealer turn that has reached 17 or busted and resolves every hand
func (g *Game) Finish() error {
	if g.Phase != PhaseDealerTurn {
		return ErrNotDealerTurn
	}
	if DealerShouldHit(g.Dealer) {
		return ErrDealerNotDone
	}
	g.finish()
	return nil
}

// ForceEnd stands any live hand and resolves the game against the dealer's current cards
func (g *Game) ForceEnd() {
	if g.Ended() {
		return
	}
	for _, h := range g.Hands {
		if h.IsPlaying() {
			h.Status = StatusStand
		}
	}
	g.Forced = true
	g.finish()
}

func (g *Game) finish() {
	for _, h := range g.Hands {
		h.Result = CompareHands(h, g.Dealer)
	}
	g.Phase = PhaseEnded
}

// AvailableActions lists what the player may do on the active hand
func (g *Game) AvailableActions() []Action {
	if _, err := g.actionHand(g.Active); err != nil {
		return nil
	}
	actions := []Action{ActionHit, ActionStand}
	if _, err := g.DoubleDownCost(g.Active); err == nil {
		actions = append(actions, ActionDoubleDown)
	}
	if _, err := g.SplitCost(g.Active); err == nil {
		actions = append(actions, ActionSplit)
	}
	return actions
}
