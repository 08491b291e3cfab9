package blackjack

import (
	"errors"

	"github.com/fadedpez/tucoblackjack/pkg/entities"
)

var (
	ErrHandBust  = errors.New("hand is bust")
	ErrHandStand = errors.New("hand is stand")
)

// Status represents the current state of the hand
type Status string

const (
	StatusPlaying Status = "PLAYING"
	StatusBust    Status = "BUST"
	StatusStand   Status = "STAND"
)

// Hand represents a player's or the dealer's hand in a game of blackjack
type Hand struct {
	Cards     []entities.Card
	Status    Status
	Stake     int64  // Credits riding on this hand
	Doubled   bool   // Doubled down, no further hits
	FromSplit bool   // Created by splitting a pair
	Result    Result // IN_PROGRESS until the game settles
}

// NewHand creates a new blackjack hand
func NewHand(stake int64) *Hand {
	return &Hand{
		Cards:  make([]entities.Card, 0, 5),
		Status: StatusPlaying,
		Stake:  stake,
		Result: ResultInProgress,
	}
}

// AddCard adds a card to the hand
func (h *Hand) AddCard(card entities.Card) error {
	switch h.Status {
	case StatusBust:
		return ErrHandBust
	case StatusStand:
		return ErrHandStand
	}

	h.Cards = append(h.Cards, card)

	// Auto-bust if score exceeds 21
	if h.Value() > 21 {
		h.Status = StatusBust
	}

	return nil
}

// Stand marks the hand as stood
func (h *Hand) Stand() error {
	switch h.Status {
	case StatusBust:
		return ErrHandBust
	case StatusStand:
		return ErrHandStand
	}

	h.Status = StatusStand
	return nil
}

// Value returns the best possible score for the hand
func (h *Hand) Value() int {
	total, _ := handTotal(h.Cards)
	return total
}

// IsSoft reports whether an ace is still being counted as 11
func (h *Hand) IsSoft() bool {
	_, soft := handTotal(h.Cards)
	return soft
}

// IsBlackjack reports a natural: two cards totalling 21, not produced by a split
func (h *Hand) IsBlackjack() bool {
	return !h.FromSplit && IsBlackjack(h.Cards)
}

// IsBusted reports whether the hand is over 21
func (h *Hand) IsBusted() bool {
	return h.Value() > 21
}

// IsPlaying reports whether the hand can still take cards
func (h *Hand) IsPlaying() bool {
	return h.Status == StatusPlaying
}

// IsPair reports whether the hand is two cards of equal blackjack value
func (h *Hand) IsPair() bool {
	return len(h.Cards) == 2 && h.Cards[0].Value() == h.Cards[1].Value()
}

// cloneCards returns a copy of the hand's cards
func (h *Hand) cloneCards() []entities.Card {
	out := make([]entities.Card, len(h.Cards))
	copy(out, h.Cards)
	return out
}
