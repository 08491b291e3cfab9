package entities

import (
	"errors"
	"fmt"

	"github.com/fadedpez/tucoblackjack/pkg/random"
)

const DeckSize = 52

var ErrDeckExhausted = errors.New("deck exhausted")

// Deck is a single-use, front-to-back sequence of cards
type Deck struct {
	cards []Card
}

// newOrderedCards returns one card of each rank and suit
func newOrderedCards() []Card {
	cards := make([]Card, 0, DeckSize)
	for _, suit := range Suits {
		for _, rank := range Ranks {
			cards = append(cards, NewCard(suit, rank))
		}
	}
	return cards
}

// NewShuffledDeck creates a 52-card deck shuffled with src
func NewShuffledDeck(src random.Source) (*Deck, error) {
	cards := newOrderedCards()

	// Fisher-Yates, high index down
	for i := len(cards) - 1; i > 0; i-- {
		j, err := src.NextInt(i + 1)
		if err != nil {
			return nil, fmt.Errorf("error shuffling deck: %w", err)
		}
		cards[i], cards[j] = cards[j], cards[i]
	}

	return &Deck{cards: cards}, nil
}

// NewDeckFromCards creates a deck that deals the given cards in order
func NewDeckFromCards(cards ...Card) *Deck {
	c := make([]Card, len(cards))
	copy(c, cards)
	return &Deck{cards: c}
}

// Draw removes and returns the top card from the deck
func (d *Deck) Draw() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrDeckExhausted
	}
	card := d.cards[0]
	d.cards = d.cards[1:]
	return card, nil
}

// Remaining returns the number of undealt cards
func (d *Deck) Remaining() int {
	return len(d.cards)
}
