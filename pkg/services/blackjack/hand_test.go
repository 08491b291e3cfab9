package blackjack

import (
	"testing"

	"github.com/fadedpez/tucoblackjack/pkg/entities"
	"github.com/stretchr/testify/assert"
)

func TestHandValue(t *testing.T) {
	tests := []struct {
		name  string
		ranks []entities.Rank
		value int
		soft  bool
	}{
		{"pair of aces", []entities.Rank{entities.Ace, entities.Ace}, 12, true},
		{"two aces and a nine", []entities.Rank{entities.Ace, entities.Ace, entities.Nine}, 21, true},
		{"natural", []entities.Rank{entities.Ace, entities.King}, 21, true},
		{"ace demoted", []entities.Rank{entities.Ace, entities.Five, entities.King}, 16, false},
		{"faces", []entities.Rank{entities.Jack, entities.Queen}, 20, false},
		{"three aces", []entities.Rank{entities.Ace, entities.Ace, entities.Ace}, 13, true},
		{"bust", []entities.Rank{entities.King, entities.Queen, entities.Two}, 22, false},
		{"empty", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHand(0)
			h.Cards = cards(tt.ranks...)
			assert.Equal(t, tt.value, h.Value())
			assert.Equal(t, tt.soft, h.IsSoft())
		})
	}
}

func TestHandAddCardBusts(t *testing.T) {
	h := NewHand(100)
	assert.NoError(t, h.AddCard(entities.NewCard(entities.Hearts, entities.King)))
	assert.NoError(t, h.AddCard(entities.NewCard(entities.Hearts, entities.Six)))
	assert.True(t, h.IsPlaying())

	assert.NoError(t, h.AddCard(entities.NewCard(entities.Hearts, entities.Nine)))
	assert.Equal(t, StatusBust, h.Status)
	assert.True(t, h.IsBusted())

	assert.ErrorIs(t, h.AddCard(entities.NewCard(entities.Hearts, entities.Two)), ErrHandBust)
	assert.ErrorIs(t, h.Stand(), ErrHandBust)
}

func TestHandStand(t *testing.T) {
	h := handOf(entities.Ten, entities.Seven)
	assert.NoError(t, h.Stand())
	assert.Equal(t, StatusStand, h.Status)
	assert.ErrorIs(t, h.Stand(), ErrHandStand)
	assert.ErrorIs(t, h.AddCard(entities.NewCard(entities.Clubs, entities.Two)), ErrHandStand)
}

func TestHandBlackjackRequiresUnsplitTwoCards(t *testing.T) {
	assert.True(t, handOf(entities.Ace, entities.Queen).IsBlackjack())
	assert.False(t, handOf(entities.Seven, entities.Seven, entities.Seven).IsBlackjack())

	split := handOf(entities.Ace, entities.Queen)
	split.FromSplit = true
	assert.False(t, split.IsBlackjack())
}

func TestHandIsPair(t *testing.T) {
	assert.True(t, handOf(entities.Eight, entities.Eight).IsPair())
	assert.True(t, handOf(entities.King, entities.Ten).IsPair())
	assert.False(t, handOf(entities.King, entities.Nine).IsPair())
	assert.False(t, handOf(entities.Two, entities.Two, entities.Two).IsPair())
}
