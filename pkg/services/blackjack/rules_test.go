package blackjack

import (
	"testing"

	"github.com/fadedpez/tucoblackjack/pkg/entities"
	"github.com/stretchr/testify/assert"
)

func TestCompareHands(t *testing.T) {
	tests := []struct {
		name   string
		player *Hand
		dealer *Hand
		want   Result
	}{
		{"player bust loses to dealer bust", handOf(entities.King, entities.Queen, entities.Five), handOf(entities.King, entities.Six, entities.Nine), ResultDealerWin},
		{"natural", handOf(entities.Ace, entities.King), handOf(entities.King, entities.Nine), ResultPlayerBlackjack},
		{"both naturals", handOf(entities.Ace, entities.King), handOf(entities.Ace, entities.Jack), ResultPush},
		{"dealer natural beats three-card 21", handOf(entities.Seven, entities.Seven, entities.Seven), handOf(entities.Ace, entities.Jack), ResultDealerWin},
		{"dealer bust", handOf(entities.Ten, entities.Two), handOf(entities.King, entities.Six, entities.Nine), ResultPlayerWin},
		{"higher total", handOf(entities.Ten, entities.Nine), handOf(entities.Ten, entities.Seven), ResultPlayerWin},
		{"lower total", handOf(entities.Ten, entities.Seven), handOf(entities.Ten, entities.Eight), ResultDealerWin},
		{"equal totals", handOf(entities.Ten, entities.Eight), handOf(entities.Nine, entities.Nine), ResultPush},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareHands(tt.player, tt.dealer))
		})
	}
}

func TestSplitTwentyOneIsNotBlackjack(t *testing.T) {
	player := handOf(entities.Ace, entities.King)
	player.FromSplit = true
	assert.Equal(t, ResultPlayerWin, CompareHands(player, handOf(entities.Ten, entities.Seven)))
	assert.Equal(t, ResultPush, CompareHands(player, handOf(entities.Seven, entities.Seven, entities.Seven)))
}

func TestDealerShouldHit(t *testing.T) {
	assert.True(t, DealerShouldHit(handOf(entities.Ten, entities.Six)))
	assert.False(t, DealerShouldHit(handOf(entities.Ten, entities.Seven)))
	// Stands on soft 17
	assert.False(t, DealerShouldHit(handOf(entities.Ace, entities.Six)))
}

func TestScoreHelpers(t *testing.T) {
	assert.Equal(t, 21, GetBestScore(cards(entities.Ace, entities.Ace, entities.Nine)))
	assert.True(t, IsBlackjack(cards(entities.Ten, entities.Ace)))
	assert.False(t, IsBlackjack(cards(entities.Five, entities.Six, entities.Ten)))
	assert.True(t, IsBust(cards(entities.Ten, entities.Ten, entities.Two)))
	assert.True(t, ResultPlayerBlackjack.IsWin())
	assert.False(t, ResultPush.IsWin())
}
