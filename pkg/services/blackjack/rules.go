package blackjack

import (
	"github.com/fadedpez/tucoblackjack/pkg/entities"
)

const (
	BlackjackValue  = 21
	DealerStandsOn  = 17 // Dealer stands on every 17, soft or hard
	InitialHandSize = 2
	MaxHands        = 2 // One split per game
)

// Result represents the outcome of a blackjack hand
type Result string

const (
	ResultInProgress      Result = "IN_PROGRESS"
	ResultPlayerBlackjack Result = "PLAYER_BLACKJACK"
	ResultPlayerWin       Result = "PLAYER_WIN"
	ResultPush            Result = "PUSH"
	ResultDealerWin       Result = "DEALER_WIN"
)

// String returns the string representation of the result
func (r Result) String() string {
	return string(r)
}

// IsWin returns true if this result represents a win
func (r Result) IsWin() bool {
	return r == ResultPlayerWin || r == ResultPlayerBlackjack
}

// handTotal counts every ace as 11 and demotes them one at a time while the total is over 21
func handTotal(cards []entities.Card) (total int, soft bool) {
	elevenAces := 0
	for _, card := range cards {
		total += card.Value()
		if card.IsAce() {
			elevenAces++
		}
	}

	for total > BlackjackValue && elevenAces > 0 {
		total -= 10
		elevenAces--
	}

	return total, elevenAces > 0
}

// GetBestScore returns the highest total of the cards that does not bust, if one exists
func GetBestScore(cards []entities.Card) int {
	total, _ := handTotal(cards)
	return total
}

// IsBlackjack checks for two cards totalling 21
func IsBlackjack(cards []entities.Card) bool {
	return len(cards) == InitialHandSize && GetBestScore(cards) == BlackjackValue
}

// IsBust checks if a hand exceeds 21
func IsBust(cards []entities.Card) bool {
	return GetBestScore(cards) > BlackjackValue
}

// DealerShouldHit applies the house rule: hit below 17
func DealerShouldHit(dealer *Hand) bool {
	return dealer.Value() < DealerStandsOn
}

// CompareHands resolves a finished player hand against the dealer
func CompareHands(player, dealer *Hand) Result {
	if player.IsBusted() {
		return ResultDealerWin
	}

	playerBJ := player.IsBlackjack()
	dealerBJ := dealer.IsBlackjack()
	switch {
	case playerBJ && dealerBJ:
		return ResultPush
	case playerBJ:
		return ResultPlayerBlackjack
	case dealerBJ:
		return ResultDealerWin
	}

	if dealer.IsBusted() {
		return ResultPlayerWin
	}

	playerScore := player.Value()
	dealerScore := dealer.Value()
	switch {
	case playerScore > dealerScore:
		return ResultPlayerWin
	case playerScore < dealerScore:
		return ResultDealerWin
	}
	return ResultPush
}
