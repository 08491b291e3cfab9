package blackjack

import (
	"math"
)

const BlackjackPayoutRatio = 1.5

// HandSettlement is the ledger outcome of a single hand
type HandSettlement struct {
	Stake    int64
	Result   Result
	Winnings int64 // Net winnings, excluding the returned stake
	Credit   int64 // Amount returned to the ledger: stake plus winnings, or zero on a loss
}

// Settlement is the ledger outcome of a whole game
type Settlement struct {
	Hands       []HandSettlement
	TotalStake  int64
	TotalCredit int64
}

// Net returns the player's gain or loss across the game
func (s Settlement) Net() int64 {
	return s.TotalCredit - s.TotalStake
}

// Winnings computes net winnings for one hand. The multiplier scales winnings, never the stake.
func Winnings(stake int64, multiplier float64, result Result) int64 {
	if multiplier < 1 {
		multiplier = 1
	}
	switch result {
	case ResultPlayerBlackjack:
		return int64(math.Round(float64(stake) * BlackjackPayoutRatio * multiplier))
	case ResultPlayerWin:
		return int64(math.Round(float64(stake) * multiplier))
	}
	return 0
}

// Payout computes the ledger increment for one hand: the stake back plus winnings on a
// win or push, nothing on a loss or an unresolved hand
func Payout(stake int64, multiplier float64, result Result) int64 {
	switch result {
	case ResultPlayerBlackjack, ResultPlayerWin:
		return stake + Winnings(stake, multiplier, result)
	case ResultPush:
		return stake
	}
	return 0
}

// Settle computes the settlement of an ended game
func Settle(g *Game) Settlement {
	s := Settlement{Hands: make([]HandSettlement, 0, len(g.Hands))}
	for _, h := range g.Hands {
		line := HandSettlement{
			Stake:    h.Stake,
			Result:   h.Result,
			Winnings: Winnings(h.Stake, g.Multiplier, h.Result),
			Credit:   Payout(h.Stake, g.Multiplier, h.Result),
		}
		s.Hands = append(s.Hands, line)
		s.TotalStake += line.Stake
		s.TotalCredit += line.Credit
	}
	return s
}
