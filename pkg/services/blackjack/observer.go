package blackjack

import (
	"context"
)

// Observer is told about every dealer step and the final state of each game.
// Implementations must not block; the dealer loop waits for GameUpdated to return.
type Observer interface {
	GameUpdated(view *GameView)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(view *GameView)

func (f ObserverFunc) GameUpdated(view *GameView) { f(view) }

type nopObserver struct{}

func (nopObserver) GameUpdated(*GameView) {}

// MultiplierResolver looks up the winnings multiplier for a player
type MultiplierResolver interface {
	Resolve(ctx context.Context, playerID string) (float64, error)
}

// FixedMultiplier resolves the same multiplier for everyone
type FixedMultiplier float64

func (m FixedMultiplier) Resolve(context.Context, string) (float64, error) {
	return float64(m), nil
}
