package audit

import (
	"context"
	"errors"
	"time"

	"github.com/fadedpez/tucoblackjack/pkg/entities"
)

var ErrInvalidEvent = errors.New("settlement event is missing its identity")

// Sink receives one event per settled game
type Sink interface {
	Record(ctx context.Context, event *entities.SettlementEvent) error
}

// Store is a Sink that can also be read back and pruned
type Store interface {
	Sink

	// ListByPlayer returns the player's settlements, newest first
	ListByPlayer(ctx context.Context, playerID string, limit int) ([]*entities.SettlementEvent, error)

	// PruneOlderThan deletes settlements before cutoff and returns how many went
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	Close() error
}

// Nop discards every event
type Nop struct{}

func (Nop) Record(context.Context, *entities.SettlementEvent) error { return nil }

func validate(event *entities.SettlementEvent) error {
	if event == nil || event.ID == "" || event.PlayerID == "" {
		return ErrInvalidEvent
	}
	return nil
}
