package games

import (
	"sync"

	"github.com/fadedpez/tucoblackjack/internal/types"
)

// Registry tracks at most one live game per player
type Registry[T comparable] struct {
	sessions sync.Map // playerID -> T
}

// NewRegistry creates a new session registry
func NewRegistry[T comparable]() *Registry[T] {
	return &Registry[T]{}
}

// TryCreate builds a game with factory and inserts it only if the player has none.
// factory must not have side effects: a losing racer's value is discarded.
func (r *Registry[T]) TryCreate(playerID string, factory func() (T, error)) (T, error) {
	var zero T

	if _, exists := r.sessions.Load(playerID); exists {
		return zero, types.NewGameError(types.ErrAlreadyActive, "You already have a game in progress")
	}

	game, err := factory()
	if err != nil {
		return zero, err
	}

	if _, loaded := r.sessions.LoadOrStore(playerID, game); loaded {
		return zero, types.NewGameError(types.ErrAlreadyActive, "You already have a game in progress")
	}

	return game, nil
}

// Get returns the player's live game
func (r *Registry[T]) Get(playerID string) (T, bool) {
	var zero T
	v, ok := r.sessions.Load(playerID)
	if !ok {
		return zero, false
	}
	return v.(T), true
}

// Remove evicts the player's game, if any
func (r *Registry[T]) Remove(playerID string) {
	r.sessions.Delete(playerID)
}

// RemoveIf evicts the player's game only if it is still game
func (r *Registry[T]) RemoveIf(playerID string, game T) bool {
	return r.sessions.CompareAndDelete(playerID, game)
}

// Len returns the number of live games
func (r *Registry[T]) Len() int {
	n := 0
	r.sessions.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Range calls fn for each live game until fn returns false
func (r *Registry[T]) Range(fn func(playerID string, game T) bool) {
	r.sessions.Range(func(k, v any) bool {
		return fn(k.(string), v.(T))
	})
}
