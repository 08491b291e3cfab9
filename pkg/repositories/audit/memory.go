package audit

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fadedpez/tucoblackjack/pkg/entities"
)

// MemoryStore implements Store in memory
type MemoryStore struct {
	mu     sync.RWMutex
	events []*entities.SettlementEvent
}

// NewMemoryStore creates a new in-memory audit store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Record implements Sink
func (s *MemoryStore) Record(_ context.Context, event *entities.SettlementEvent) error {
	if err := validate(event); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *event
	s.events = append(s.events, &copied)
	return nil
}

// ListByPlayer implements Store
func (s *MemoryStore) ListByPlayer(_ context.Context, playerID string, limit int) ([]*entities.SettlementEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*entities.SettlementEvent
	for _, e := range s.events {
		if e.PlayerID == playerID {
			copied := *e
			out = append(out, &copied)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SettledAt.After(out[j].SettledAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// PruneOlderThan implements Store
func (s *MemoryStore) PruneOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.events[:0]
	var pruned int64
	for _, e := range s.events {
		if e.SettledAt.Before(cutoff) {
			pruned++
			continue
		}
		kept = append(kept, e)
	}
	s.events = kept
	return pruned, nil
}

// Len returns the number of stored events
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// Close implements Store
func (s *MemoryStore) Close() error {
	return nil
}
