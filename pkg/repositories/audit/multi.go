package audit

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fadedpez/tucoblackjack/internal/logging"
	"github.com/fadedpez/tucoblackjack/pkg/entities"
)

// Multi records every event to each sink and joins their errors
type Multi []Sink

// Record implements Sink
func (m Multi) Record(ctx context.Context, event *entities.SettlementEvent) error {
	var errs []error
	for _, sink := range m {
		if err := sink.Record(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Async records events in the background. Failures are logged, never returned.
type Async struct {
	sink    Sink
	timeout time.Duration
	logger  *logging.Logger
	wg      sync.WaitGroup
}

// NewAsync wraps sink. Each write gets its own timeout, detached from the caller's context.
func NewAsync(sink Sink, timeout time.Duration, logger *logging.Logger) *Async {
	if sink == nil {
		sink = Nop{}
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Async{
		sink:    sink,
		timeout: timeout,
		logger:  logging.OrDefault(logger).WithComponent("audit"),
	}
}

// Record implements Sink and always returns nil
func (a *Async) Record(ctx context.Context, event *entities.SettlementEvent) error {
	ctx = context.WithoutCancel(ctx)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				a.logger.Error("audit sink panicked", "game", event.GameID, "panic", r)
			}
		}()

		ctx, cancel := context.WithTimeout(ctx, a.timeout)
		defer cancel()

		if err := a.sink.Record(ctx, event); err != nil {
			a.logger.Warn("failed to record settlement", "game", event.GameID, "player", event.PlayerID, "error", err)
		}
	}()
	return nil
}

// Wait blocks until every pending write has finished
func (a *Async) Wait() {
	a.wg.Wait()
}
