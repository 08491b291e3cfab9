package scheduler

import (
	"context"
	"time"

	"github.com/coder/quartz"
	"github.com/fadedpez/tucoblackjack/internal/logging"
	"github.com/fadedpez/tucoblackjack/pkg/repositories/audit"
)

// AuditRetention returns a task that prunes settlements older than retention
func AuditRetention(store audit.Store, retention time.Duration, clock quartz.Clock, logger *logging.Logger) func(context.Context) error {
	logger = logging.OrDefault(logger).WithComponent("retention")
	return func(ctx context.Context) error {
		cutoff := clock.Now().Add(-retention)
		pruned, err := store.PruneOlderThan(ctx, cutoff)
		if err != nil {
			return err
		}
		if pruned > 0 {
			logger.Info("pruned settlements", "count", pruned, "before", cutoff.Format(time.RFC3339))
		}
		return nil
	}
}
