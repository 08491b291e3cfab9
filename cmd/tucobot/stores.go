package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/fadedpez/tucoblackjack/internal/config"
	"github.com/fadedpez/tucoblackjack/internal/logging"
	"github.com/fadedpez/tucoblackjack/pkg/repositories/audit"
	walletRepo "github.com/fadedpez/tucoblackjack/pkg/repositories/wallet"
)

// openLedger opens the configured wallet backend, applying migrations
func openLedger(ctx context.Context, cfg *config.Config, logger *logging.Logger) (walletRepo.Repository, error) {
	switch cfg.LedgerBackend {
	case config.LedgerMemory:
		logger.Warn("using the in-memory ledger, balances are lost on exit")
		return walletRepo.NewMemoryRepository(), nil
	case config.LedgerPostgres:
		return walletRepo.NewPostgresRepository(ctx, cfg.PostgresDSN, logger)
	default:
		if err := cfg.EnsureDataDir(); err != nil {
			return nil, err
		}
		return walletRepo.NewSQLiteRepository(cfg.SQLitePath, logger)
	}
}

// auditStack is every configured audit destination
type auditStack struct {
	sinks  audit.Multi
	stores []audit.Store // Stores that support retention
	sqlite *audit.SQLiteStore
	close  []func() error
}

// Close releases every destination
func (a *auditStack) Close() error {
	var errs []error
	for i := len(a.close) - 1; i >= 0; i-- {
		errs = append(errs, a.close[i]())
	}
	return errors.Join(errs...)
}

// openAudit connects the SQLite, Elasticsearch and NATS destinations that are configured
func openAudit(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*auditStack, error) {
	stack := &auditStack{}

	if cfg.AuditSQLite {
		if err := cfg.EnsureDataDir(); err != nil {
			return nil, err
		}
		store, err := audit.NewSQLiteStore(cfg.AuditSQLitePath, logger)
		if err != nil {
			return nil, fmt.Errorf("opening audit database: %w", err)
		}
		stack.sqlite = store
		stack.sinks = append(stack.sinks, store)
		stack.stores = append(stack.stores, store)
		stack.close = append(stack.close, store.Close)
	}

	if cfg.ElasticsearchURL != "" {
		esConfig := audit.DefaultElasticsearchConfig()
		esConfig.URL = cfg.ElasticsearchURL
		esConfig.Username = cfg.ElasticsearchUsername
		esConfig.Password = cfg.ElasticsearchPassword
		esConfig.IndexPrefix = cfg.ElasticsearchIndexPrefix

		store, err := audit.NewElasticsearchStore(ctx, esConfig, logger)
		if err != nil {
			stack.Close()
			return nil, fmt.Errorf("connecting to elasticsearch: %w", err)
		}
		stack.sinks = append(stack.sinks, store)
		stack.stores = append(stack.stores, store)
		stack.close = append(stack.close, store.Close)
	}

	if cfg.NATSURL != "" {
		publisher, err := audit.NewNATSPublisher(cfg.NATSURL, cfg.NATSSubject, logger)
		if err != nil {
			stack.Close()
			return nil, fmt.Errorf("connecting to nats: %w", err)
		}
		stack.sinks = append(stack.sinks, publisher)
		stack.close = append(stack.close, publisher.Close)
	}

	return stack, nil
}
