package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fadedpez/tucoblackjack/internal/config"
	"github.com/fadedpez/tucoblackjack/pkg/repositories/audit"
	"github.com/fadedpez/tucoblackjack/pkg/services/wallet"
)

const adminTimeout = 30 * time.Second

// GrantCmd credits a wallet, opening it first if needed
type GrantCmd struct {
	User        string `arg:"" help:"Discord user ID"`
	Amount      int64  `arg:"" help:"Credits to add"`
	Description string `default:"Admin grant" help:"Journal description"`
}

func (c *GrantCmd) Run(g *Globals) error {
	cfg, logger, err := g.load()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), adminTimeout)
	defer cancel()

	repo, err := openLedger(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer repo.Close()

	balance, err := wallet.NewService(repo, cfg.StartingBalance, logger).Grant(ctx, c.User, c.Amount, c.Description)
	if err != nil {
		return err
	}
	fmt.Printf("Granted %d credits to %s, balance is now %d\n", c.Amount, c.User, balance)
	return nil
}

// BalanceCmd prints a wallet balance
type BalanceCmd struct {
	User string `arg:"" help:"Discord user ID"`
}

func (c *BalanceCmd) Run(g *Globals) error {
	cfg, logger, err := g.load()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), adminTimeout)
	defer cancel()

	repo, err := openLedger(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer repo.Close()

	balance, found, err := wallet.NewService(repo, cfg.StartingBalance, logger).GetBalance(ctx, c.User)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%s has no wallet", c.User)
	}
	fmt.Printf("%s: %d credits\n", c.User, balance)
	return nil
}

// HistoryCmd lists settled games from the SQLite audit store
type HistoryCmd struct {
	User  string `arg:"" help:"Discord user ID"`
	Limit int    `default:"10" help:"Number of games to show"`
}

func (c *HistoryCmd) Run(g *Globals) error {
	cfg, logger, err := g.load()
	if err != nil {
		return err
	}
	if !cfg.AuditSQLite {
		return fmt.Errorf("history needs AUDIT_SQLITE enabled")
	}
	ctx, cancel := context.WithTimeout(context.Background(), adminTimeout)
	defer cancel()

	store, err := audit.NewSQLiteStore(cfg.AuditSQLitePath, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	events, err := store.ListByPlayer(ctx, c.User, c.Limit)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Printf("No settled games for %s\n", c.User)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SETTLED\tGAME\tBET\tHANDS\tDEALER\tNET\tFORCED")
	for _, e := range events {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%+d\t%t\n",
			e.SettledAt.Local().Format(time.DateTime), e.GameID, e.Bet, len(e.Hands), e.DealerValue, e.Net, e.Forced)
	}
	return w.Flush()
}

// MigrateCmd applies the ledger and audit migrations, which run whenever a store opens
type MigrateCmd struct{}

func (c *MigrateCmd) Run(g *Globals) error {
	cfg, logger, err := g.load()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), adminTimeout)
	defer cancel()

	if cfg.LedgerBackend == config.LedgerMemory {
		logger.Info("in-memory ledger has nothing to migrate")
	} else {
		repo, err := openLedger(ctx, cfg, logger)
		if err != nil {
			return err
		}
		if err := repo.Close(); err != nil {
			return err
		}
	}

	if cfg.AuditSQLite {
		store, err := audit.NewSQLiteStore(cfg.AuditSQLitePath, logger)
		if err != nil {
			return err
		}
		if err := store.Close(); err != nil {
			return err
		}
	}

	logger.Info("migrations applied", "ledger", cfg.LedgerBackend, "audit_sqlite", cfg.AuditSQLite)
	return nil
}
