package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/quartz"
	idiscord "github.com/fadedpez/tucoblackjack/internal/discord"
	"github.com/fadedpez/tucoblackjack/internal/status"
	"github.com/fadedpez/tucoblackjack/pkg/discord"
	"github.com/fadedpez/tucoblackjack/pkg/random"
	"github.com/fadedpez/tucoblackjack/pkg/scheduler"
	"github.com/fadedpez/tucoblackjack/pkg/services/blackjack"
	"github.com/fadedpez/tucoblackjack/pkg/services/wallet"
	"golang.org/x/sync/errgroup"
)

const retentionInterval = time.Hour

// RunCmd starts the bot
type RunCmd struct{}

func (c *RunCmd) Run(g *Globals) error {
	cfg, logger, err := g.load()
	if err != nil {
		return err
	}
	if err := cfg.RequireDiscord(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := openLedger(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}
	defer repo.Close()
	wallets := wallet.NewService(repo, cfg.StartingBalance, logger)

	auditStack, err := openAudit(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer auditStack.Close()

	session, err := idiscord.NewSession(cfg.Token)
	if err != nil {
		return fmt.Errorf("error creating Discord session: %w", err)
	}

	clock := quartz.NewReal()
	src := random.NewCrypto()
	observer := discord.NewGameObserver(session, discord.NewRenderer(src), logger)

	table := blackjack.NewService(wallets,
		blackjack.WithClock(clock),
		blackjack.WithRandom(src),
		blackjack.WithLogger(logger),
		blackjack.WithObserver(observer),
		blackjack.WithAuditSink(auditStack.sinks),
		blackjack.WithMultiplierResolver(discord.NewRoleMultiplierResolver(session, cfg.GuildID, cfg.RoleMultipliers)),
		blackjack.WithDealerDelays(cfg.DealerInitialDelay, cfg.DealerHitDelay),
	)

	bot := discord.NewBot(session, discord.Config{AppID: cfg.AppID, GuildID: cfg.GuildID}, table, wallets, observer, logger)

	sched := scheduler.NewScheduler(clock, logger)
	if cfg.AuditRetention > 0 {
		for i, store := range auditStack.stores {
			sched.AddTask(fmt.Sprintf("audit-retention-%d", i), retentionInterval,
				scheduler.AuditRetention(store, cfg.AuditRetention, clock, logger))
		}
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error { return bot.Run(groupCtx) })
	group.Go(func() error { return observer.Run(groupCtx) })
	group.Go(func() error { return sched.Run(groupCtx) })
	if cfg.StatusAddr != "" {
		srv := status.NewServer(cfg.StatusAddr, table, wallets, logger)
		group.Go(func() error { return srv.Run(groupCtx) })
	}

	logger.Info("tucobot is running, press CTRL-C to exit", "ledger", cfg.LedgerBackend, "environment", cfg.Environment)
	err = group.Wait()

	logger.Info("shutting down")
	if forced := table.ForceEndAll(); forced > 0 {
		logger.Warn("force-ended games on shutdown", "count", forced)
	}
	table.Wait()
	return err
}
