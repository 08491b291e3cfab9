package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	idiscord "github.com/fadedpez/tucoblackjack/internal/discord"
	"github.com/fadedpez/tucoblackjack/internal/logging"
	"github.com/fadedpez/tucoblackjack/pkg/services/blackjack"
	"github.com/fadedpez/tucoblackjack/pkg/services/wallet"
)

const (
	commandBlackjack = "blackjack"
	commandWallet    = "wallet"

	defaultHistoryLimit = 5
)

// Table is the game engine surface the bot drives
type Table interface {
	StartGame(ctx context.Context, playerID string, bet int64) (*blackjack.GameView, error)
	ApplyActionTo(ctx context.Context, playerID, gameID string, action blackjack.Action, handIndex int) (*blackjack.GameView, error)
}

// Config holds the Discord application settings
type Config struct {
	AppID        string
	GuildID      string // Empty registers commands globally
	HistoryLimit int    // Transactions shown by /wallet
}

// Bot represents the Discord bot instance
type Bot struct {
	session  idiscord.SessionHandler
	cfg      Config
	table    Table
	wallets  wallet.WalletService
	observer *GameObserver
	renderer *Renderer
	logger   *logging.Logger

	removeHandler func()
}

// NewBot creates a new instance of the bot. The observer must be the one the table publishes
// dealer steps to, so the bot can hand it the messages to edit.
func NewBot(session idiscord.SessionHandler, cfg Config, table Table, wallets wallet.WalletService, observer *GameObserver, logger *logging.Logger) *Bot {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = defaultHistoryLimit
	}
	return &Bot{
		session:  session,
		cfg:      cfg,
		table:    table,
		wallets:  wallets,
		observer: observer,
		renderer: observer.renderer,
		logger:   logging.OrDefault(logger).WithComponent("discord"),
	}
}

var minBet = 1.0

func applicationCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        commandBlackjack,
			Description: "¡Juega blackjack conmigo, amigo! Bet credits on a hand",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "bet",
					Description: "Credits to wager",
					Required:    true,
					MinValue:    &minBet,
				},
			},
		},
		{
			Name:        commandWallet,
			Description: "Check your balance and recent transactions",
		},
	}
}

// Start connects to Discord and registers the slash commands
func (b *Bot) Start() error {
	b.removeHandler = b.session.AddHandler(b.handleInteractions)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	for _, cmd := range applicationCommands() {
		if _, err := b.session.ApplicationCommandCreate(b.cfg.AppID, b.cfg.GuildID, cmd); err != nil {
			return fmt.Errorf("error creating command %s: %w", cmd.Name, err)
		}
		b.logger.Info("registered command", "command", cmd.Name, "guild", b.cfg.GuildID)
	}

	return nil
}

// Stop gracefully shuts down the bot and closes the Discord connection
func (b *Bot) Stop() error {
	if b.removeHandler != nil {
		b.removeHandler()
	}
	if err := b.session.Close(); err != nil {
		return fmt.Errorf("error closing connection: %w", err)
	}
	return nil
}

// Run starts the bot, blocks until ctx is done and then disconnects
func (b *Bot) Run(ctx context.Context) error {
	if err := b.Start(); err != nil {
		return err
	}
	b.logger.Info("bot is running")
	<-ctx.Done()
	return b.Stop()
}
