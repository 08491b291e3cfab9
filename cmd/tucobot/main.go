package main

import (
	"github.com/alecthomas/kong"
	"github.com/fadedpez/tucoblackjack/internal/config"
	"github.com/fadedpez/tucoblackjack/internal/logging"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every subcommand
type Globals struct {
	EnvFile  string `name:"env-file" default:".env" help:"Environment file to load before reading settings"`
	LogLevel string `name:"log-level" help:"Override LOG_LEVEL (debug, info, warn, error)"`
}

// load reads the configuration and builds the root logger
func (g *Globals) load() (*config.Config, *logging.Logger, error) {
	cfg, err := config.Load(g.EnvFile)
	if err != nil {
		return nil, nil, err
	}
	if g.LogLevel != "" {
		cfg.LogLevel = g.LogLevel
	}
	return cfg, logging.NewLogger(logging.ParseLevel(cfg.LogLevel)), nil
}

type CLI struct {
	Globals

	Version kong.VersionFlag `short:"v" help:"Show version"`
	Run     RunCmd           `cmd:"" default:"1" help:"Run the Discord bot and status server"`
	Grant   GrantCmd         `cmd:"" help:"Credit a player's wallet"`
	Balance BalanceCmd       `cmd:"" help:"Show a player's balance"`
	History HistoryCmd       `cmd:"" help:"List a player's recent settled games"`
	Migrate MigrateCmd       `cmd:"" help:"Apply database migrations and exit"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("tucobot"),
		kong.Description("Tuco's blackjack table for Discord"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
