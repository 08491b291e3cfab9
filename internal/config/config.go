package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Ledger backends
const (
	LedgerMemory   = "memory"
	LedgerSQLite   = "sqlite"
	LedgerPostgres = "postgres"
)

// Config holds all configuration for the application
type Config struct {
	// Discord configuration
	Token   string
	AppID   string
	GuildID string

	// Environment
	Environment string // "development" or "production"
	LogLevel    string
	DataDir     string

	// Ledger
	LedgerBackend   string
	SQLitePath      string
	PostgresDSN     string
	StartingBalance int64

	// Dealer pacing
	DealerInitialDelay time.Duration
	DealerHitDelay     time.Duration

	// Winnings multipliers keyed by guild role ID
	RoleMultipliers map[string]float64

	// Audit trail
	AuditSQLite              bool
	AuditSQLitePath          string
	AuditRetention           time.Duration // Zero keeps everything
	ElasticsearchURL         string
	ElasticsearchUsername    string
	ElasticsearchPassword    string
	ElasticsearchIndexPrefix string
	NATSURL                  string
	NATSSubject              string

	// Status HTTP surface; empty disables it
	StatusAddr string
}

// Load reads the configuration from environment variables, after loading envFile
// (".env" when empty) if it exists
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		// Only return error if file exists but couldn't be loaded
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error loading %s: %w", envFile, err)
		}
	}

	// Get working directory for resource paths
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg := &Config{
		Token:                    os.Getenv("DISCORD_TOKEN"),
		AppID:                    os.Getenv("APP_ID"),
		GuildID:                  os.Getenv("GUILD_ID"),
		Environment:              getEnvWithDefault("ENVIRONMENT", "development"),
		LogLevel:                 getEnvWithDefault("LOG_LEVEL", "info"),
		DataDir:                  getEnvWithDefault("DATA_DIR", filepath.Join(wd, "data")),
		LedgerBackend:            strings.ToLower(getEnvWithDefault("LEDGER_BACKEND", LedgerSQLite)),
		PostgresDSN:              os.Getenv("POSTGRES_DSN"),
		ElasticsearchURL:         os.Getenv("ELASTICSEARCH_URL"),
		ElasticsearchUsername:    os.Getenv("ELASTICSEARCH_USERNAME"),
		ElasticsearchPassword:    os.Getenv("ELASTICSEARCH_PASSWORD"),
		ElasticsearchIndexPrefix: getEnvWithDefault("ELASTICSEARCH_INDEX_PREFIX", "tuco"),
		NATSURL:                  os.Getenv("NATS_URL"),
		NATSSubject:              getEnvWithDefault("NATS_SUBJECT", "tuco.blackjack.settlements"),
		StatusAddr:               getEnvWithDefault("STATUS_ADDR", ":8080"),
	}
	cfg.SQLitePath = getEnvWithDefault("SQLITE_PATH", filepath.Join(cfg.DataDir, "tuco.db"))
	cfg.AuditSQLitePath = getEnvWithDefault("AUDIT_SQLITE_PATH", filepath.Join(cfg.DataDir, "audit.db"))

	if cfg.StartingBalance, err = getInt64("STARTING_BALANCE", 1000); err != nil {
		return nil, err
	}
	if cfg.DealerInitialDelay, err = getDuration("DEALER_INITIAL_DELAY", 1500*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.DealerHitDelay, err = getDuration("DEALER_HIT_DELAY", time.Second); err != nil {
		return nil, err
	}
	if cfg.AuditSQLite, err = getBool("AUDIT_SQLITE", true); err != nil {
		return nil, err
	}
	if cfg.AuditRetention, err = getDuration("AUDIT_RETENTION", 90*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.RoleMultipliers, err = ParseRoleMultipliers(os.Getenv("ROLE_MULTIPLIERS")); err != nil {
		return nil, err
	}

	// Validate required fields
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks that the configuration is coherent. Discord credentials are checked
// separately so admin commands run without them.
func (c *Config) validate() error {
	switch c.LedgerBackend {
	case LedgerMemory, LedgerSQLite:
	case LedgerPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required for the postgres ledger")
		}
	default:
		return fmt.Errorf("LEDGER_BACKEND must be memory, sqlite or postgres, got %q", c.LedgerBackend)
	}
	if c.StartingBalance < 0 {
		return fmt.Errorf("STARTING_BALANCE must not be negative")
	}
	if c.DealerInitialDelay < 0 || c.DealerHitDelay < 0 {
		return fmt.Errorf("dealer delays must not be negative")
	}
	if c.AuditRetention < 0 {
		return fmt.Errorf("AUDIT_RETENTION must not be negative")
	}
	return nil
}

// RequireDiscord checks the settings needed to connect the bot
func (c *Config) RequireDiscord() error {
	if c.Token == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}
	if c.AppID == "" {
		return fmt.Errorf("APP_ID is required")
	}
	return nil
}

// EnsureDataDir creates the data directory if it doesn't exist
func (c *Config) EnsureDataDir() error {
	if err := os.MkdirAll(c.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// ParseRoleMultipliers parses "roleID:1.5,roleID:2"
func ParseRoleMultipliers(s string) (map[string]float64, error) {
	multipliers := make(map[string]float64)
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		roleID, raw, ok := strings.Cut(entry, ":")
		if !ok || roleID == "" {
			return nil, fmt.Errorf("ROLE_MULTIPLIERS entry %q must be roleID:multiplier", entry)
		}
		m, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil || m < 1 {
			return nil, fmt.Errorf("ROLE_MULTIPLIERS entry %q needs a multiplier of at least 1", entry)
		}
		multipliers[strings.TrimSpace(roleID)] = m
	}
	return multipliers, nil
}

// getEnvWithDefault returns environment variable value or default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt64(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
