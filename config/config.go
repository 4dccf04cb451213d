package config

import (
	"fmt"
	"sync"
	"time"

	"ryabank/database"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL  string `envconfig:"DATABASE_URL"`
	DatabaseName string `envconfig:"DATABASE_NAME"`

	// Environment
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Market seeds, used when a pool row is missing
	SeedPoolHard      decimal.Decimal `envconfig:"SEED_POOL_HARD" default:"10000"`
	SeedPoolSoft      decimal.Decimal `envconfig:"SEED_POOL_SOFT" default:"1000000"`
	InitialSoftSupply decimal.Decimal `envconfig:"INITIAL_SOFT_SUPPLY" default:"1000000"`
	TotalHardSupply   decimal.Decimal `envconfig:"TOTAL_HARD_SUPPLY" default:"21000"`
	MinTradeHard      decimal.Decimal `envconfig:"MIN_TRADE_HARD" default:"0.001"`

	// Energy
	EnergyRegenMinutes     int `envconfig:"ENERGY_REGEN_MINUTES" default:"48"`
	EnergyRegenPerInterval int `envconfig:"ENERGY_REGEN_PER_INTERVAL" default:"1"`
	EnergyDefaultMax       int `envconfig:"ENERGY_DEFAULT_MAX" default:"30"`

	// Accounts and pricing
	StartingSoftBalance        int64           `envconfig:"STARTING_SOFT_BALANCE" default:"1000"`
	BurnSmoothing              float64         `envconfig:"BURN_SMOOTHING" default:"0.7"`
	ExternalUnitHardEquivalent decimal.Decimal `envconfig:"EXTERNAL_UNIT_HARD_EQUIVALENT" default:"0.01"`

	// Storage behaviour
	PoolStrictMode bool          `envconfig:"POOL_STRICT_MODE" default:"false"`
	MaxTxRetries   int           `envconfig:"MAX_TX_RETRIES" default:"3"`
	TxRetryBackoff time.Duration `envconfig:"TX_RETRY_BACKOFF" default:"25ms"`

	// Background jobs
	PoolAuditCron string `envconfig:"POOL_AUDIT_CRON" default:"*/15 * * * *"`

	// Event forwarding
	NATSURL     string `envconfig:"NATS_URL" default:"nats://localhost:4222"`
	NATSEnabled bool   `envconfig:"NATS_ENABLED" default:"false"`
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = Load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// Load reads and validates configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Environment != "test" && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if !c.SeedPoolHard.IsPositive() || !c.SeedPoolSoft.IsPositive() {
		return fmt.Errorf("SEED_POOL_HARD and SEED_POOL_SOFT must be positive")
	}
	if !c.InitialSoftSupply.IsPositive() || !c.TotalHardSupply.IsPositive() {
		return fmt.Errorf("INITIAL_SOFT_SUPPLY and TOTAL_HARD_SUPPLY must be positive")
	}
	if c.MinTradeHard.IsNegative() {
		return fmt.Errorf("MIN_TRADE_HARD must not be negative")
	}
	if c.EnergyRegenMinutes <= 0 {
		return fmt.Errorf("ENERGY_REGEN_MINUTES must be positive")
	}
	if c.EnergyDefaultMax < 0 || c.StartingSoftBalance < 0 {
		return fmt.Errorf("ENERGY_DEFAULT_MAX and STARTING_SOFT_BALANCE must not be negative")
	}
	if c.BurnSmoothing <= 0 {
		return fmt.Errorf("BURN_SMOOTHING must be positive")
	}
	if c.MaxTxRetries < 0 {
		return fmt.Errorf("MAX_TX_RETRIES must not be negative")
	}
	return nil
}

// ConnectionURL is DATABASE_URL with DATABASE_NAME applied, if set
func (c *Config) ConnectionURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}
