package service

import (
	"time"

	"ryabank/models"

	"github.com/shopspring/decimal"
)

// Settings are the economy tunables shared by all services
type Settings struct {
	SeedPoolHard      decimal.Decimal
	SeedPoolSoft      decimal.Decimal
	InitialSoftSupply decimal.Decimal
	TotalHardSupply   decimal.Decimal
	MinTradeHard      decimal.Decimal

	EnergyRegenMinutes     int
	EnergyRegenPerInterval int
	EnergyDefaultMax       int
	StartingSoftBalance    int64

	BurnSmoothing              float64
	ExternalUnitHardEquivalent decimal.Decimal

	// StrictPools turns a missing or corrupted market pool into a hard failure
	StrictPools  bool
	MaxTxRetries int
	RetryBackoff time.Duration

	Catalog models.UpgradeCatalog

	// Clock defaults to UTC wall time
	Clock func() time.Time
}

// DefaultSettings returns the values the game ships with
func DefaultSettings() Settings {
	return Settings{
		SeedPoolHard:               decimal.NewFromInt(10000),
		SeedPoolSoft:               decimal.NewFromInt(1000000),
		InitialSoftSupply:          decimal.NewFromInt(1000000),
		TotalHardSupply:            decimal.NewFromInt(21000),
		MinTradeHard:               decimal.RequireFromString("0.001"),
		EnergyRegenMinutes:         48,
		EnergyRegenPerInterval:     1,
		EnergyDefaultMax:           30,
		StartingSoftBalance:        1000,
		BurnSmoothing:              0.7,
		ExternalUnitHardEquivalent: decimal.RequireFromString("0.01"),
		MaxTxRetries:               3,
		RetryBackoff:               25 * time.Millisecond,
		Catalog:                    models.DefaultUpgradeCatalog(),
	}
}

func (s Settings) now() time.Time {
	if s.Clock != nil {
		return s.Clock().UTC()
	}
	return time.Now().UTC()
}
