package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Quote is a read-only price for a prospective trade
type Quote struct {
	AmountHard decimal.Decimal
	Soft       int64 // cost for a buy, reward for a sell
	Rate       decimal.Decimal
	RateAfter  decimal.Decimal
}

// TradeResult represents the outcome of an executed buy or sell
type TradeResult struct {
	TransactionID  uuid.UUID
	UserID         int64
	Type           PoolTransactionType
	AmountHard     decimal.Decimal
	Soft           int64
	NewSoftBalance int64
	NewHardBalance decimal.Decimal
	NewRate        decimal.Decimal
}

// TopUpResult represents soft currency minted from an external purchase
type TopUpResult struct {
	TransactionID  uuid.UUID
	UserID         int64
	ExternalUnits  int64
	Tier           PackageTier
	BonusPercent   int64
	SoftCredited   int64
	NewSoftBalance int64
	Rate           decimal.Decimal
}

// EnergyState is a user's energy after lazy regeneration
type EnergyState struct {
	UserID      int64
	Current     int
	Maximum     int
	LastUpdated time.Time
	NextUnitAt  *time.Time // nil when the bar is full
}

// PriceMultipliers are the economy-wide price factors
type PriceMultipliers struct {
	Soft        decimal.Decimal
	Hard        decimal.Decimal
	SoftSupply  decimal.Decimal
	BurnedTotal decimal.Decimal
	BurnRatio   decimal.Decimal
}

// UpgradeQuote is the price of the next level of an upgrade track
type UpgradeQuote struct {
	UpgradeType  UpgradeType
	Currency     Currency
	CurrentLevel int
	MaxLevel     int
	PriceSoft    int64
	PriceHard    decimal.Decimal
	Multiplier   decimal.Decimal
}

// UpgradeResult represents a completed upgrade purchase
type UpgradeResult struct {
	TransactionID  uuid.UUID
	UpgradeType    UpgradeType
	Currency       Currency
	NewLevel       int
	PaidSoft       int64
	PaidHard       decimal.Decimal
	NewSoftBalance int64
	NewHardBalance decimal.Decimal
}
