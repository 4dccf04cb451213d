package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Well-known pool names
const (
	// PoolGameBankHard holds the hard side of the exchange market.
	PoolGameBankHard = "game_bank_rbtc"
	// PoolGameBankSoft holds the soft side of the exchange market.
	PoolGameBankSoft = "game_bank_ryabucks"
	// PoolTotalSoftSupply tracks the aggregate soft currency in circulation.
	PoolTotalSoftSupply = "total_bank_ryabucks"

	// CounterBurnedHard is the burned hard currency counter. Burn audit records carry it as their pool name.
	CounterBurnedHard = "burned_rbtc"
)

// Pool is a named reserve pair
type Pool struct {
	Name        string          `db:"name"`
	HardAmount  decimal.Decimal `db:"hard_currency_amount"`
	SoftAmount  decimal.Decimal `db:"soft_currency_amount"`
	LastUpdated time.Time       `db:"last_updated"`
}

// Market is the reserve pair the exchange prices against
type Market struct {
	Hard decimal.Decimal
	Soft decimal.Decimal

	// Rows the reserves were read from, with seed values substituted where needed
	HardPool *Pool
	SoftPool *Pool

	// Set when the stored value was missing or non-positive and the seed was used instead
	HardFromSeed bool
	SoftFromSeed bool
}

// PoolAudit is a point-in-time snapshot of the pool ledger
type PoolAudit struct {
	Hard            decimal.Decimal
	Soft            decimal.Decimal
	ConstantProduct decimal.Decimal
	Rate            decimal.Decimal
	SoftSupply      decimal.Decimal
	BurnedTotal     decimal.Decimal
	HardFromSeed    bool
	SoftFromSeed    bool
	ChainVerified   int
	ChainHead       string
	CheckedAt       time.Time
}
