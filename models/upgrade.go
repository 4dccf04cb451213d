package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency names the currency a purchase is paid in
type Currency string

const (
	CurrencySoft Currency = "ryabucks"
	CurrencyHard Currency = "rbtc"
)

// UpgradeType identifies a licence or specialist track
type UpgradeType string

const (
	UpgradeFarmLicense       UpgradeType = "farm_license"
	UpgradeExpeditionLicense UpgradeType = "expedition_license"
	UpgradeFarmWorker        UpgradeType = "farm_worker"
	UpgradeExpeditionGuide   UpgradeType = "expedition_guide"
)

// UpgradeDefinition describes one upgrade track
type UpgradeDefinition struct {
	Type          UpgradeType
	MaxLevel      int
	BaseSoftPrice int64
	BaseHardPrice decimal.Decimal

	// Specialist tracks can never be ahead of the licence they depend on.
	RequiresLicense UpgradeType
}

// UpgradeCatalog maps each upgrade type to its definition
type UpgradeCatalog map[UpgradeType]UpgradeDefinition

// DefaultUpgradeCatalog returns the upgrade tracks shipped with the game
func DefaultUpgradeCatalog() UpgradeCatalog {
	return UpgradeCatalog{
		UpgradeFarmLicense: {
			Type:          UpgradeFarmLicense,
			MaxLevel:      10,
			BaseSoftPrice: 5000,
			BaseHardPrice: decimal.RequireFromString("0.5"),
		},
		UpgradeExpeditionLicense: {
			Type:          UpgradeExpeditionLicense,
			MaxLevel:      5,
			BaseSoftPrice: 20000,
			BaseHardPrice: decimal.RequireFromString("2"),
		},
		UpgradeFarmWorker: {
			Type:            UpgradeFarmWorker,
			MaxLevel:        10,
			BaseSoftPrice:   1500,
			BaseHardPrice:   decimal.RequireFromString("0.15"),
			RequiresLicense: UpgradeFarmLicense,
		},
		UpgradeExpeditionGuide: {
			Type:            UpgradeExpeditionGuide,
			MaxLevel:        5,
			BaseSoftPrice:   8000,
			BaseHardPrice:   decimal.RequireFromString("0.8"),
			RequiresLicense: UpgradeExpeditionLicense,
		},
	}
}

// UpgradeLevel is a user's progress on one upgrade track
type UpgradeLevel struct {
	UserID      int64       `db:"user_id"`
	UpgradeType UpgradeType `db:"upgrade_type"`
	Level       int         `db:"level"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

// PackageTier is a real-money top-up package
type PackageTier string

const (
	PackageBasic    PackageTier = "basic"
	PackageStandard PackageTier = "standard"
	PackagePremium  PackageTier = "premium"
	PackageWhale    PackageTier = "whale"
)

// PackageTierBonusPercent is the extra soft currency granted per package tier
var PackageTierBonusPercent = map[PackageTier]int64{
	PackageBasic:    0,
	PackageStandard: 10,
	PackagePremium:  25,
	PackageWhale:    50,
}
