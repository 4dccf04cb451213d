package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserBalance is the economy state owned by a single player
type UserBalance struct {
	UserID             int64           `db:"user_id"`
	SoftBalance        int64           `db:"soft_balance"`
	HardBalance        decimal.Decimal `db:"hard_balance"`
	EnergyCurrent      int             `db:"energy_current"`
	EnergyMax          int             `db:"energy_max"`
	EnergyLastUpdated  time.Time       `db:"energy_last_updated"`
	Experience         int64           `db:"experience"`
	Level              int             `db:"level"`
	TotalSoftEarned    int64           `db:"total_soft_earned"`
	TotalSoftSpent     int64           `db:"total_soft_spent"`
	TotalHardBought    decimal.Decimal `db:"total_hard_bought"`
	TotalHardSold      decimal.Decimal `db:"total_hard_sold"`
	TotalSoftPurchased int64           `db:"total_soft_purchased"`
	CreatedAt          time.Time       `db:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at"`
}

// BalanceUpdate is a partial update of a UserBalance. Nil fields are left untouched.
type BalanceUpdate struct {
	SoftBalance        *int64
	HardBalance        *decimal.Decimal
	EnergyCurrent      *int
	EnergyMax          *int
	EnergyLastUpdated  *time.Time
	TotalSoftEarned    *int64
	TotalSoftSpent     *int64
	TotalHardBought    *decimal.Decimal
	TotalHardSold      *decimal.Decimal
	TotalSoftPurchased *int64
}

// IsEmpty reports whether the update changes nothing
func (u BalanceUpdate) IsEmpty() bool {
	return u.SoftBalance == nil &&
		u.HardBalance == nil &&
		u.EnergyCurrent == nil &&
		u.EnergyMax == nil &&
		u.EnergyLastUpdated == nil &&
		u.TotalSoftEarned == nil &&
		u.TotalSoftSpent == nil &&
		u.TotalHardBought == nil &&
		u.TotalHardSold == nil &&
		u.TotalSoftPurchased == nil
}
