// Package economy holds the pure arithmetic of the game economy: the
// constant-product exchange, lazy energy regeneration and upgrade pricing.
// Nothing here touches storage or the clock.
package economy

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// HardPrecision is the number of fractional digits carried by the hard currency.
const HardPrecision int32 = 4

// TruncateHard drops everything past the fourth fractional digit.
func TruncateHard(amount decimal.Decimal) decimal.Decimal {
	return amount.Truncate(HardPrecision)
}

// ValidateHardAmount normalizes a user supplied hard amount and rejects
// anything that is not strictly positive after truncation.
func ValidateHardAmount(amount decimal.Decimal) (decimal.Decimal, error) {
	normalized := TruncateHard(amount)
	if !normalized.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrInvalidAmount, amount.String())
	}
	return normalized, nil
}

// CurrentRate is the soft price of one hard unit. A zero hard side yields 0.
func CurrentRate(hardPool, softPool decimal.Decimal) decimal.Decimal {
	if hardPool.IsZero() {
		return decimal.Zero
	}
	return softPool.Div(hardPool)
}

// BuyCost returns the soft units a buyer pays for amountHard.
//
// The new soft side is k / (hard - amount), so the cost reduces to
// soft * amount / (hard - amount), truncated toward zero.
func BuyCost(amountHard, hardPool, softPool decimal.Decimal) (int64, error) {
	if !amountHard.IsPositive() {
		return 0, fmt.Errorf("%w: %s", ErrInvalidAmount, amountHard.String())
	}
	if amountHard.GreaterThanOrEqual(hardPool) {
		return 0, fmt.Errorf("%w: requested %s, pool holds %s",
			ErrInsufficientPoolLiquidity, amountHard.String(), hardPool.String())
	}

	newHard := hardPool.Sub(amountHard)
	cost, _ := softPool.Mul(amountHard).QuoRem(newHard, 0)
	return cost.IntPart(), nil
}

// SellReward returns the soft units a seller receives for amountHard,
// soft * amount / (hard + amount) truncated toward zero.
func SellReward(amountHard, hardPool, softPool decimal.Decimal) (int64, error) {
	if !amountHard.IsPositive() {
		return 0, fmt.Errorf("%w: %s", ErrInvalidAmount, amountHard.String())
	}
	if !hardPool.IsPositive() || !softPool.IsPositive() {
		return 0, fmt.Errorf("%w: pool is empty", ErrInsufficientPoolLiquidity)
	}

	newHard := hardPool.Add(amountHard)
	reward, _ := softPool.Mul(amountHard).QuoRem(newHard, 0)
	if reward.GreaterThan(softPool) {
		return 0, fmt.Errorf("%w: reward %s exceeds soft pool %s",
			ErrInsufficientPoolLiquidity, reward.String(), softPool.String())
	}
	return reward.IntPart(), nil
}

// PoolAfterBuy is the pool pair persisted after a buy that charged cost.
func PoolAfterBuy(amountHard, hardPool, softPool decimal.Decimal, cost int64) (decimal.Decimal, decimal.Decimal) {
	return hardPool.Sub(amountHard), softPool.Add(decimal.NewFromInt(cost))
}

// PoolAfterSell is the pool pair persisted after a sell that paid reward.
func PoolAfterSell(amountHard, hardPool, softPool decimal.Decimal, reward int64) (decimal.Decimal, decimal.Decimal) {
	return hardPool.Add(amountHard), softPool.Sub(decimal.NewFromInt(reward))
}

// ConstantProduct returns k for a pool pair.
func ConstantProduct(hardPool, softPool decimal.Decimal) decimal.Decimal {
	return hardPool.Mul(softPool)
}
