package economy

import (
	"math"

	"github.com/shopspring/decimal"
)

var (
	MinSoftMultiplier = decimal.NewFromFloat(0.2)
	MaxSoftMultiplier = decimal.NewFromInt(5)
	MinHardMultiplier = decimal.NewFromFloat(0.1)
)

// SoftMultiplier scales soft prices with money supply growth.
func SoftMultiplier(totalSupply, initialSupply decimal.Decimal) decimal.Decimal {
	if !initialSupply.IsPositive() {
		return decimal.NewFromInt(1)
	}
	ratio := totalSupply.Div(initialSupply)
	return clamp(ratio, MinSoftMultiplier, MaxSoftMultiplier)
}

// BurnRatio is the share of the total hard supply that has been burned.
func BurnRatio(burned, totalHardSupply decimal.Decimal) decimal.Decimal {
	if !totalHardSupply.IsPositive() {
		return decimal.Zero
	}
	return clamp(burned.Div(totalHardSupply), decimal.Zero, decimal.NewFromInt(1))
}

// HardMultiplier cheapens hard prices as hard currency is burned:
// max(0.1, 1 - ratio^smoothing).
func HardMultiplier(burnRatio decimal.Decimal, smoothing float64) decimal.Decimal {
	ratio, _ := clamp(burnRatio, decimal.Zero, decimal.NewFromInt(1)).Float64()
	if ratio == 0 {
		return decimal.NewFromInt(1)
	}
	value := decimal.NewFromFloat(1 - math.Pow(ratio, smoothing)).Round(6)
	return decimal.Max(value, MinHardMultiplier)
}

// PriceForLevel is base * 2^(level-1) * multiplier. Levels below 1 price as level 1.
func PriceForLevel(basePrice decimal.Decimal, level int, multiplier decimal.Decimal) decimal.Decimal {
	if level < 1 {
		level = 1
	}
	factor := decimal.NewFromInt(2).Pow(decimal.NewFromInt(int64(level - 1)))
	return basePrice.Mul(factor).Mul(multiplier)
}

// SoftPriceForLevel rounds up to whole soft units so fractional prices never undercharge.
func SoftPriceForLevel(basePrice int64, level int, multiplier decimal.Decimal) int64 {
	return PriceForLevel(decimal.NewFromInt(basePrice), level, multiplier).Ceil().IntPart()
}

// HardPriceForLevel rounds up to the hard currency precision.
func HardPriceForLevel(basePrice decimal.Decimal, level int, multiplier decimal.Decimal) decimal.Decimal {
	return PriceForLevel(basePrice, level, multiplier).RoundCeil(HardPrecision)
}

func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}
