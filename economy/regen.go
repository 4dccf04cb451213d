package economy

import (
	"fmt"
	"time"
)

// EffectiveCurrent computes the energy a user holds at now without a
// background ticker.
//
// lastUpdated only moves forward by whole intervals, so progress inside a
// partially elapsed interval carries over to the next read. Once the bar is
// full the timestamp is reset to now. A full bar, a clock that went backwards
// or a non-positive interval leave the state untouched.
func EffectiveCurrent(current, maximum int, lastUpdated, now time.Time, intervalMinutes, perInterval int) (int, time.Time) {
	lastUpdated = lastUpdated.UTC()
	now = now.UTC()

	if intervalMinutes <= 0 || current >= maximum {
		return current, lastUpdated
	}
	if perInterval <= 0 {
		perInterval = 1
	}

	interval := time.Duration(intervalMinutes) * time.Minute
	elapsed := now.Sub(lastUpdated)
	if elapsed < interval {
		return current, lastUpdated
	}

	intervals := int64(elapsed / interval)
	missing := int64(maximum - current)
	needed := (missing + int64(perInterval) - 1) / int64(perInterval)
	if intervals >= needed {
		return maximum, now
	}

	gained := int(intervals) * perInterval
	return current + gained, lastUpdated.Add(time.Duration(intervals) * interval)
}

// Consume spends cost units of energy.
func Consume(current, cost int) (int, error) {
	if cost < 0 {
		return current, fmt.Errorf("%w: cost %d", ErrInvalidAmount, cost)
	}
	if current < cost {
		return current, fmt.Errorf("%w: have %d, need %d", ErrInsufficientResource, current, cost)
	}
	return max(current-cost, 0), nil
}

// Restore adds amount units capped at maximum. It never fails; a
// non-positive amount is a no-op.
func Restore(current, maximum, amount int) int {
	if amount <= 0 || current >= maximum {
		return current
	}
	return min(current+amount, maximum)
}
