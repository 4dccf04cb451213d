package economy

import "errors"

// Pool ledger faults. Recovered locally with seed values unless strict mode is on.
var (
	ErrPoolNotFound  = errors.New("pool not found")
	ErrPoolCorrupted = errors.New("pool has a non-positive amount")
)

// User-caused failures. Their messages are safe to show to the player as is.
var (
	ErrBelowMinimumTrade         = errors.New("trade amount is below the minimum")
	ErrInsufficientFunds         = errors.New("insufficient soft currency")
	ErrInsufficientHoldings      = errors.New("insufficient hard currency")
	ErrInsufficientPoolLiquidity = errors.New("insufficient pool liquidity")
	ErrInsufficientResource      = errors.New("insufficient energy")
	ErrMaxLevelReached           = errors.New("maximum level reached")
	ErrLicenseRequirementNotMet  = errors.New("license requirement not met")
	ErrInvalidAmount             = errors.New("amount must be positive")
	ErrUnknownUpgrade            = errors.New("unknown upgrade type")
	ErrUnknownPackageTier        = errors.New("unknown package tier")
	ErrUnknownCurrency           = errors.New("unknown currency")
	ErrUserNotFound              = errors.New("user not found")
)

// Technical failures.
var (
	ErrConcurrencyConflict = errors.New("concurrent update conflict, try again")
	ErrStorageUnavailable  = errors.New("storage unavailable")
)

var userErrors = []error{
	ErrBelowMinimumTrade,
	ErrInsufficientFunds,
	ErrInsufficientHoldings,
	ErrInsufficientPoolLiquidity,
	ErrInsufficientResource,
	ErrMaxLevelReached,
	ErrLicenseRequirementNotMet,
	ErrInvalidAmount,
	ErrUnknownUpgrade,
	ErrUnknownPackageTier,
	ErrUnknownCurrency,
	ErrUserNotFound,
}

// IsUserError reports whether err is a business-rule failure caused by the
// player's request rather than by the system.
func IsUserError(err error) bool {
	if err == nil {
		return false
	}
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsKnown reports whether err already belongs to the economy error taxonomy.
func IsKnown(err error) bool {
	return IsUserError(err) ||
		errors.Is(err, ErrConcurrencyConflict) ||
		errors.Is(err, ErrStorageUnavailable) ||
		errors.Is(err, ErrPoolNotFound) ||
		errors.Is(err, ErrPoolCorrupted)
}
