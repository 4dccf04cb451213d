package testutil

import (
	"time"

	"ryabank/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateTestBalance creates a user balance with a full energy bar
func CreateTestBalance(userID int64) *models.UserBalance {
	return &models.UserBalance{
		UserID:            userID,
		SoftBalance:       10000,
		HardBalance:       decimal.Zero,
		EnergyCurrent:     30,
		EnergyMax:         30,
		EnergyLastUpdated: time.Now().UTC().Truncate(time.Microsecond),
		Level:             1,
	}
}

// CreateTestBalanceWithFunds creates a user balance holding the given amounts
func CreateTestBalanceWithFunds(userID int64, soft int64, hard string) *models.UserBalance {
	balance := CreateTestBalance(userID)
	balance.SoftBalance = soft
	balance.HardBalance = decimal.RequireFromString(hard)
	return balance
}

// CreateTestTransaction creates an unlinked audit record. The repository fills
// in Seq, PrevHash and Hash on append.
func CreateTestTransaction(userID int64, txType models.PoolTransactionType) *models.PoolTransaction {
	return &models.PoolTransaction{
		ID:          uuid.New(),
		PoolName:    models.PoolGameBankHard,
		Type:        txType,
		HardDelta:   decimal.RequireFromString("-1.2345"),
		SoftDelta:   150,
		UserID:      userID,
		Description: "test " + string(txType),
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}
}
