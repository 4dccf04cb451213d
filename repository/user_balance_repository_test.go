package repository

import (
	"context"
	"testing"
	"time"

	"ryabank/economy"
	"ryabank/models"
	"ryabank/repository/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserBalanceRepository_Create(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserBalanceRepository(testDB.DB)
	ctx := context.Background()

	t.Run("missing user", func(t *testing.T) {
		balance, err := repo.GetByUserID(ctx, 999)
		require.NoError(t, err)
		assert.Nil(t, balance)
	})

	t.Run("create and read back", func(t *testing.T) {
		input := testutil.CreateTestBalanceWithFunds(1, 2500, "1.2345")

		created, err := repo.Create(ctx, input)
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, int64(2500), created.SoftBalance)
		assert.Equal(t, "1.2345", created.HardBalance.StringFixed(4))
		assert.True(t, created.TotalHardBought.IsZero())
		assert.Equal(t, 1, created.Level)

		fetched, err := repo.GetByUserID(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, fetched)
		assert.True(t, input.EnergyLastUpdated.Equal(fetched.EnergyLastUpdated))
	})

	t.Run("duplicate create returns nil", func(t *testing.T) {
		created, err := repo.Create(ctx, testutil.CreateTestBalance(1))
		require.NoError(t, err)
		assert.Nil(t, created)

		fetched, err := repo.GetByUserID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(2500), fetched.SoftBalance)
	})
}

func TestUserBalanceRepository_Update(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserBalanceRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.Create(ctx, testutil.CreateTestBalance(7))
	require.NoError(t, err)

	soft := int64(8990)
	hard := decimal.RequireFromString("10.5")
	spent := int64(1010)
	energy := 12
	regenAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	err = repo.Update(ctx, 7, models.BalanceUpdate{
		SoftBalance:       &soft,
		HardBalance:       &hard,
		TotalSoftSpent:    &spent,
		EnergyCurrent:     &energy,
		EnergyLastUpdated: &regenAt,
	})
	require.NoError(t, err)

	balance, err := repo.GetByUserIDForUpdate(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(8990), balance.SoftBalance)
	assert.True(t, balance.HardBalance.Equal(hard))
	assert.Equal(t, int64(1010), balance.TotalSoftSpent)
	assert.Equal(t, 12, balance.EnergyCurrent)
	assert.True(t, regenAt.Equal(balance.EnergyLastUpdated))
	// Untouched columns keep their values.
	assert.Equal(t, 30, balance.EnergyMax)
	assert.Equal(t, int64(0), balance.TotalSoftEarned)

	t.Run("empty update is a no-op", func(t *testing.T) {
		assert.NoError(t, repo.Update(ctx, 7, models.BalanceUpdate{}))
	})

	t.Run("unknown user", func(t *testing.T) {
		err := repo.Update(ctx, 404, models.BalanceUpdate{SoftBalance: &soft})
		assert.ErrorIs(t, err, economy.ErrUserNotFound)
	})

	t.Run("negative balance violates constraint", func(t *testing.T) {
		negative := int64(-1)
		err := repo.Update(ctx, 7, models.BalanceUpdate{SoftBalance: &negative})
		assert.Error(t, err)
	})
}
