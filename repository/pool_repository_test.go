package repository

import (
	"context"
	"testing"

	"ryabank/models"
	"ryabank/repository/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRepository_SeedAndGet(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewPoolRepository(testDB.DB)
	ctx := context.Background()

	t.Run("missing pool", func(t *testing.T) {
		pool, err := repo.GetByName(ctx, models.PoolGameBankHard)
		require.NoError(t, err)
		assert.Nil(t, pool)
	})

	t.Run("seed inserts once", func(t *testing.T) {
		inserted, err := repo.Seed(ctx, models.PoolGameBankHard, decimal.RequireFromString("10000"), decimal.Zero)
		require.NoError(t, err)
		assert.True(t, inserted)

		inserted, err = repo.Seed(ctx, models.PoolGameBankHard, decimal.RequireFromString("1"), decimal.Zero)
		require.NoError(t, err)
		assert.False(t, inserted)

		pool, err := repo.GetByName(ctx, models.PoolGameBankHard)
		require.NoError(t, err)
		require.NotNil(t, pool)
		assert.True(t, pool.HardAmount.Equal(decimal.RequireFromString("10000")))
		assert.True(t, pool.SoftAmount.IsZero())
		assert.False(t, pool.LastUpdated.IsZero())
	})

	t.Run("upsert keeps four decimal places", func(t *testing.T) {
		err := repo.Upsert(ctx, models.PoolGameBankHard, decimal.RequireFromString("9989.9999"), decimal.Zero)
		require.NoError(t, err)

		pool, err := repo.GetByNameForUpdate(ctx, models.PoolGameBankHard)
		require.NoError(t, err)
		assert.Equal(t, "9989.9999", pool.HardAmount.StringFixed(4))
	})
}

func TestPoolRepository_SumSoftSupply(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewPoolRepository(testDB.DB)
	ctx := context.Background()

	total, err := repo.SumSoftSupply(ctx, nil)
	require.NoError(t, err)
	assert.True(t, total.IsZero())

	require.NoError(t, repo.Upsert(ctx, models.PoolGameBankSoft, decimal.Zero, decimal.NewFromInt(1000000)))
	require.NoError(t, repo.Upsert(ctx, models.PoolTotalSoftSupply, decimal.Zero, decimal.NewFromInt(5000000)))
	require.NoError(t, repo.Upsert(ctx, "event_pool", decimal.Zero, decimal.NewFromInt(250)))

	total, err = repo.SumSoftSupply(ctx, nil)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(6000250)))

	total, err = repo.SumSoftSupply(ctx, []string{models.PoolTotalSoftSupply})
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(1000250)))

	pools, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, pools, 3)
	assert.Equal(t, "event_pool", pools[0].Name)
	assert.Equal(t, models.PoolGameBankSoft, pools[1].Name)
	assert.Equal(t, models.PoolTotalSoftSupply, pools[2].Name)
}

func TestPoolRepository_RejectsNegativeReserves(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewPoolRepository(testDB.DB)
	ctx := context.Background()

	err := repo.Upsert(ctx, models.PoolGameBankHard, decimal.NewFromInt(-1), decimal.Zero)
	assert.Error(t, err)
}
