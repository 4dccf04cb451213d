package repository

import (
	"context"
	"testing"

	"ryabank/repository/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBurnRepository_Increment(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewBurnRepository(testDB.DB)
	ctx := context.Background()

	total, err := repo.GetBurnedTotal(ctx)
	require.NoError(t, err)
	assert.True(t, total.IsZero(), "migration seeds the counter at zero")

	total, err = repo.IncrementBurnedTotal(ctx, decimal.RequireFromString("0.5"))
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("0.5")))

	total, err = repo.IncrementBurnedTotal(ctx, decimal.RequireFromString("1.2501"))
	require.NoError(t, err)
	assert.Equal(t, "1.7501", total.StringFixed(4))

	locked, err := repo.LockBurnedTotal(ctx)
	require.NoError(t, err)
	assert.True(t, locked.Equal(total))
}
