package service

import (
	"context"
	"testing"

	"ryabank/economy"
	"ryabank/events"
	"ryabank/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestUpgrades(m *testMocks) UpgradeService {
	settings := testSettings()
	return NewUpgradeService(m.factory, NewPoolLedger(m.factory, settings), settings)
}

func TestUpgradeService_PurchaseWithSoft(t *testing.T) {
	ctx := context.Background()
	m := newTestMocks()
	svc := newTestUpgrades(m)

	m.expectCommit(ctx)
	m.pools.On("GetByNameForUpdate", ctx, models.PoolTotalSoftSupply).Return(supplyPool("1000000"), nil)
	m.balances.On("GetByUserIDForUpdate", ctx, int64(42)).Return(testUser(42), nil)
	m.upgrades.On("GetLevel", ctx, int64(42), models.UpgradeFarmLicense).Return(0, nil)
	m.balances.On("Update", ctx, int64(42), mock.MatchedBy(func(u models.BalanceUpdate) bool {
		return *u.SoftBalance == 0 && *u.TotalSoftSpent == 5000 && u.HardBalance == nil
	})).Return(nil)
	m.upgrades.On("SetLevel", ctx, int64(42), models.UpgradeFarmLicense, 1).Return(nil)
	m.pools.On("Upsert", ctx, models.PoolTotalSoftSupply, decEq("0"), decEq("995000")).Return(nil)
	m.txs.On("Append", ctx, mock.MatchedBy(func(tx *models.PoolTransaction) bool {
		return tx.Type == models.PoolTransactionSpend && tx.SoftDelta == -5000
	})).Return(nil)
	m.bus.On("Publish", mock.MatchedBy(func(e events.UpgradePurchasedEvent) bool {
		return e.NewLevel == 1 && e.PaidSoft == 5000 && e.Currency == models.CurrencySoft
	})).Return()

	result, err := svc.PurchaseUpgrade(ctx, 42, models.UpgradeFarmLicense, models.CurrencySoft)

	require.NoError(t, err)
	assert.Equal(t, 1, result.NewLevel)
	assert.Equal(t, int64(5000), result.PaidSoft)
	assert.Equal(t, int64(0), result.NewSoftBalance)
	assert.True(t, result.PaidHard.IsZero())
	m.burns.AssertNotCalled(t, "IncrementBurnedTotal", mock.Anything, mock.Anything)
	m.assertExpectations(t)
}

func TestUpgradeService_PurchaseWithHardBurns(t *testing.T) {
	ctx := context.Background()
	m := newTestMocks()
	svc := newTestUpgrades(m)

	user := testUser(42)
	user.HardBalance = dec("10")

	m.expectCommit(ctx)
	m.balances.On("GetByUserIDForUpdate", ctx, int64(42)).Return(user, nil)
	m.upgrades.On("GetLevel", ctx, int64(42), models.UpgradeExpeditionLicense).Return(2, nil)
	m.burns.On("LockBurnedTotal", ctx).Return(decimal.Zero, nil)
	m.balances.On("Update", ctx, int64(42), mock.MatchedBy(func(u models.BalanceUpdate) bool {
		return u.HardBalance.Equal(dec("2")) && u.SoftBalance == nil
	})).Return(nil)
	m.upgrades.On("SetLevel", ctx, int64(42), models.UpgradeExpeditionLicense, 3).Return(nil)
	m.burns.On("IncrementBurnedTotal", ctx, decEq("8")).Return(dec("8"), nil)
	m.txs.On("Append", ctx, mock.MatchedBy(func(tx *models.PoolTransaction) bool {
		return tx.Type == models.PoolTransactionBurn && tx.HardDelta.Equal(dec("8"))
	})).Return(nil)
	m.bus.On("Publish", mock.AnythingOfType("events.HardBurnedEvent")).Return()
	m.bus.On("Publish", mock.AnythingOfType("events.UpgradePurchasedEvent")).Return()

	result, err := svc.PurchaseUpgrade(ctx, 42, models.UpgradeExpeditionLicense, models.CurrencyHard)

	require.NoError(t, err)
	assert.Equal(t, 3, result.NewLevel)
	assert.True(t, result.PaidHard.Equal(dec("8")))
	assert.True(t, result.NewHardBalance.Equal(dec("2")))
	m.pools.AssertNotCalled(t, "GetByNameForUpdate", mock.Anything, mock.Anything)
	m.assertExpectations(t)
}

func TestUpgradeService_LicenseRequirement(t *testing.T) {
	ctx := context.Background()
	m := newTestMocks()
	svc := newTestUpgrades(m)

	m.expectRollback(ctx)
	m.pools.On("GetByNameForUpdate", ctx, models.PoolTotalSoftSupply).Return(supplyPool("1000000"), nil)
	m.balances.On("GetByUserIDForUpdate", ctx, int64(42)).Return(testUser(42), nil)
	m.upgrades.On("GetLevel", ctx, int64(42), models.UpgradeFarmWorker).Return(2, nil)
	m.upgrades.On("GetLevel", ctx, int64(42), models.UpgradeFarmLicense).Return(2, nil)

	_, err := svc.PurchaseUpgrade(ctx, 42, models.UpgradeFarmWorker, models.CurrencySoft)

	assert.ErrorIs(t, err, economy.ErrLicenseRequirementNotMet)
	assert.True(t, economy.IsUserError(err))
	m.upgrades.AssertNotCalled(t, "SetLevel", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	m.assertExpectations(t)
}

func TestUpgradeService_MaxLevel(t *testing.T) {
	ctx := context.Background()
	m := newTestMocks()
	svc := newTestUpgrades(m)

	m.expectRollback(ctx)
	m.balances.On("GetByUserIDForUpdate", ctx, int64(42)).Return(testUser(42), nil)
	m.upgrades.On("GetLevel", ctx, int64(42), models.UpgradeFarmLicense).Return(10, nil)

	_, err := svc.PurchaseUpgrade(ctx, 42, models.UpgradeFarmLicense, models.CurrencyHard)

	assert.ErrorIs(t, err, economy.ErrMaxLevelReached)
	m.burns.AssertNotCalled(t, "LockBurnedTotal", mock.Anything)
}

func TestUpgradeService_InsufficientFunds(t *testing.T) {
	ctx := context.Background()
	m := newTestMocks()
	svc := newTestUpgrades(m)

	m.expectRollback(ctx)
	m.pools.On("GetByNameForUpdate", ctx, models.PoolTotalSoftSupply).Return(supplyPool("2000000"), nil)
	m.balances.On("GetByUserIDForUpdate", ctx, int64(42)).Return(testUser(42), nil)
	m.upgrades.On("GetLevel", ctx, int64(42), models.UpgradeFarmLicense).Return(2, nil)

	// 5000 * 2^2 * 2.0 = 40000 against a balance of 5000
	_, err := svc.PurchaseUpgrade(ctx, 42, models.UpgradeFarmLicense, models.CurrencySoft)

	assert.ErrorIs(t, err, economy.ErrInsufficientFunds)
	m.balances.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpgradeService_UnknownInputs(t *testing.T) {
	ctx := context.Background()
	m := newTestMocks()
	svc := newTestUpgrades(m)

	_, err := svc.PurchaseUpgrade(ctx, 42, models.UpgradeType("castle"), models.CurrencySoft)
	assert.ErrorIs(t, err, economy.ErrUnknownUpgrade)

	_, err = svc.QuoteUpgrade(ctx, 42, models.UpgradeFarmLicense, models.Currency("gold"))
	assert.ErrorIs(t, err, economy.ErrUnknownCurrency)

	m.factory.AssertNotCalled(t, "Create")
}

func TestUpgradeService_QuoteUpgrade(t *testing.T) {
	ctx := context.Background()
	m := newTestMocks()
	svc := newTestUpgrades(m)

	m.expectCommit(ctx)
	m.upgrades.On("GetLevel", ctx, int64(42), models.UpgradeExpeditionLicense).Return(2, nil)
	m.burns.On("GetBurnedTotal", ctx).Return(decimal.Zero, nil)

	quote, err := svc.QuoteUpgrade(ctx, 42, models.UpgradeExpeditionLicense, models.CurrencyHard)

	require.NoError(t, err)
	assert.Equal(t, 2, quote.CurrentLevel)
	assert.Equal(t, 5, quote.MaxLevel)
	assert.True(t, quote.PriceHard.Equal(dec("8")))
	assert.Equal(t, int64(0), quote.PriceSoft)
	m.burns.AssertNotCalled(t, "LockBurnedTotal", mock.Anything)
	m.assertExpectations(t)
}

func TestUpgradeService_QuoteUpgrade_Soft(t *testing.T) {
	ctx := context.Background()
	m := newTestMocks()
	svc := newTestUpgrades(m)

	m.expectCommit(ctx)
	m.pools.On("GetByName", ctx, models.PoolTotalSoftSupply).Return(supplyPool("2000000"), nil)
	m.upgrades.On("GetLevel", ctx, int64(42), models.UpgradeFarmLicense).Return(2, nil)

	quote, err := svc.QuoteUpgrade(ctx, 42, models.UpgradeFarmLicense, models.CurrencySoft)

	require.NoError(t, err)
	assert.Equal(t, int64(40000), quote.PriceSoft)
	assert.True(t, quote.Multiplier.Equal(dec("2")))
}

func TestUpgradeService_GetUpgrades(t *testing.T) {
	ctx := context.Background()
	m := newTestMocks()
	svc := newTestUpgrades(m)

	m.expectCommit(ctx)
	m.upgrades.On("GetAllByUser", ctx, int64(42)).Return([]*models.UpgradeLevel{
		{UserID: 42, UpgradeType: models.UpgradeFarmLicense, Level: 2},
		{UserID: 42, UpgradeType: models.UpgradeFarmWorker, Level: 1},
	}, nil)

	levels, err := svc.GetUpgrades(ctx, 42)

	require.NoError(t, err)
	require.Len(t, levels, 2)
	assert.Equal(t, models.UpgradeFarmLicense, levels[0].UpgradeType)
	assert.Equal(t, 2, levels[0].Level)
	m.assertExpectations(t)
}
