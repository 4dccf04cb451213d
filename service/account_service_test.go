package service

import (
	"context"
	"testing"
	"time"

	"ryabank/economy"
	"ryabank/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAccountService_EnsureAccount_Creates(t *testing.T) {
	ctx := context.Background()
	m := newTestMocks()
	svc := NewAccountService(m.factory, testSettings())

	m.expectCommit(ctx)
	m.balances.On("GetByUserID", ctx, int64(42)).Return(nil, nil)
	m.balances.On("Create", ctx, mock.MatchedBy(func(b *models.UserBalance) bool {
		return b.UserID == 42 &&
			b.SoftBalance == 1000 &&
			b.HardBalance.IsZero() &&
			b.EnergyCurrent == 30 && b.EnergyMax == 30 &&
			b.EnergyLastUpdated.Equal(testNow) &&
			b.Level == 1
	})).Return(&models.UserBalance{UserID: 42, SoftBalance: 1000, EnergyCurrent: 30, EnergyMax: 30}, nil)

	balance, err := svc.EnsureAccount(ctx, 42)

	require.NoError(t, err)
	assert.Equal(t, int64(1000), balance.SoftBalance)
	// Starting balances are not minted into the supply pool.
	m.pools.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	m.txs.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	m.assertExpectations(t)
}

func TestAccountService_EnsureAccount_Existing(t *testing.T) {
	ctx := context.Background()
	m := newTestMocks()
	svc := NewAccountService(m.factory, testSettings())

	m.expectCommit(ctx)
	m.balances.On("GetByUserID", ctx, int64(42)).Return(testUser(42), nil)

	balance, err := svc.EnsureAccount(ctx, 42)

	require.NoError(t, err)
	assert.Equal(t, int64(5000), balance.SoftBalance)
	m.balances.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAccountService_EnsureAccount_LostRace(t *testing.T) {
	ctx := context.Background()
	m := newTestMocks()
	svc := NewAccountService(m.factory, testSettings())

	m.expectCommit(ctx)
	m.balances.On("GetByUserID", ctx, int64(42)).Return(nil, nil).Once()
	m.balances.On("Create", ctx, mock.Anything).Return(nil, nil)
	m.balances.On("GetByUserID", ctx, int64(42)).Return(testUser(42), nil).Once()

	balance, err := svc.EnsureAccount(ctx, 42)

	require.NoError(t, err)
	assert.Equal(t, int64(5000), balance.SoftBalance)
	m.assertExpectations(t)
}

func TestAccountService_GetBalance_RegeneratesWithoutWriting(t *testing.T) {
	ctx := context.Background()
	m := newTestMocks()
	svc := NewAccountService(m.factory, testSettings())

	user := testUser(42)
	user.EnergyCurrent = 0
	user.EnergyLastUpdated = testNow.Add(-50 * time.Minute)

	m.expectCommit(ctx)
	m.balances.On("GetByUserID", ctx, int64(42)).Return(user, nil)

	balance, err := svc.GetBalance(ctx, 42)

	require.NoError(t, err)
	assert.Equal(t, 1, balance.EnergyCurrent)
	assert.Equal(t, testNow.Add(-2*time.Minute), balance.EnergyLastUpdated)
	m.balances.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestAccountService_GetBalance_UserNotFound(t *testing.T) {
	ctx := context.Background()
	m := newTestMocks()
	svc := NewAccountService(m.factory, testSettings())

	m.expectRollback(ctx)
	m.balances.On("GetByUserID", ctx, int64(42)).Return(nil, nil)

	_, err := svc.GetBalance(ctx, 42)

	assert.ErrorIs(t, err, economy.ErrUserNotFound)
	assert.True(t, economy.IsUserError(err))
}

func TestAccountService_GetHistory(t *testing.T) {
	ctx := context.Background()
	m := newTestMocks()
	svc := NewAccountService(m.factory, testSettings())

	records := auditChain(2)
	m.expectCommit(ctx)
	m.balances.On("GetByUserID", ctx, int64(42)).Return(testUser(42), nil)
	m.txs.On("GetByUser", ctx, int64(42), 20).Return(records, nil)

	history, err := svc.GetHistory(ctx, 42, 0)

	require.NoError(t, err)
	assert.Len(t, history, 2)
	m.assertExpectations(t)
}

func TestAccountService_GetHistory_CapsLimit(t *testing.T) {
	ctx := context.Background()
	m := newTestMocks()
	svc := NewAccountService(m.factory, testSettings())

	m.expectCommit(ctx)
	m.balances.On("GetByUserID", ctx, int64(42)).Return(testUser(42), nil)
	m.txs.On("GetByUser", ctx, int64(42), 100).Return([]*models.PoolTransaction{}, nil)

	history, err := svc.GetHistory(ctx, 42, 5000)

	require.NoError(t, err)
	assert.Empty(t, history)
	m.txs.AssertExpectations(t)
}

func TestAccountService_GetHistory_UserNotFound(t *testing.T) {
	ctx := context.Background()
	m := newTestMocks()
	svc := NewAccountService(m.factory, testSettings())

	m.expectRollback(ctx)
	m.balances.On("GetByUserID", ctx, int64(42)).Return(nil, nil)

	_, err := svc.GetHistory(ctx, 42, 10)

	assert.ErrorIs(t, err, economy.ErrUserNotFound)
	m.txs.AssertNotCalled(t, "GetByUser", mock.Anything, mock.Anything, mock.Anything)
}
