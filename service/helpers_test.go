package service

import (
	"context"
	"testing"
	"time"

	"ryabank/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type testMocks struct {
	factory  *MockUnitOfWorkFactory
	uow      *MockUnitOfWork
	pools    *MockPoolRepository
	balances *MockUserBalanceRepository
	txs      *MockTransactionRepository
	burns    *MockBurnRepository
	upgrades *MockUpgradeRepository
	bus      *MockEventPublisher
}

func newTestMocks() *testMocks {
	m := &testMocks{
		factory:  new(MockUnitOfWorkFactory),
		uow:      new(MockUnitOfWork),
		pools:    new(MockPoolRepository),
		balances: new(MockUserBalanceRepository),
		txs:      new(MockTransactionRepository),
		burns:    new(MockBurnRepository),
		upgrades: new(MockUpgradeRepository),
		bus:      new(MockEventPublisher),
	}
	m.uow.SetRepositories(m.pools, m.balances, m.txs, m.burns, m.upgrades, m.bus)
	return m
}

// expectCommit sets up a unit of work that begins and commits once
func (m *testMocks) expectCommit(ctx context.Context) {
	m.factory.On("Create").Return(m.uow)
	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Commit").Return(nil)
	m.uow.On("Rollback").Return(nil)
}

// expectRollback sets up a unit of work that begins and is rolled back
func (m *testMocks) expectRollback(ctx context.Context) {
	m.factory.On("Create").Return(m.uow)
	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
}

func (m *testMocks) assertExpectations(t *testing.T) {
	m.factory.AssertExpectations(t)
	m.uow.AssertExpectations(t)
	m.pools.AssertExpectations(t)
	m.balances.AssertExpectations(t)
	m.txs.AssertExpectations(t)
	m.burns.AssertExpectations(t)
	m.upgrades.AssertExpectations(t)
	m.bus.AssertExpectations(t)
}

// expectMarket returns the reference market: 1000 rbtc against 100000 ryabucks
func (m *testMocks) expectMarket(ctx context.Context, method string) {
	m.pools.On(method, ctx, models.PoolGameBankHard).Return(&models.Pool{
		Name:       models.PoolGameBankHard,
		HardAmount: dec("1000"),
		SoftAmount: decimal.Zero,
	}, nil)
	m.pools.On(method, ctx, models.PoolGameBankSoft).Return(&models.Pool{
		Name:       models.PoolGameBankSoft,
		HardAmount: decimal.Zero,
		SoftAmount: dec("100000"),
	}, nil)
}

func testSettings() Settings {
	s := DefaultSettings()
	s.SeedPoolHard = dec("1000")
	s.SeedPoolSoft = dec("100000")
	s.RetryBackoff = time.Millisecond
	s.Clock = func() time.Time { return testNow }
	return s
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// decEq matches a decimal argument by value rather than representation
func decEq(s string) interface{} {
	want := dec(s)
	return mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(want)
	})
}

func testUser(userID int64) *models.UserBalance {
	return &models.UserBalance{
		UserID:            userID,
		SoftBalance:       5000,
		HardBalance:       decimal.Zero,
		EnergyCurrent:     30,
		EnergyMax:         30,
		EnergyLastUpdated: testNow.Add(-time.Hour),
		Level:             1,
		TotalHardBought:   decimal.Zero,
		TotalHardSold:     decimal.Zero,
	}
}
