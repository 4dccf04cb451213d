package service

import (
	"context"

	"ryabank/events"
	"ryabank/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockPoolRepository is a mock implementation of PoolRepository
type MockPoolRepository struct {
	mock.Mock
}

func (m *MockPoolRepository) GetByName(ctx context.Context, name string) (*models.Pool, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Pool), args.Error(1)
}

func (m *MockPoolRepository) GetByNameForUpdate(ctx context.Context, name string) (*models.Pool, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Pool), args.Error(1)
}

func (m *MockPoolRepository) Upsert(ctx context.Context, name string, hard, soft decimal.Decimal) error {
	args := m.Called(ctx, name, hard, soft)
	return args.Error(0)
}

func (m *MockPoolRepository) Seed(ctx context.Context, name string, hard, soft decimal.Decimal) (bool, error) {
	args := m.Called(ctx, name, hard, soft)
	return args.Bool(0), args.Error(1)
}

func (m *MockPoolRepository) SumSoftSupply(ctx context.Context, excluding []string) (decimal.Decimal, error) {
	args := m.Called(ctx, excluding)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPoolRepository) GetAll(ctx context.Context) ([]*models.Pool, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Pool), args.Error(1)
}

// MockUserBalanceRepository is a mock implementation of UserBalanceRepository
type MockUserBalanceRepository struct {
	mock.Mock
}

func (m *MockUserBalanceRepository) GetByUserID(ctx context.Context, userID int64) (*models.UserBalance, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserBalance), args.Error(1)
}

func (m *MockUserBalanceRepository) GetByUserIDForUpdate(ctx context.Context, userID int64) (*models.UserBalance, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserBalance), args.Error(1)
}

func (m *MockUserBalanceRepository) Create(ctx context.Context, balance *models.UserBalance) (*models.UserBalance, error) {
	args := m.Called(ctx, balance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserBalance), args.Error(1)
}

func (m *MockUserBalanceRepository) Update(ctx context.Context, userID int64, update models.BalanceUpdate) error {
	args := m.Called(ctx, userID, update)
	return args.Error(0)
}

// MockTransactionRepository is a mock implementation of TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Append(ctx context.Context, tx *models.PoolTransaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.PoolTransaction, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PoolTransaction), args.Error(1)
}

func (m *MockTransactionRepository) GetLatest(ctx context.Context, limit int) ([]*models.PoolTransaction, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PoolTransaction), args.Error(1)
}

// MockBurnRepository is a mock implementation of BurnRepository
type MockBurnRepository struct {
	mock.Mock
}

func (m *MockBurnRepository) GetBurnedTotal(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockBurnRepository) LockBurnedTotal(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockBurnRepository) IncrementBurnedTotal(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, amount)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockUpgradeRepository is a mock implementation of UpgradeRepository
type MockUpgradeRepository struct {
	mock.Mock
}

func (m *MockUpgradeRepository) GetLevel(ctx context.Context, userID int64, upgradeType models.UpgradeType) (int, error) {
	args := m.Called(ctx, userID, upgradeType)
	return args.Int(0), args.Error(1)
}

func (m *MockUpgradeRepository) GetAllByUser(ctx context.Context, userID int64) ([]*models.UpgradeLevel, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.UpgradeLevel), args.Error(1)
}

func (m *MockUpgradeRepository) SetLevel(ctx context.Context, userID int64, upgradeType models.UpgradeType, level int) error {
	args := m.Called(ctx, userID, upgradeType, level)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Begin, Commit and
// Rollback are recorded; repository getters return whatever SetRepositories received.
type MockUnitOfWork struct {
	mock.Mock
	poolRepo        PoolRepository
	userBalanceRepo UserBalanceRepository
	transactionRepo TransactionRepository
	burnRepo        BurnRepository
	upgradeRepo     UpgradeRepository
	eventBus        EventPublisher
}

// SetRepositories configures the repositories handed out by the unit of work
func (m *MockUnitOfWork) SetRepositories(
	pool PoolRepository,
	userBalance UserBalanceRepository,
	transaction TransactionRepository,
	burn BurnRepository,
	upgrade UpgradeRepository,
	eventBus EventPublisher,
) {
	m.poolRepo = pool
	m.userBalanceRepo = userBalance
	m.transactionRepo = transaction
	m.burnRepo = burn
	m.upgradeRepo = upgrade
	m.eventBus = eventBus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) PoolRepository() PoolRepository {
	return m.poolRepo
}

func (m *MockUnitOfWork) UserBalanceRepository() UserBalanceRepository {
	return m.userBalanceRepo
}

func (m *MockUnitOfWork) TransactionRepository() TransactionRepository {
	return m.transactionRepo
}

func (m *MockUnitOfWork) BurnRepository() BurnRepository {
	return m.burnRepo
}

func (m *MockUnitOfWork) UpgradeRepository() UpgradeRepository {
	return m.upgradeRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	if m.eventBus == nil {
		return events.NewTransactionalBus(nil)
	}
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
