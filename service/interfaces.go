package service

import (
	"context"

	"ryabank/events"
	"ryabank/models"

	"github.com/shopspring/decimal"
)

// PoolRepository defines the interface for pool ledger data access
type PoolRepository interface {
	// GetByName returns nil if the pool does not exist
	GetByName(ctx context.Context, name string) (*models.Pool, error)

	// GetByNameForUpdate is GetByName holding a row lock until the transaction ends
	GetByNameForUpdate(ctx context.Context, name string) (*models.Pool, error)

	// Upsert replaces both amounts of a pool
	Upsert(ctx context.Context, name string, hard, soft decimal.Decimal) error

	// Seed creates the pool only if it does not exist. Reports whether a row was inserted.
	Seed(ctx context.Context, name string, hard, soft decimal.Decimal) (bool, error)

	// SumSoftSupply sums the soft amounts of all pools not in excluding
	SumSoftSupply(ctx context.Context, excluding []string) (decimal.Decimal, error)

	// GetAll returns every pool ordered by name
	GetAll(ctx context.Context) ([]*models.Pool, error)
}

// UserBalanceRepository defines the interface for user balance data access
type UserBalanceRepository interface {
	// GetByUserID returns nil if the user has no balance record
	GetByUserID(ctx context.Context, userID int64) (*models.UserBalance, error)

	// GetByUserIDForUpdate is GetByUserID holding a row lock until the transaction ends
	GetByUserIDForUpdate(ctx context.Context, userID int64) (*models.UserBalance, error)

	// Create inserts a balance record. Returns nil if one already exists.
	Create(ctx context.Context, balance *models.UserBalance) (*models.UserBalance, error)

	// Update applies the non-nil fields of update
	Update(ctx context.Context, userID int64, update models.BalanceUpdate) error
}

// TransactionRepository defines the interface for the append-only audit trail
type TransactionRepository interface {
	// Append assigns Seq, PrevHash and Hash and stores the record
	Append(ctx context.Context, tx *models.PoolTransaction) error

	// GetByUser returns a user's most recent records, newest first
	GetByUser(ctx context.Context, userID int64, limit int) ([]*models.PoolTransaction, error)

	// GetLatest returns the last limit records in chain order
	GetLatest(ctx context.Context, limit int) ([]*models.PoolTransaction, error)
}

// BurnRepository defines the interface for the burned hard currency counter
type BurnRepository interface {
	GetBurnedTotal(ctx context.Context) (decimal.Decimal, error)

	// LockBurnedTotal reads the total holding a row lock until the transaction ends
	LockBurnedTotal(ctx context.Context) (decimal.Decimal, error)

	// IncrementBurnedTotal adds amount and returns the new total
	IncrementBurnedTotal(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error)
}

// UpgradeRepository defines the interface for licence and specialist levels
type UpgradeRepository interface {
	// GetLevel returns 0 for a track the user never purchased
	GetLevel(ctx context.Context, userID int64, upgradeType models.UpgradeType) (int, error)

	GetAllByUser(ctx context.Context, userID int64) ([]*models.UpgradeLevel, error)

	SetLevel(ctx context.Context, userID int64, upgradeType models.UpgradeType, level int) error
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	PoolRepository() PoolRepository
	UserBalanceRepository() UserBalanceRepository
	TransactionRepository() TransactionRepository
	BurnRepository() BurnRepository
	UpgradeRepository() UpgradeRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// PoolLedger is the single entry point for pool reads and writes.
// Methods taking a UnitOfWork run inside the caller's transaction.
type PoolLedger interface {
	// GetPool fails with economy.ErrPoolNotFound if the pool is absent
	GetPool(ctx context.Context, uow UnitOfWork, name string) (*models.Pool, error)

	// UpdatePool replaces both amounts of a pool
	UpdatePool(ctx context.Context, uow UnitOfWork, name string, hard, soft decimal.Decimal) error

	// SumSupply sums soft amounts over all pools except excluding
	SumSupply(ctx context.Context, uow UnitOfWork, excluding ...string) (decimal.Decimal, error)

	// ReadMarket returns the exchange reserves without locking them
	ReadMarket(ctx context.Context, uow UnitOfWork) (*models.Market, error)

	// LockMarket returns the exchange reserves, locking both market pools
	LockMarket(ctx context.Context, uow UnitOfWork) (*models.Market, error)

	// UpdateMarket writes new reserves back to both market pools
	UpdateMarket(ctx context.Context, uow UnitOfWork, market *models.Market, hard, soft decimal.Decimal) error

	// SoftSupply returns the aggregate soft supply, optionally locking its pool
	SoftSupply(ctx context.Context, uow UnitOfWork, forUpdate bool) (*models.Pool, error)

	// Bootstrap seeds missing pools and counters
	Bootstrap(ctx context.Context) error

	// Audit takes a snapshot of the ledger and verifies the tail of the audit chain
	Audit(ctx context.Context) (*models.PoolAudit, error)

	// ListPools returns every stored pool ordered by name
	ListPools(ctx context.Context) ([]*models.Pool, error)
}

// ExchangeService defines the interface for hard/soft currency exchange
type ExchangeService interface {
	QuoteBuy(ctx context.Context, amountHard decimal.Decimal) (*models.Quote, error)
	QuoteSell(ctx context.Context, amountHard decimal.Decimal) (*models.Quote, error)
	Buy(ctx context.Context, userID int64, amountHard decimal.Decimal) (*models.TradeResult, error)
	Sell(ctx context.Context, userID int64, amountHard decimal.Decimal) (*models.TradeResult, error)

	// PurchaseWithExternalCurrency mints soft currency for a real-money top-up
	PurchaseWithExternalCurrency(ctx context.Context, userID int64, externalUnits int64, tier models.PackageTier) (*models.TopUpResult, error)
}

// EnergyService defines the interface for lazy energy regeneration
type EnergyService interface {
	GetEnergyState(ctx context.Context, userID int64) (*models.EnergyState, error)
	SpendEnergy(ctx context.Context, userID int64, cost int) (*models.EnergyState, error)
	RestoreEnergy(ctx context.Context, userID int64, amount int, reason string) (*models.EnergyState, error)
}

// PricingService defines the interface for economy-wide price multipliers
type PricingService interface {
	GetPriceMultipliers(ctx context.Context) (*models.PriceMultipliers, error)

	// RecordBurn permanently removes hard currency from circulation
	RecordBurn(ctx context.Context, userID int64, amount decimal.Decimal, reason string) (decimal.Decimal, error)
}

// UpgradeService defines the interface for licence and specialist purchases
type UpgradeService interface {
	QuoteUpgrade(ctx context.Context, userID int64, upgradeType models.UpgradeType, currency models.Currency) (*models.UpgradeQuote, error)
	PurchaseUpgrade(ctx context.Context, userID int64, upgradeType models.UpgradeType, currency models.Currency) (*models.UpgradeResult, error)

	// GetUpgrades returns the user's purchased tracks. Tracks never bought are omitted.
	GetUpgrades(ctx context.Context, userID int64) ([]*models.UpgradeLevel, error)
}

// AccountService defines the interface for user balance lifecycle
type AccountService interface {
	// EnsureAccount returns the user's balance, creating it with starting values if needed
	EnsureAccount(ctx context.Context, userID int64) (*models.UserBalance, error)

	// GetBalance returns the balance with energy regeneration applied
	GetBalance(ctx context.Context, userID int64) (*models.UserBalance, error)

	// GetHistory returns the user's most recent audit records, newest first
	GetHistory(ctx context.Context, userID int64, limit int) ([]*models.PoolTransaction, error)
}
