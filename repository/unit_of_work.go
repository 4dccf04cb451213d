package repository

import (
	"context"
	"errors"
	"fmt"

	"ryabank/database"
	"ryabank/events"
	"ryabank/service"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db               *database.DB
	tx               pgx.Tx
	ctx              context.Context
	transactionalBus *events.TransactionalBus
	poolRepo         service.PoolRepository
	userBalanceRepo  service.UserBalanceRepository
	transactionRepo  service.TransactionRepository
	burnRepo         service.BurnRepository
	upgradeRepo      service.UpgradeRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory. eventBus may be nil,
// in which case committed events are dropped.
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", classify(err))
	}

	u.tx = tx
	u.ctx = ctx

	u.poolRepo = newPoolRepositoryWithTx(tx)
	u.userBalanceRepo = newUserBalanceRepositoryWithTx(tx)
	u.transactionRepo = newTransactionRepositoryWithTx(tx)
	u.burnRepo = newBurnRepositoryWithTx(tx)
	u.upgradeRepo = newUpgradeRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction and then delivers the buffered events
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		u.tx = nil
		u.transactionalBus.Discard()
		return fmt.Errorf("failed to commit transaction: %w", classify(err))
	}

	u.tx = nil
	u.transactionalBus.Flush(u.ctx)

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	u.tx = nil
	u.transactionalBus.Discard()

	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

// PoolRepository returns the pool repository for this unit of work
func (u *unitOfWork) PoolRepository() service.PoolRepository {
	if u.poolRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.poolRepo
}

// UserBalanceRepository returns the user balance repository for this unit of work
func (u *unitOfWork) UserBalanceRepository() service.UserBalanceRepository {
	if u.userBalanceRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.userBalanceRepo
}

// TransactionRepository returns the transaction repository for this unit of work
func (u *unitOfWork) TransactionRepository() service.TransactionRepository {
	if u.transactionRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionRepo
}

// BurnRepository returns the burn repository for this unit of work
func (u *unitOfWork) BurnRepository() service.BurnRepository {
	if u.burnRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.burnRepo
}

// UpgradeRepository returns the upgrade repository for this unit of work
func (u *unitOfWork) UpgradeRepository() service.UpgradeRepository {
	if u.upgradeRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.upgradeRepo
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	if u.transactionalBus == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalBus
}
