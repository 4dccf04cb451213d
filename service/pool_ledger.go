package service

import (
	"context"
	"fmt"

	"ryabank/economy"
	"ryabank/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const auditChainWindow = 200

type poolLedger struct {
	runner   txRunner
	settings Settings
}

// NewPoolLedger creates a new pool ledger
func NewPoolLedger(uowFactory UnitOfWorkFactory, settings Settings) PoolLedger {
	return &poolLedger{
		runner:   newTxRunner(uowFactory, settings),
		settings: settings,
	}
}

func (l *poolLedger) GetPool(ctx context.Context, uow UnitOfWork, name string) (*models.Pool, error) {
	pool, err := uow.PoolRepository().GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get pool %s: %w", name, err)
	}
	if pool == nil {
		return nil, fmt.Errorf("%w: %s", economy.ErrPoolNotFound, name)
	}
	return pool, nil
}

func (l *poolLedger) UpdatePool(ctx context.Context, uow UnitOfWork, name string, hard, soft decimal.Decimal) error {
	if hard.IsNegative() || soft.IsNegative() {
		return fmt.Errorf("%w: %s would become hard=%s soft=%s",
			economy.ErrPoolCorrupted, name, hard.String(), soft.String())
	}
	if err := uow.PoolRepository().Upsert(ctx, name, hard, soft); err != nil {
		return fmt.Errorf("failed to update pool %s: %w", name, err)
	}
	return nil
}

func (l *poolLedger) SumSupply(ctx context.Context, uow UnitOfWork, excluding ...string) (decimal.Decimal, error) {
	total, err := uow.PoolRepository().SumSoftSupply(ctx, excluding)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum soft supply: %w", err)
	}
	return total, nil
}

func (l *poolLedger) ReadMarket(ctx context.Context, uow UnitOfWork) (*models.Market, error) {
	return l.market(ctx, uow, false)
}

func (l *poolLedger) LockMarket(ctx context.Context, uow UnitOfWork) (*models.Market, error) {
	return l.market(ctx, uow, true)
}

func (l *poolLedger) UpdateMarket(ctx context.Context, uow UnitOfWork, market *models.Market, hard, soft decimal.Decimal) error {
	if err := l.UpdatePool(ctx, uow, models.PoolGameBankHard, hard, market.HardPool.SoftAmount); err != nil {
		return err
	}
	return l.UpdatePool(ctx, uow, models.PoolGameBankSoft, market.SoftPool.HardAmount, soft)
}

// market reads both sides in name order so every writer locks them in the same order
func (l *poolLedger) market(ctx context.Context, uow UnitOfWork, lock bool) (*models.Market, error) {
	hardPool, hardSeeded, err := l.marketSide(ctx, uow, models.PoolGameBankHard, lock,
		l.settings.SeedPoolHard, decimal.Zero, func(p *models.Pool) *decimal.Decimal { return &p.HardAmount })
	if err != nil {
		return nil, err
	}

	softPool, softSeeded, err := l.marketSide(ctx, uow, models.PoolGameBankSoft, lock,
		decimal.Zero, l.settings.SeedPoolSoft, func(p *models.Pool) *decimal.Decimal { return &p.SoftAmount })
	if err != nil {
		return nil, err
	}

	return &models.Market{
		Hard:         hardPool.HardAmount,
		Soft:         softPool.SoftAmount,
		HardPool:     hardPool,
		SoftPool:     softPool,
		HardFromSeed: hardSeeded,
		SoftFromSeed: softSeeded,
	}, nil
}

func (l *poolLedger) marketSide(
	ctx context.Context,
	uow UnitOfWork,
	name string,
	lock bool,
	seedHard, seedSoft decimal.Decimal,
	reserve func(*models.Pool) *decimal.Decimal,
) (*models.Pool, bool, error) {
	pool, err := l.fetch(ctx, uow, name, lock)
	if err != nil {
		return nil, false, err
	}

	seeded := false
	if pool == nil {
		if l.settings.StrictPools {
			return nil, false, fmt.Errorf("%w: %w: %s", economy.ErrStorageUnavailable, economy.ErrPoolNotFound, name)
		}
		log.WithFields(log.Fields{
			"pool": name,
		}).Error("Market pool missing, substituting seed value")

		if lock {
			// Recreate the row so the lock below covers it.
			if _, err := uow.PoolRepository().Seed(ctx, name, seedHard, seedSoft); err != nil {
				return nil, false, fmt.Errorf("failed to reseed pool %s: %w", name, err)
			}
			if pool, err = l.fetch(ctx, uow, name, true); err != nil {
				return nil, false, err
			}
		}
		if pool == nil {
			pool = &models.Pool{Name: name, HardAmount: seedHard, SoftAmount: seedSoft}
		}
		seeded = true
	}

	if amount := reserve(pool); !amount.IsPositive() {
		if l.settings.StrictPools {
			return nil, false, fmt.Errorf("%w: %w: %s holds %s",
				economy.ErrStorageUnavailable, economy.ErrPoolCorrupted, name, amount.String())
		}
		log.WithFields(log.Fields{
			"pool":   name,
			"amount": amount.String(),
		}).Error("Market pool has a non-positive reserve, substituting seed value")

		substitute := *pool
		if seedHard.IsPositive() {
			substitute.HardAmount = seedHard
		} else {
			substitute.SoftAmount = seedSoft
		}
		pool = &substitute
		seeded = true
	}

	return pool, seeded, nil
}

func (l *poolLedger) fetch(ctx context.Context, uow UnitOfWork, name string, lock bool) (*models.Pool, error) {
	var (
		pool *models.Pool
		err  error
	)
	if lock {
		pool, err = uow.PoolRepository().GetByNameForUpdate(ctx, name)
	} else {
		pool, err = uow.PoolRepository().GetByName(ctx, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pool %s: %w", name, err)
	}
	return pool, nil
}

func (l *poolLedger) SoftSupply(ctx context.Context, uow UnitOfWork, forUpdate bool) (*models.Pool, error) {
	pool, err := l.fetch(ctx, uow, models.PoolTotalSoftSupply, forUpdate)
	if err != nil {
		return nil, err
	}
	if pool != nil {
		return pool, nil
	}

	sum, err := l.SumSupply(ctx, uow, models.PoolTotalSoftSupply)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"pool": models.PoolTotalSoftSupply,
		"sum":  sum.String(),
	}).Warn("Supply pool missing, falling back to the sum of all pools")

	if !forUpdate {
		return &models.Pool{Name: models.PoolTotalSoftSupply, HardAmount: decimal.Zero, SoftAmount: sum}, nil
	}

	if _, err := uow.PoolRepository().Seed(ctx, models.PoolTotalSoftSupply, decimal.Zero, sum); err != nil {
		return nil, fmt.Errorf("failed to seed supply pool: %w", err)
	}
	pool, err = l.fetch(ctx, uow, models.PoolTotalSoftSupply, true)
	if err != nil {
		return nil, err
	}
	if pool == nil {
		return nil, fmt.Errorf("%w: %s", economy.ErrPoolNotFound, models.PoolTotalSoftSupply)
	}
	return pool, nil
}

func (l *poolLedger) Bootstrap(ctx context.Context) error {
	seeds := []models.Pool{
		{Name: models.PoolGameBankHard, HardAmount: l.settings.SeedPoolHard, SoftAmount: decimal.Zero},
		{Name: models.PoolGameBankSoft, HardAmount: decimal.Zero, SoftAmount: l.settings.SeedPoolSoft},
		{Name: models.PoolTotalSoftSupply, HardAmount: decimal.Zero, SoftAmount: l.settings.InitialSoftSupply},
	}

	err := l.runner.run(ctx, "bootstrap", func(uow UnitOfWork) error {
		for _, seed := range seeds {
			inserted, err := uow.PoolRepository().Seed(ctx, seed.Name, seed.HardAmount, seed.SoftAmount)
			if err != nil {
				return fmt.Errorf("failed to seed pool %s: %w", seed.Name, err)
			}
			if inserted {
				log.WithFields(log.Fields{
					"pool": seed.Name,
					"hard": seed.HardAmount.String(),
					"soft": seed.SoftAmount.String(),
				}).Info("Seeded pool")
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to bootstrap pools: %w", err)
	}
	return nil
}

func (l *poolLedger) Audit(ctx context.Context) (*models.PoolAudit, error) {
	audit := &models.PoolAudit{CheckedAt: l.settings.now()}

	err := l.runner.run(ctx, "audit", func(uow UnitOfWork) error {
		market, err := l.ReadMarket(ctx, uow)
		if err != nil {
			return err
		}
		supply, err := l.SoftSupply(ctx, uow, false)
		if err != nil {
			return err
		}
		burned, err := uow.BurnRepository().GetBurnedTotal(ctx)
		if err != nil {
			return fmt.Errorf("failed to get burned total: %w", err)
		}
		tail, err := uow.TransactionRepository().GetLatest(ctx, auditChainWindow)
		if err != nil {
			return fmt.Errorf("failed to read audit chain: %w", err)
		}
		if err := models.VerifyChain(tail); err != nil {
			return fmt.Errorf("audit chain verification failed: %w", err)
		}

		audit.Hard = market.Hard
		audit.Soft = market.Soft
		audit.ConstantProduct = economy.ConstantProduct(market.Hard, market.Soft)
		audit.Rate = economy.CurrentRate(market.Hard, market.Soft)
		audit.HardFromSeed = market.HardFromSeed
		audit.SoftFromSeed = market.SoftFromSeed
		audit.SoftSupply = supply.SoftAmount
		audit.BurnedTotal = burned
		audit.ChainVerified = len(tail)
		if len(tail) > 0 {
			audit.ChainHead = tail[len(tail)-1].Hash
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return audit, nil
}

func (l *poolLedger) ListPools(ctx context.Context) ([]*models.Pool, error) {
	var pools []*models.Pool
	err := l.runner.run(ctx, "list_pools", func(uow UnitOfWork) error {
		var err error
		pools, err = uow.PoolRepository().GetAll(ctx)
		if err != nil {
			return fmt.Errorf("failed to list pools: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pools, nil
}
