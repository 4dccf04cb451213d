package service

import (
	"context"
	"fmt"

	"ryabank/economy"
	"ryabank/events"
	"ryabank/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type upgradeService struct {
	runner   txRunner
	ledger   PoolLedger
	settings Settings
}

// NewUpgradeService creates a new upgrade service
func NewUpgradeService(uowFactory UnitOfWorkFactory, ledger PoolLedger, settings Settings) UpgradeService {
	return &upgradeService{
		runner:   newTxRunner(uowFactory, settings),
		ledger:   ledger,
		settings: settings,
	}
}

func (s *upgradeService) definition(upgradeType models.UpgradeType, currency models.Currency) (models.UpgradeDefinition, error) {
	def, ok := s.settings.Catalog[upgradeType]
	if !ok {
		return models.UpgradeDefinition{}, fmt.Errorf("%w: %s", economy.ErrUnknownUpgrade, upgradeType)
	}
	if currency != models.CurrencySoft && currency != models.CurrencyHard {
		return models.UpgradeDefinition{}, fmt.Errorf("%w: %s", economy.ErrUnknownCurrency, currency)
	}
	return def, nil
}

// checkLevel returns the current level, failing when the next level cannot be bought
func (s *upgradeService) checkLevel(ctx context.Context, uow UnitOfWork, userID int64, def models.UpgradeDefinition) (int, error) {
	level, err := uow.UpgradeRepository().GetLevel(ctx, userID, def.Type)
	if err != nil {
		return 0, fmt.Errorf("failed to get %s level: %w", def.Type, err)
	}
	if level >= def.MaxLevel {
		return level, fmt.Errorf("%w: %s is at level %d", economy.ErrMaxLevelReached, def.Type, level)
	}

	if def.RequiresLicense != "" {
		license, err := uow.UpgradeRepository().GetLevel(ctx, userID, def.RequiresLicense)
		if err != nil {
			return 0, fmt.Errorf("failed to get %s level: %w", def.RequiresLicense, err)
		}
		if license < level+1 {
			return level, fmt.Errorf("%w: %s level %d needs %s level %d, have %d",
				economy.ErrLicenseRequirementNotMet, def.Type, level+1, def.RequiresLicense, level+1, license)
		}
	}
	return level, nil
}

func (s *upgradeService) multiplier(ctx context.Context, uow UnitOfWork, currency models.Currency, supply *models.Pool, lock bool) (decimal.Decimal, error) {
	if currency == models.CurrencySoft {
		return economy.SoftMultiplier(supply.SoftAmount, s.settings.InitialSoftSupply), nil
	}

	var (
		burned decimal.Decimal
		err    error
	)
	if lock {
		burned, err = uow.BurnRepository().LockBurnedTotal(ctx)
	} else {
		burned, err = uow.BurnRepository().GetBurnedTotal(ctx)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get burned total: %w", err)
	}
	ratio := economy.BurnRatio(burned, s.settings.TotalHardSupply)
	return economy.HardMultiplier(ratio, s.settings.BurnSmoothing), nil
}

func (s *upgradeService) quote(def models.UpgradeDefinition, currency models.Currency, level int, multiplier decimal.Decimal) *models.UpgradeQuote {
	q := &models.UpgradeQuote{
		UpgradeType:  def.Type,
		Currency:     currency,
		CurrentLevel: level,
		MaxLevel:     def.MaxLevel,
		PriceHard:    decimal.Zero,
		Multiplier:   multiplier,
	}
	if currency == models.CurrencySoft {
		q.PriceSoft = economy.SoftPriceForLevel(def.BaseSoftPrice, level+1, multiplier)
	} else {
		q.PriceHard = economy.HardPriceForLevel(def.BaseHardPrice, level+1, multiplier)
	}
	return q
}

func (s *upgradeService) QuoteUpgrade(ctx context.Context, userID int64, upgradeType models.UpgradeType, currency models.Currency) (*models.UpgradeQuote, error) {
	def, err := s.definition(upgradeType, currency)
	if err != nil {
		return nil, err
	}

	var result *models.UpgradeQuote
	err = s.runner.run(ctx, "quote_upgrade", func(uow UnitOfWork) error {
		var supply *models.Pool
		if currency == models.CurrencySoft {
			var err error
			if supply, err = s.ledger.SoftSupply(ctx, uow, false); err != nil {
				return err
			}
		}
		level, err := s.checkLevel(ctx, uow, userID, def)
		if err != nil {
			return err
		}
		multiplier, err := s.multiplier(ctx, uow, currency, supply, false)
		if err != nil {
			return err
		}
		result = s.quote(def, currency, level, multiplier)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// PurchaseUpgrade buys the next level of an upgrade track.
//
// Soft payments leave circulation through the supply pool. Hard payments are
// burned. Locks are taken supply pool, user, burn counter, audit head.
func (s *upgradeService) PurchaseUpgrade(ctx context.Context, userID int64, upgradeType models.UpgradeType, currency models.Currency) (*models.UpgradeResult, error) {
	def, err := s.definition(upgradeType, currency)
	if err != nil {
		return nil, err
	}

	var result *models.UpgradeResult
	err = s.runner.run(ctx, "purchase_upgrade", func(uow UnitOfWork) error {
		var supply *models.Pool
		if currency == models.CurrencySoft {
			var err error
			if supply, err = s.ledger.SoftSupply(ctx, uow, true); err != nil {
				return err
			}
		}

		user, err := lockUser(ctx, uow, userID)
		if err != nil {
			return err
		}
		level, err := s.checkLevel(ctx, uow, userID, def)
		if err != nil {
			return err
		}
		multiplier, err := s.multiplier(ctx, uow, currency, supply, true)
		if err != nil {
			return err
		}
		price := s.quote(def, currency, level, multiplier)
		newLevel := level + 1

		result = &models.UpgradeResult{
			UpgradeType:    def.Type,
			Currency:       currency,
			NewLevel:       newLevel,
			PaidHard:       decimal.Zero,
			NewSoftBalance: user.SoftBalance,
			NewHardBalance: user.HardBalance,
		}

		if currency == models.CurrencySoft {
			if user.SoftBalance < price.PriceSoft {
				return fmt.Errorf("%w: have %d, need %d", economy.ErrInsufficientFunds, user.SoftBalance, price.PriceSoft)
			}
			result.PaidSoft = price.PriceSoft
			result.NewSoftBalance = user.SoftBalance - price.PriceSoft
			totalSpent := user.TotalSoftSpent + price.PriceSoft
			if err := uow.UserBalanceRepository().Update(ctx, userID, models.BalanceUpdate{
				SoftBalance:    &result.NewSoftBalance,
				TotalSoftSpent: &totalSpent,
			}); err != nil {
				return fmt.Errorf("failed to update balance: %w", err)
			}
		} else {
			if user.HardBalance.LessThan(price.PriceHard) {
				return fmt.Errorf("%w: have %s, need %s",
					economy.ErrInsufficientHoldings, user.HardBalance.String(), price.PriceHard.String())
			}
			result.PaidHard = price.PriceHard
			result.NewHardBalance = user.HardBalance.Sub(price.PriceHard)
			if err := uow.UserBalanceRepository().Update(ctx, userID, models.BalanceUpdate{
				HardBalance: &result.NewHardBalance,
			}); err != nil {
				return fmt.Errorf("failed to update balance: %w", err)
			}
		}

		if err := uow.UpgradeRepository().SetLevel(ctx, userID, def.Type, newLevel); err != nil {
			return fmt.Errorf("failed to set %s level: %w", def.Type, err)
		}

		description := fmt.Sprintf("%s level %d", def.Type, newLevel)
		if currency == models.CurrencySoft {
			newSupply := decimal.Max(supply.SoftAmount.Sub(decimal.NewFromInt(price.PriceSoft)), decimal.Zero)
			if err := s.ledger.UpdatePool(ctx, uow, models.PoolTotalSoftSupply, supply.HardAmount, newSupply); err != nil {
				return err
			}
			record := &models.PoolTransaction{
				PoolName:    models.PoolTotalSoftSupply,
				Type:        models.PoolTransactionSpend,
				HardDelta:   decimal.Zero,
				SoftDelta:   -price.PriceSoft,
				UserID:      userID,
				Description: description,
			}
			if err := RecordPoolTransaction(ctx, uow, record, s.settings.now()); err != nil {
				return err
			}
			result.TransactionID = record.ID
		} else {
			_, id, err := recordBurn(ctx, uow, userID, price.PriceHard, description, s.settings)
			if err != nil {
				return err
			}
			result.TransactionID = id
		}

		uow.EventBus().Publish(events.UpgradePurchasedEvent{
			UserID:      userID,
			UpgradeType: def.Type,
			Currency:    currency,
			NewLevel:    newLevel,
			PaidSoft:    result.PaidSoft,
			PaidHard:    result.PaidHard,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"userID":   userID,
		"upgrade":  upgradeType,
		"currency": currency,
		"level":    result.NewLevel,
	}).Info("Upgrade purchased")

	return result, nil
}

func (s *upgradeService) GetUpgrades(ctx context.Context, userID int64) ([]*models.UpgradeLevel, error) {
	var levels []*models.UpgradeLevel
	err := s.runner.run(ctx, "get_upgrades", func(uow UnitOfWork) error {
		var err error
		levels, err = uow.UpgradeRepository().GetAllByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to get upgrades: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return levels, nil
}
