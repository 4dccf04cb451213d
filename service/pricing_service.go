package service

import (
	"context"
	"fmt"

	"ryabank/economy"
	"ryabank/events"
	"ryabank/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type pricingService struct {
	runner   txRunner
	ledger   PoolLedger
	settings Settings
}

// NewPricingService creates a new pricing service
func NewPricingService(uowFactory UnitOfWorkFactory, ledger PoolLedger, settings Settings) PricingService {
	return &pricingService{
		runner:   newTxRunner(uowFactory, settings),
		ledger:   ledger,
		settings: settings,
	}
}

func (s *pricingService) multipliers(supply, burned decimal.Decimal) *models.PriceMultipliers {
	ratio := economy.BurnRatio(burned, s.settings.TotalHardSupply)
	return &models.PriceMultipliers{
		Soft:        economy.SoftMultiplier(supply, s.settings.InitialSoftSupply),
		Hard:        economy.HardMultiplier(ratio, s.settings.BurnSmoothing),
		SoftSupply:  supply,
		BurnedTotal: burned,
		BurnRatio:   ratio,
	}
}

func (s *pricingService) GetPriceMultipliers(ctx context.Context) (*models.PriceMultipliers, error) {
	var result *models.PriceMultipliers
	err := s.runner.run(ctx, "price_multipliers", func(uow UnitOfWork) error {
		supply, err := s.ledger.SoftSupply(ctx, uow, false)
		if err != nil {
			return err
		}
		burned, err := uow.BurnRepository().GetBurnedTotal(ctx)
		if err != nil {
			return fmt.Errorf("failed to get burned total: %w", err)
		}
		result = s.multipliers(supply.SoftAmount, burned)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *pricingService) RecordBurn(ctx context.Context, userID int64, amount decimal.Decimal, reason string) (decimal.Decimal, error) {
	amount, err := economy.ValidateHardAmount(amount)
	if err != nil {
		return decimal.Zero, err
	}

	var total decimal.Decimal
	err = s.runner.run(ctx, "record_burn", func(uow UnitOfWork) error {
		var burnErr error
		total, _, burnErr = recordBurn(ctx, uow, userID, amount, reason, s.settings)
		return burnErr
	})
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// recordBurn grows the burned counter and audits the burn inside the caller's
// unit of work. The counter only ever increases.
func recordBurn(ctx context.Context, uow UnitOfWork, userID int64, amount decimal.Decimal, reason string, settings Settings) (decimal.Decimal, uuid.UUID, error) {
	if !amount.IsPositive() {
		return decimal.Zero, uuid.Nil, fmt.Errorf("%w: burn of %s", economy.ErrInvalidAmount, amount.String())
	}

	total, err := uow.BurnRepository().IncrementBurnedTotal(ctx, amount)
	if err != nil {
		return decimal.Zero, uuid.Nil, fmt.Errorf("failed to increment burned total: %w", err)
	}

	record := &models.PoolTransaction{
		PoolName:    models.CounterBurnedHard,
		Type:        models.PoolTransactionBurn,
		HardDelta:   amount,
		SoftDelta:   0,
		UserID:      userID,
		Description: reason,
	}
	if err := RecordPoolTransaction(ctx, uow, record, settings.now()); err != nil {
		return decimal.Zero, uuid.Nil, err
	}

	uow.EventBus().Publish(events.HardBurnedEvent{
		UserID:      userID,
		Amount:      amount,
		BurnedTotal: total,
		Reason:      reason,
	})

	log.WithFields(log.Fields{
		"userID": userID,
		"amount": amount.String(),
		"total":  total.String(),
		"reason": reason,
	}).Debug("Hard currency burned")

	return total, record.ID, nil
}
