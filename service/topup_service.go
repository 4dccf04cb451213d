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

// topUpAmount converts external units into soft currency at the current rate
// plus the package bonus, truncated toward zero.
func topUpAmount(units int64, hardEquivalent, rate decimal.Decimal, bonusPercent int64) int64 {
	bonus := decimal.NewFromInt(100 + bonusPercent).Div(decimal.NewFromInt(100))
	return decimal.NewFromInt(units).
		Mul(hardEquivalent).
		Mul(rate).
		Mul(bonus).
		Truncate(0).
		IntPart()
}

// PurchaseWithExternalCurrency mints soft currency for a real-money top-up.
// This is the only path that grows the soft supply, so it updates the supply
// pool in the same unit of work as the user credit.
func (s *exchangeService) PurchaseWithExternalCurrency(ctx context.Context, userID int64, externalUnits int64, tier models.PackageTier) (*models.TopUpResult, error) {
	if externalUnits <= 0 {
		return nil, fmt.Errorf("%w: %d external units", economy.ErrInvalidAmount, externalUnits)
	}
	bonusPercent, ok := models.PackageTierBonusPercent[tier]
	if !ok {
		return nil, fmt.Errorf("%w: %s", economy.ErrUnknownPackageTier, tier)
	}

	var result *models.TopUpResult
	err := s.runner.run(ctx, "top_up", func(uow UnitOfWork) error {
		market, err := s.ledger.ReadMarket(ctx, uow)
		if err != nil {
			return err
		}
		rate := economy.CurrentRate(market.Hard, market.Soft)

		credited := topUpAmount(externalUnits, s.settings.ExternalUnitHardEquivalent, rate, bonusPercent)
		if credited <= 0 {
			return fmt.Errorf("%w: %d external units buy no ryabucks", economy.ErrBelowMinimumTrade, externalUnits)
		}

		supply, err := s.ledger.SoftSupply(ctx, uow, true)
		if err != nil {
			return err
		}

		user, err := lockUser(ctx, uow, userID)
		if err != nil {
			return err
		}

		newSupply := supply.SoftAmount.Add(decimal.NewFromInt(credited))
		if err := s.ledger.UpdatePool(ctx, uow, models.PoolTotalSoftSupply, supply.HardAmount, newSupply); err != nil {
			return err
		}

		newSoftBalance := user.SoftBalance + credited
		totalPurchased := user.TotalSoftPurchased + credited
		if err := uow.UserBalanceRepository().Update(ctx, userID, models.BalanceUpdate{
			SoftBalance:        &newSoftBalance,
			TotalSoftPurchased: &totalPurchased,
		}); err != nil {
			return fmt.Errorf("failed to update balance: %w", err)
		}

		record := &models.PoolTransaction{
			PoolName:    models.PoolTotalSoftSupply,
			Type:        models.PoolTransactionMint,
			HardDelta:   decimal.Zero,
			SoftDelta:   credited,
			UserID:      userID,
			Description: fmt.Sprintf("top-up of %d units, %s package", externalUnits, tier),
		}
		if err := RecordPoolTransaction(ctx, uow, record, s.settings.now()); err != nil {
			return err
		}

		uow.EventBus().Publish(events.CurrencyMintedEvent{
			TransactionID: record.ID.String(),
			UserID:        userID,
			Amount:        credited,
			Tier:          tier,
		})

		result = &models.TopUpResult{
			TransactionID:  record.ID,
			UserID:         userID,
			ExternalUnits:  externalUnits,
			Tier:           tier,
			BonusPercent:   bonusPercent,
			SoftCredited:   credited,
			NewSoftBalance: newSoftBalance,
			Rate:           rate,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"userID":   userID,
		"units":    externalUnits,
		"tier":     tier,
		"credited": result.SoftCredited,
	}).Info("Soft currency minted from top-up")

	return result, nil
}
