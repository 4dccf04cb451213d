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

type exchangeService struct {
	runner   txRunner
	ledger   PoolLedger
	settings Settings
}

// NewExchangeService creates a new exchange service
func NewExchangeService(uowFactory UnitOfWorkFactory, ledger PoolLedger, settings Settings) ExchangeService {
	return &exchangeService{
		runner:   newTxRunner(uowFactory, settings),
		ledger:   ledger,
		settings: settings,
	}
}

func (s *exchangeService) validateTrade(amountHard decimal.Decimal) (decimal.Decimal, error) {
	if !amountHard.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s", economy.ErrInvalidAmount, amountHard.String())
	}
	// Positive dust that truncates to zero is still a below-minimum trade
	amount := economy.TruncateHard(amountHard)
	if amount.LessThanOrEqual(s.settings.MinTradeHard) {
		return decimal.Zero, fmt.Errorf("%w: %s must be greater than %s",
			economy.ErrBelowMinimumTrade, amount.String(), s.settings.MinTradeHard.String())
	}
	return amount, nil
}

func (s *exchangeService) QuoteBuy(ctx context.Context, amountHard decimal.Decimal) (*models.Quote, error) {
	amount, err := s.validateTrade(amountHard)
	if err != nil {
		return nil, err
	}

	var quote *models.Quote
	err = s.runner.run(ctx, "quote_buy", func(uow UnitOfWork) error {
		market, err := s.ledger.ReadMarket(ctx, uow)
		if err != nil {
			return err
		}
		cost, err := economy.BuyCost(amount, market.Hard, market.Soft)
		if err != nil {
			return err
		}
		newHard, newSoft := economy.PoolAfterBuy(amount, market.Hard, market.Soft, cost)
		quote = &models.Quote{
			AmountHard: amount,
			Soft:       cost,
			Rate:       economy.CurrentRate(market.Hard, market.Soft),
			RateAfter:  economy.CurrentRate(newHard, newSoft),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

func (s *exchangeService) QuoteSell(ctx context.Context, amountHard decimal.Decimal) (*models.Quote, error) {
	amount, err := s.validateTrade(amountHard)
	if err != nil {
		return nil, err
	}

	var quote *models.Quote
	err = s.runner.run(ctx, "quote_sell", func(uow UnitOfWork) error {
		market, err := s.ledger.ReadMarket(ctx, uow)
		if err != nil {
			return err
		}
		reward, err := economy.SellReward(amount, market.Hard, market.Soft)
		if err != nil {
			return err
		}
		newHard, newSoft := economy.PoolAfterSell(amount, market.Hard, market.Soft, reward)
		quote = &models.Quote{
			AmountHard: amount,
			Soft:       reward,
			Rate:       economy.CurrentRate(market.Hard, market.Soft),
			RateAfter:  economy.CurrentRate(newHard, newSoft),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

func (s *exchangeService) Buy(ctx context.Context, userID int64, amountHard decimal.Decimal) (*models.TradeResult, error) {
	amount, err := s.validateTrade(amountHard)
	if err != nil {
		return nil, err
	}

	var result *models.TradeResult
	err = s.runner.run(ctx, "buy", func(uow UnitOfWork) error {
		market, err := s.ledger.LockMarket(ctx, uow)
		if err != nil {
			return err
		}

		cost, err := economy.BuyCost(amount, market.Hard, market.Soft)
		if err != nil {
			return err
		}
		if cost == 0 {
			return fmt.Errorf("%w: %s rbtc costs less than one ryabuck", economy.ErrBelowMinimumTrade, amount.String())
		}

		user, err := lockUser(ctx, uow, userID)
		if err != nil {
			return err
		}
		if user.SoftBalance < cost {
			return fmt.Errorf("%w: have %d, need %d", economy.ErrInsufficientFunds, user.SoftBalance, cost)
		}

		newHard, newSoft := economy.PoolAfterBuy(amount, market.Hard, market.Soft, cost)
		if err := s.ledger.UpdateMarket(ctx, uow, market, newHard, newSoft); err != nil {
			return err
		}

		newSoftBalance := user.SoftBalance - cost
		newHardBalance := user.HardBalance.Add(amount)
		totalSpent := user.TotalSoftSpent + cost
		totalBought := user.TotalHardBought.Add(amount)
		if err := uow.UserBalanceRepository().Update(ctx, userID, models.BalanceUpdate{
			SoftBalance:     &newSoftBalance,
			HardBalance:     &newHardBalance,
			TotalSoftSpent:  &totalSpent,
			TotalHardBought: &totalBought,
		}); err != nil {
			return fmt.Errorf("failed to update balance: %w", err)
		}

		newRate := economy.CurrentRate(newHard, newSoft)
		record := &models.PoolTransaction{
			PoolName:    models.PoolGameBankHard,
			Type:        models.PoolTransactionBuy,
			HardDelta:   amount.Neg(),
			SoftDelta:   cost,
			UserID:      userID,
			Description: fmt.Sprintf("buy %s rbtc for %d ryabucks", amount.String(), cost),
		}
		if err := RecordPoolTransaction(ctx, uow, record, s.settings.now()); err != nil {
			return err
		}

		uow.EventBus().Publish(events.TradeExecutedEvent{
			TransactionID: record.ID.String(),
			UserID:        userID,
			Side:          models.PoolTransactionBuy,
			AmountHard:    amount,
			Soft:          cost,
			NewRate:       newRate,
		})

		result = &models.TradeResult{
			TransactionID:  record.ID,
			UserID:         userID,
			Type:           models.PoolTransactionBuy,
			AmountHard:     amount,
			Soft:           cost,
			NewSoftBalance: newSoftBalance,
			NewHardBalance: newHardBalance,
			NewRate:        newRate,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"userID": userID,
		"amount": amount.String(),
		"cost":   result.Soft,
		"rate":   result.NewRate.StringFixed(4),
	}).Info("Hard currency bought")

	return result, nil
}

func (s *exchangeService) Sell(ctx context.Context, userID int64, amountHard decimal.Decimal) (*models.TradeResult, error) {
	amount, err := s.validateTrade(amountHard)
	if err != nil {
		return nil, err
	}

	var result *models.TradeResult
	err = s.runner.run(ctx, "sell", func(uow UnitOfWork) error {
		market, err := s.ledger.LockMarket(ctx, uow)
		if err != nil {
			return err
		}

		reward, err := economy.SellReward(amount, market.Hard, market.Soft)
		if err != nil {
			return err
		}
		if reward == 0 {
			return fmt.Errorf("%w: %s rbtc is worth less than one ryabuck", economy.ErrBelowMinimumTrade, amount.String())
		}

		user, err := lockUser(ctx, uow, userID)
		if err != nil {
			return err
		}
		if user.HardBalance.LessThan(amount) {
			return fmt.Errorf("%w: have %s, need %s",
				economy.ErrInsufficientHoldings, user.HardBalance.String(), amount.String())
		}

		newHard, newSoft := economy.PoolAfterSell(amount, market.Hard, market.Soft, reward)
		if err := s.ledger.UpdateMarket(ctx, uow, market, newHard, newSoft); err != nil {
			return err
		}

		newSoftBalance := user.SoftBalance + reward
		newHardBalance := user.HardBalance.Sub(amount)
		totalEarned := user.TotalSoftEarned + reward
		totalSold := user.TotalHardSold.Add(amount)
		if err := uow.UserBalanceRepository().Update(ctx, userID, models.BalanceUpdate{
			SoftBalance:     &newSoftBalance,
			HardBalance:     &newHardBalance,
			TotalSoftEarned: &totalEarned,
			TotalHardSold:   &totalSold,
		}); err != nil {
			return fmt.Errorf("failed to update balance: %w", err)
		}

		newRate := economy.CurrentRate(newHard, newSoft)
		record := &models.PoolTransaction{
			PoolName:    models.PoolGameBankHard,
			Type:        models.PoolTransactionSell,
			HardDelta:   amount,
			SoftDelta:   -reward,
			UserID:      userID,
			Description: fmt.Sprintf("sell %s rbtc for %d ryabucks", amount.String(), reward),
		}
		if err := RecordPoolTransaction(ctx, uow, record, s.settings.now()); err != nil {
			return err
		}

		uow.EventBus().Publish(events.TradeExecutedEvent{
			TransactionID: record.ID.String(),
			UserID:        userID,
			Side:          models.PoolTransactionSell,
			AmountHard:    amount,
			Soft:          reward,
			NewRate:       newRate,
		})

		result = &models.TradeResult{
			TransactionID:  record.ID,
			UserID:         userID,
			Type:           models.PoolTransactionSell,
			AmountHard:     amount,
			Soft:           reward,
			NewSoftBalance: newSoftBalance,
			NewHardBalance: newHardBalance,
			NewRate:        newRate,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"userID": userID,
		"amount": amount.String(),
		"reward": result.Soft,
		"rate":   result.NewRate.StringFixed(4),
	}).Info("Hard currency sold")

	return result, nil
}

// lockUser loads and locks a user's balance row, failing if the user has no account
func lockUser(ctx context.Context, uow UnitOfWork, userID int64) (*models.UserBalance, error) {
	user, err := uow.UserBalanceRepository().GetByUserIDForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user balance: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: %d", economy.ErrUserNotFound, userID)
	}
	return user, nil
}
