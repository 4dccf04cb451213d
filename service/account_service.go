package service

import (
	"context"
	"fmt"

	"ryabank/economy"
	"ryabank/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

type accountService struct {
	runner   txRunner
	settings Settings
}

// NewAccountService creates a new account service
func NewAccountService(uowFactory UnitOfWorkFactory, settings Settings) AccountService {
	return &accountService{
		runner:   newTxRunner(uowFactory, settings),
		settings: settings,
	}
}

func (s *accountService) EnsureAccount(ctx context.Context, userID int64) (*models.UserBalance, error) {
	var balance *models.UserBalance
	err := s.runner.run(ctx, "ensure_account", func(uow UnitOfWork) error {
		existing, err := uow.UserBalanceRepository().GetByUserID(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to get user balance: %w", err)
		}
		if existing != nil {
			balance = existing
			return nil
		}

		created, err := uow.UserBalanceRepository().Create(ctx, &models.UserBalance{
			UserID:            userID,
			SoftBalance:       s.settings.StartingSoftBalance,
			HardBalance:       decimal.Zero,
			EnergyCurrent:     s.settings.EnergyDefaultMax,
			EnergyMax:         s.settings.EnergyDefaultMax,
			EnergyLastUpdated: s.settings.now(),
			Level:             1,
			TotalHardBought:   decimal.Zero,
			TotalHardSold:     decimal.Zero,
		})
		if err != nil {
			return fmt.Errorf("failed to create user balance: %w", err)
		}
		if created == nil {
			// Lost a race with a concurrent create.
			if created, err = uow.UserBalanceRepository().GetByUserID(ctx, userID); err != nil {
				return fmt.Errorf("failed to get user balance: %w", err)
			}
		} else {
			log.WithFields(log.Fields{
				"userID":      userID,
				"softBalance": created.SoftBalance,
			}).Info("Created economy account")
		}
		balance = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return balance, nil
}

func (s *accountService) GetBalance(ctx context.Context, userID int64) (*models.UserBalance, error) {
	var balance *models.UserBalance
	err := s.runner.run(ctx, "get_balance", func(uow UnitOfWork) error {
		user, err := uow.UserBalanceRepository().GetByUserID(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to get user balance: %w", err)
		}
		if user == nil {
			return fmt.Errorf("%w: %d", economy.ErrUserNotFound, userID)
		}
		balance = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	balance.EnergyCurrent, balance.EnergyLastUpdated = economy.EffectiveCurrent(
		balance.EnergyCurrent,
		balance.EnergyMax,
		balance.EnergyLastUpdated,
		s.settings.now(),
		s.settings.EnergyRegenMinutes,
		s.settings.EnergyRegenPerInterval,
	)
	return balance, nil
}

func (s *accountService) GetHistory(ctx context.Context, userID int64, limit int) ([]*models.PoolTransaction, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	var history []*models.PoolTransaction
	err := s.runner.run(ctx, "get_history", func(uow UnitOfWork) error {
		user, err := uow.UserBalanceRepository().GetByUserID(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to get user balance: %w", err)
		}
		if user == nil {
			return fmt.Errorf("%w: %d", economy.ErrUserNotFound, userID)
		}

		history, err = uow.TransactionRepository().GetByUser(ctx, userID, limit)
		if err != nil {
			return fmt.Errorf("failed to get transaction history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return history, nil
}
