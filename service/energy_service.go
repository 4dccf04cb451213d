package service

import (
	"context"
	"fmt"
	"time"

	"ryabank/economy"
	"ryabank/events"
	"ryabank/models"
)

type energyService struct {
	runner   txRunner
	settings Settings
}

// NewEnergyService creates a new energy service
func NewEnergyService(uowFactory UnitOfWorkFactory, settings Settings) EnergyService {
	return &energyService{
		runner:   newTxRunner(uowFactory, settings),
		settings: settings,
	}
}

// regenerate applies lazy regeneration to a stored balance
func (s *energyService) regenerate(user *models.UserBalance, now time.Time) (int, time.Time) {
	return economy.EffectiveCurrent(
		user.EnergyCurrent,
		user.EnergyMax,
		user.EnergyLastUpdated,
		now,
		s.settings.EnergyRegenMinutes,
		s.settings.EnergyRegenPerInterval,
	)
}

func (s *energyService) state(userID int64, current, maximum int, lastUpdated time.Time) *models.EnergyState {
	state := &models.EnergyState{
		UserID:      userID,
		Current:     current,
		Maximum:     maximum,
		LastUpdated: lastUpdated,
	}
	if current < maximum && s.settings.EnergyRegenMinutes > 0 {
		next := lastUpdated.Add(time.Duration(s.settings.EnergyRegenMinutes) * time.Minute)
		state.NextUnitAt = &next
	}
	return state
}

// GetEnergyState is read-only: the regenerated value is computed, not stored.
func (s *energyService) GetEnergyState(ctx context.Context, userID int64) (*models.EnergyState, error) {
	var state *models.EnergyState
	err := s.runner.run(ctx, "get_energy", func(uow UnitOfWork) error {
		user, err := uow.UserBalanceRepository().GetByUserID(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to get user balance: %w", err)
		}
		if user == nil {
			return fmt.Errorf("%w: %d", economy.ErrUserNotFound, userID)
		}

		current, lastUpdated := s.regenerate(user, s.settings.now())
		state = s.state(userID, current, user.EnergyMax, lastUpdated)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

func (s *energyService) SpendEnergy(ctx context.Context, userID int64, cost int) (*models.EnergyState, error) {
	if cost <= 0 {
		return nil, fmt.Errorf("%w: energy cost %d", economy.ErrInvalidAmount, cost)
	}

	var state *models.EnergyState
	err := s.runner.run(ctx, "spend_energy", func(uow UnitOfWork) error {
		user, err := lockUser(ctx, uow, userID)
		if err != nil {
			return err
		}

		now := s.settings.now()
		current, lastUpdated := s.regenerate(user, now)
		remaining, err := economy.Consume(current, cost)
		if err != nil {
			return err
		}
		// Time spent idle at a full bar must not count toward the next unit.
		if current >= user.EnergyMax {
			lastUpdated = now
		}

		if err := uow.UserBalanceRepository().Update(ctx, userID, models.BalanceUpdate{
			EnergyCurrent:     &remaining,
			EnergyLastUpdated: &lastUpdated,
		}); err != nil {
			return fmt.Errorf("failed to update energy: %w", err)
		}

		uow.EventBus().Publish(events.EnergyChangedEvent{
			UserID:     userID,
			OldCurrent: current,
			NewCurrent: remaining,
			Maximum:    user.EnergyMax,
			Reason:     "spend",
		})

		state = s.state(userID, remaining, user.EnergyMax, lastUpdated)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

// RestoreEnergy adds energy from an external source such as an ad reward.
// reason is only recorded on the emitted event.
func (s *energyService) RestoreEnergy(ctx context.Context, userID int64, amount int, reason string) (*models.EnergyState, error) {
	var state *models.EnergyState
	err := s.runner.run(ctx, "restore_energy", func(uow UnitOfWork) error {
		user, err := lockUser(ctx, uow, userID)
		if err != nil {
			return err
		}

		now := s.settings.now()
		current, lastUpdated := s.regenerate(user, now)
		restored := economy.Restore(current, user.EnergyMax, amount)
		if restored == current && current == user.EnergyCurrent {
			state = s.state(userID, current, user.EnergyMax, lastUpdated)
			return nil
		}
		if restored >= user.EnergyMax && restored != current {
			lastUpdated = now
		}

		if err := uow.UserBalanceRepository().Update(ctx, userID, models.BalanceUpdate{
			EnergyCurrent:     &restored,
			EnergyLastUpdated: &lastUpdated,
		}); err != nil {
			return fmt.Errorf("failed to update energy: %w", err)
		}

		if restored != current {
			uow.EventBus().Publish(events.EnergyChangedEvent{
				UserID:     userID,
				OldCurrent: current,
				NewCurrent: restored,
				Maximum:    user.EnergyMax,
				Reason:     reason,
			})
		}

		state = s.state(userID, restored, user.EnergyMax, lastUpdated)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}
