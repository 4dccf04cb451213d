package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ryabank/economy"

	log "github.com/sirupsen/logrus"
)

// txRunner executes a function inside a unit of work, retrying the whole
// unit when the database reports a concurrency conflict.
type txRunner struct {
	uowFactory UnitOfWorkFactory
	maxRetries int
	backoff    time.Duration
}

func newTxRunner(uowFactory UnitOfWorkFactory, settings Settings) txRunner {
	return txRunner{
		uowFactory: uowFactory,
		maxRetries: settings.MaxTxRetries,
		backoff:    settings.RetryBackoff,
	}
}

func (r txRunner) run(ctx context.Context, op string, fn func(uow UnitOfWork) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = r.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if !errors.Is(err, economy.ErrConcurrencyConflict) || attempt >= r.maxRetries {
			break
		}

		log.WithFields(log.Fields{
			"operation": op,
			"attempt":   attempt + 1,
		}).Debug("Retrying after concurrency conflict")

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", economy.ErrStorageUnavailable, ctx.Err())
		case <-time.After(r.backoff * time.Duration(attempt+1)):
		}
	}
	return translateError(err)
}

func (r txRunner) runOnce(ctx context.Context, fn func(uow UnitOfWork) error) error {
	uow := r.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	if err := fn(uow); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// translateError maps anything outside the economy taxonomy to ErrStorageUnavailable
func translateError(err error) error {
	if err == nil || economy.IsKnown(err) {
		return err
	}
	return fmt.Errorf("%w: %w", economy.ErrStorageUnavailable, err)
}

// logOutcome logs user-caused failures at debug level and everything else as errors
func logOutcome(op string, fields log.Fields, err error) {
	if err == nil {
		return
	}
	entry := log.WithFields(fields).WithField("operation", op).WithError(err)
	if economy.IsUserError(err) {
		entry.Debug("Economy request rejected")
		return
	}
	entry.Error("Economy operation failed")
}
