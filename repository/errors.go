package repository

import (
	"errors"
	"fmt"

	"ryabank/economy"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes that mean another transaction won a race
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

// classify marks serialization failures, deadlocks and lock timeouts as
// economy.ErrConcurrencyConflict so the service layer can retry them.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return fmt.Errorf("%w: %w", economy.ErrConcurrencyConflict, err)
		}
	}
	return err
}
