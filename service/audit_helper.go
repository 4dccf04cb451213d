package service

import (
	"context"
	"fmt"
	"time"

	"ryabank/models"

	"github.com/google/uuid"
)

// RecordPoolTransaction appends an audit entry. This is the single entry point
// for audit records; it must be the last write of a unit of work so the chain
// head lock is held as briefly as possible.
func RecordPoolTransaction(ctx context.Context, uow UnitOfWork, tx *models.PoolTransaction, now time.Time) error {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = now.UTC().Truncate(time.Microsecond)
	}

	if err := uow.TransactionRepository().Append(ctx, tx); err != nil {
		return fmt.Errorf("failed to append %s transaction: %w", tx.Type, err)
	}
	return nil
}
