package repository

import (
	"context"
	"errors"
	"fmt"

	"ryabank/database"
	"ryabank/models"
	"ryabank/service"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// BurnRepository implements the BurnRepository interface over the
// economy_counters row named models.CounterBurnedHard.
type BurnRepository struct {
	q queryable
}

// NewBurnRepository creates a new burn repository
func NewBurnRepository(db *database.DB) service.BurnRepository {
	return &BurnRepository{q: db.Pool}
}

// newBurnRepositoryWithTx creates a new burn repository with a transaction
func newBurnRepositoryWithTx(tx queryable) *BurnRepository {
	return &BurnRepository{q: tx}
}

// GetBurnedTotal returns the burned total, zero if the counter row is missing
func (r *BurnRepository) GetBurnedTotal(ctx context.Context) (decimal.Decimal, error) {
	return r.read(ctx, `SELECT value::text FROM economy_counters WHERE name = $1`)
}

// LockBurnedTotal reads the burned total and holds the counter row lock
func (r *BurnRepository) LockBurnedTotal(ctx context.Context) (decimal.Decimal, error) {
	return r.read(ctx, `SELECT value::text FROM economy_counters WHERE name = $1 FOR UPDATE`)
}

func (r *BurnRepository) read(ctx context.Context, query string) (decimal.Decimal, error) {
	var value string
	err := r.q.QueryRow(ctx, query, models.CounterBurnedHard).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read burned total: %w", classify(err))
	}
	return parseDecimal(value)
}

// IncrementBurnedTotal adds amount to the counter and returns the new total
func (r *BurnRepository) IncrementBurnedTotal(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	query := `
		INSERT INTO economy_counters (name, value, updated_at)
		VALUES ($1, $2::numeric, NOW())
		ON CONFLICT (name) DO UPDATE
		SET value = economy_counters.value + EXCLUDED.value,
		    updated_at = NOW()
		RETURNING value::text
	`
	var total string
	if err := r.q.QueryRow(ctx, query, models.CounterBurnedHard, amount.String()).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to increment burned total: %w", classify(err))
	}
	return parseDecimal(total)
}
