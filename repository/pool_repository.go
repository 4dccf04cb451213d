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

// Numeric columns travel as text so no precision is lost on the way through
// float conversions.
const poolColumns = `name, hard_currency_amount::text, soft_currency_amount::text, last_updated`

// PoolRepository implements the PoolRepository interface
type PoolRepository struct {
	q queryable
}

// NewPoolRepository creates a new pool repository
func NewPoolRepository(db *database.DB) service.PoolRepository {
	return &PoolRepository{q: db.Pool}
}

// newPoolRepositoryWithTx creates a new pool repository with a transaction
func newPoolRepositoryWithTx(tx queryable) *PoolRepository {
	return &PoolRepository{q: tx}
}

// GetByName returns the pool or nil if it does not exist
func (r *PoolRepository) GetByName(ctx context.Context, name string) (*models.Pool, error) {
	query := `SELECT ` + poolColumns + ` FROM pools WHERE name = $1`
	pool, err := scanPool(r.q.QueryRow(ctx, query, name))
	if err != nil {
		return nil, fmt.Errorf("failed to get pool %s: %w", name, classify(err))
	}
	return pool, nil
}

// GetByNameForUpdate locks the pool row until the transaction ends
func (r *PoolRepository) GetByNameForUpdate(ctx context.Context, name string) (*models.Pool, error) {
	query := `SELECT ` + poolColumns + ` FROM pools WHERE name = $1 FOR UPDATE`
	pool, err := scanPool(r.q.QueryRow(ctx, query, name))
	if err != nil {
		return nil, fmt.Errorf("failed to lock pool %s: %w", name, classify(err))
	}
	return pool, nil
}

// Upsert writes both reserves of a pool, creating the row when missing
func (r *PoolRepository) Upsert(ctx context.Context, name string, hard, soft decimal.Decimal) error {
	query := `
		INSERT INTO pools (name, hard_currency_amount, soft_currency_amount, last_updated)
		VALUES ($1, $2::numeric, $3::numeric, NOW())
		ON CONFLICT (name) DO UPDATE
		SET hard_currency_amount = EXCLUDED.hard_currency_amount,
		    soft_currency_amount = EXCLUDED.soft_currency_amount,
		    last_updated = NOW()
	`
	if _, err := r.q.Exec(ctx, query, name, hard.String(), soft.String()); err != nil {
		return fmt.Errorf("failed to upsert pool %s: %w", name, classify(err))
	}
	return nil
}

// Seed inserts a pool only if it does not exist yet and reports whether it did
func (r *PoolRepository) Seed(ctx context.Context, name string, hard, soft decimal.Decimal) (bool, error) {
	query := `
		INSERT INTO pools (name, hard_currency_amount, soft_currency_amount)
		VALUES ($1, $2::numeric, $3::numeric)
		ON CONFLICT (name) DO NOTHING
	`
	tag, err := r.q.Exec(ctx, query, name, hard.String(), soft.String())
	if err != nil {
		return false, fmt.Errorf("failed to seed pool %s: %w", name, classify(err))
	}
	return tag.RowsAffected() == 1, nil
}

// SumSoftSupply totals the soft side of every pool not named in excluding
func (r *PoolRepository) SumSoftSupply(ctx context.Context, excluding []string) (decimal.Decimal, error) {
	if excluding == nil {
		excluding = []string{}
	}
	query := `
		SELECT COALESCE(SUM(soft_currency_amount), 0)::text
		FROM pools
		WHERE NOT (name = ANY($1))
	`
	var total string
	if err := r.q.QueryRow(ctx, query, excluding).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum soft supply: %w", classify(err))
	}
	return parseDecimal(total)
}

// GetAll returns every pool ordered by name
func (r *PoolRepository) GetAll(ctx context.Context) ([]*models.Pool, error) {
	query := `SELECT ` + poolColumns + ` FROM pools ORDER BY name`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pools: %w", classify(err))
	}
	defer rows.Close()

	var pools []*models.Pool
	for rows.Next() {
		pool, err := scanPool(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pool: %w", err)
		}
		pools = append(pools, pool)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pools: %w", classify(err))
	}
	return pools, nil
}

// scanPool returns nil, nil when the row does not exist
func scanPool(row pgx.Row) (*models.Pool, error) {
	var (
		pool       models.Pool
		hard, soft string
	)
	err := row.Scan(&pool.Name, &hard, &soft, &pool.LastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if pool.HardAmount, err = parseDecimal(hard); err != nil {
		return nil, err
	}
	if pool.SoftAmount, err = parseDecimal(soft); err != nil {
		return nil, err
	}
	return &pool, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse numeric %q: %w", s, err)
	}
	return d, nil
}
