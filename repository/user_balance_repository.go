package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ryabank/database"
	"ryabank/economy"
	"ryabank/models"
	"ryabank/service"

	"github.com/jackc/pgx/v5"
)

const userBalanceColumns = `
	user_id, soft_balance, hard_balance::text,
	energy_current, energy_max, energy_last_updated,
	experience, level,
	total_soft_earned, total_soft_spent,
	total_hard_bought::text, total_hard_sold::text,
	total_soft_purchased, created_at, updated_at`

// UserBalanceRepository implements the UserBalanceRepository interface
type UserBalanceRepository struct {
	q queryable
}

// NewUserBalanceRepository creates a new user balance repository
func NewUserBalanceRepository(db *database.DB) service.UserBalanceRepository {
	return &UserBalanceRepository{q: db.Pool}
}

// newUserBalanceRepositoryWithTx creates a new user balance repository with a transaction
func newUserBalanceRepositoryWithTx(tx queryable) *UserBalanceRepository {
	return &UserBalanceRepository{q: tx}
}

// GetByUserID retrieves a balance, or nil if the user has no account
func (r *UserBalanceRepository) GetByUserID(ctx context.Context, userID int64) (*models.UserBalance, error) {
	query := `SELECT ` + userBalanceColumns + ` FROM user_balances WHERE user_id = $1`
	balance, err := scanUserBalance(r.q.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get balance for user %d: %w", userID, classify(err))
	}
	return balance, nil
}

// GetByUserIDForUpdate retrieves and locks a balance row
func (r *UserBalanceRepository) GetByUserIDForUpdate(ctx context.Context, userID int64) (*models.UserBalance, error) {
	query := `SELECT ` + userBalanceColumns + ` FROM user_balances WHERE user_id = $1 FOR UPDATE`
	balance, err := scanUserBalance(r.q.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to lock balance for user %d: %w", userID, classify(err))
	}
	return balance, nil
}

// Create inserts a new balance. It returns nil, nil if the user already exists.
func (r *UserBalanceRepository) Create(ctx context.Context, balance *models.UserBalance) (*models.UserBalance, error) {
	query := `
		INSERT INTO user_balances (
			user_id, soft_balance, hard_balance,
			energy_current, energy_max, energy_last_updated,
			experience, level
		)
		VALUES ($1, $2, $3::numeric, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING ` + userBalanceColumns

	created, err := scanUserBalance(r.q.QueryRow(ctx, query,
		balance.UserID,
		balance.SoftBalance,
		balance.HardBalance.String(),
		balance.EnergyCurrent,
		balance.EnergyMax,
		balance.EnergyLastUpdated,
		balance.Experience,
		balance.Level,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create balance for user %d: %w", balance.UserID, classify(err))
	}
	return created, nil
}

// Update writes the non-nil fields of update
func (r *UserBalanceRepository) Update(ctx context.Context, userID int64, update models.BalanceUpdate) error {
	if update.IsEmpty() {
		return nil
	}

	var (
		sets []string
		args = []any{userID}
	)
	add := func(column string, value any, cast string) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d%s", column, len(args), cast))
	}

	if update.SoftBalance != nil {
		add("soft_balance", *update.SoftBalance, "")
	}
	if update.HardBalance != nil {
		add("hard_balance", update.HardBalance.String(), "::numeric")
	}
	if update.EnergyCurrent != nil {
		add("energy_current", *update.EnergyCurrent, "")
	}
	if update.EnergyMax != nil {
		add("energy_max", *update.EnergyMax, "")
	}
	if update.EnergyLastUpdated != nil {
		add("energy_last_updated", *update.EnergyLastUpdated, "")
	}
	if update.TotalSoftEarned != nil {
		add("total_soft_earned", *update.TotalSoftEarned, "")
	}
	if update.TotalSoftSpent != nil {
		add("total_soft_spent", *update.TotalSoftSpent, "")
	}
	if update.TotalHardBought != nil {
		add("total_hard_bought", update.TotalHardBought.String(), "::numeric")
	}
	if update.TotalHardSold != nil {
		add("total_hard_sold", update.TotalHardSold.String(), "::numeric")
	}
	if update.TotalSoftPurchased != nil {
		add("total_soft_purchased", *update.TotalSoftPurchased, "")
	}

	query := fmt.Sprintf(`UPDATE user_balances SET %s, updated_at = NOW() WHERE user_id = $1`, strings.Join(sets, ", "))

	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update balance for user %d: %w", userID, classify(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %d", economy.ErrUserNotFound, userID)
	}
	return nil
}

// scanUserBalance returns nil, nil when the row does not exist
func scanUserBalance(row pgx.Row) (*models.UserBalance, error) {
	var (
		b                  models.UserBalance
		hard, bought, sold string
	)
	err := row.Scan(
		&b.UserID,
		&b.SoftBalance,
		&hard,
		&b.EnergyCurrent,
		&b.EnergyMax,
		&b.EnergyLastUpdated,
		&b.Experience,
		&b.Level,
		&b.TotalSoftEarned,
		&b.TotalSoftSpent,
		&bought,
		&sold,
		&b.TotalSoftPurchased,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if b.HardBalance, err = parseDecimal(hard); err != nil {
		return nil, err
	}
	if b.TotalHardBought, err = parseDecimal(bought); err != nil {
		return nil, err
	}
	if b.TotalHardSold, err = parseDecimal(sold); err != nil {
		return nil, err
	}
	return &b, nil
}
