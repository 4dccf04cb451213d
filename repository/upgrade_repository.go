package repository

import (
	"context"
	"errors"
	"fmt"

	"ryabank/database"
	"ryabank/models"
	"ryabank/service"

	"github.com/jackc/pgx/v5"
)

// UpgradeRepository implements the UpgradeRepository interface
type UpgradeRepository struct {
	q queryable
}

// NewUpgradeRepository creates a new upgrade repository
func NewUpgradeRepository(db *database.DB) service.UpgradeRepository {
	return &UpgradeRepository{q: db.Pool}
}

// newUpgradeRepositoryWithTx creates a new upgrade repository with a transaction
func newUpgradeRepositoryWithTx(tx queryable) *UpgradeRepository {
	return &UpgradeRepository{q: tx}
}

// GetLevel returns the user's level for an upgrade track, 0 if never bought.
// The row is locked so a concurrent purchase of the same track waits.
func (r *UpgradeRepository) GetLevel(ctx context.Context, userID int64, upgradeType models.UpgradeType) (int, error) {
	query := `
		SELECT level FROM user_upgrades
		WHERE user_id = $1 AND upgrade_type = $2
		FOR UPDATE
	`
	var level int
	err := r.q.QueryRow(ctx, query, userID, string(upgradeType)).Scan(&level)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get %s level for user %d: %w", upgradeType, userID, classify(err))
	}
	return level, nil
}

// GetAllByUser returns every upgrade track the user has bought
func (r *UpgradeRepository) GetAllByUser(ctx context.Context, userID int64) ([]*models.UpgradeLevel, error) {
	query := `
		SELECT user_id, upgrade_type, level, updated_at
		FROM user_upgrades
		WHERE user_id = $1
		ORDER BY upgrade_type
	`
	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get upgrades for user %d: %w", userID, classify(err))
	}
	defer rows.Close()

	var levels []*models.UpgradeLevel
	for rows.Next() {
		var (
			level       models.UpgradeLevel
			upgradeType string
		)
		if err := rows.Scan(&level.UserID, &upgradeType, &level.Level, &level.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan upgrade level: %w", err)
		}
		level.UpgradeType = models.UpgradeType(upgradeType)
		levels = append(levels, &level)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate upgrade levels: %w", classify(err))
	}
	return levels, nil
}

// SetLevel stores the user's level for an upgrade track
func (r *UpgradeRepository) SetLevel(ctx context.Context, userID int64, upgradeType models.UpgradeType, level int) error {
	query := `
		INSERT INTO user_upgrades (user_id, upgrade_type, level, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, upgrade_type) DO UPDATE
		SET level = EXCLUDED.level,
		    updated_at = NOW()
	`
	if _, err := r.q.Exec(ctx, query, userID, string(upgradeType), level); err != nil {
		return fmt.Errorf("failed to set %s level for user %d: %w", upgradeType, userID, classify(err))
	}
	return nil
}
