package repository

import (
	"context"
	"fmt"

	"ryabank/database"
	"ryabank/models"
	"ryabank/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const transactionColumns = `
	id::text, seq, pool_name, transaction_type, hard_delta::text, soft_delta,
	user_id, description, prev_hash, hash, created_at`

// TransactionRepository implements the TransactionRepository interface.
// Records form a hash chain whose tail lives in audit_chain_head.
type TransactionRepository struct {
	q queryable
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *database.DB) service.TransactionRepository {
	return &TransactionRepository{q: db.Pool}
}

// newTransactionRepositoryWithTx creates a new transaction repository with a transaction
func newTransactionRepositoryWithTx(tx queryable) *TransactionRepository {
	return &TransactionRepository{q: tx}
}

// Append links tx onto the chain and stores it. It fills Seq, PrevHash and Hash.
// The chain head stays locked until the surrounding transaction ends, so
// Append must run inside one.
func (r *TransactionRepository) Append(ctx context.Context, tx *models.PoolTransaction) error {
	var (
		headSeq  int64
		headHash string
	)
	err := r.q.QueryRow(ctx, `SELECT seq, hash FROM audit_chain_head WHERE id = 1 FOR UPDATE`).
		Scan(&headSeq, &headHash)
	if err != nil {
		return fmt.Errorf("failed to lock audit chain head: %w", classify(err))
	}

	tx.Seq = headSeq + 1
	tx.PrevHash = headHash
	tx.Hash = tx.ComputeHash()

	insert := `
		INSERT INTO pool_transactions
		(id, seq, pool_name, transaction_type, hard_delta, soft_delta, user_id, description, prev_hash, hash, created_at)
		VALUES ($1::uuid, $2, $3, $4, $5::numeric, $6, $7, $8, $9, $10, $11)
	`
	_, err = r.q.Exec(ctx, insert,
		tx.ID.String(),
		tx.Seq,
		tx.PoolName,
		string(tx.Type),
		tx.HardDelta.String(),
		tx.SoftDelta,
		tx.UserID,
		tx.Description,
		tx.PrevHash,
		tx.Hash,
		tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert %s transaction: %w", tx.Type, classify(err))
	}

	if _, err := r.q.Exec(ctx, `UPDATE audit_chain_head SET seq = $1, hash = $2 WHERE id = 1`, tx.Seq, tx.Hash); err != nil {
		return fmt.Errorf("failed to advance audit chain head: %w", classify(err))
	}
	return nil
}

// GetByUser returns a user's most recent records, newest first
func (r *TransactionRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.PoolTransaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM pool_transactions
		WHERE user_id = $1
		ORDER BY seq DESC
		LIMIT $2
	`
	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions for user %d: %w", userID, classify(err))
	}
	return collectTransactions(rows)
}

// GetLatest returns the last limit records of the chain in chain order
func (r *TransactionRepository) GetLatest(ctx context.Context, limit int) ([]*models.PoolTransaction, error) {
	query := `
		SELECT * FROM (
			SELECT ` + transactionColumns + `
			FROM pool_transactions
			ORDER BY seq DESC
			LIMIT $1
		) tail
		ORDER BY seq ASC
	`
	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest transactions: %w", classify(err))
	}
	return collectTransactions(rows)
}

func collectTransactions(rows pgx.Rows) ([]*models.PoolTransaction, error) {
	defer rows.Close()

	var records []*models.PoolTransaction
	for rows.Next() {
		var (
			rec            models.PoolTransaction
			id, txType, hd string
		)
		err := rows.Scan(
			&id,
			&rec.Seq,
			&rec.PoolName,
			&txType,
			&hd,
			&rec.SoftDelta,
			&rec.UserID,
			&rec.Description,
			&rec.PrevHash,
			&rec.Hash,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if rec.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("failed to parse transaction id %q: %w", id, err)
		}
		if rec.HardDelta, err = parseDecimal(hd); err != nil {
			return nil, err
		}
		rec.Type = models.PoolTransactionType(txType)
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", classify(err))
	}
	return records, nil
}
