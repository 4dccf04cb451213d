package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PoolTransactionType represents the kind of pool mutation recorded
type PoolTransactionType string

const (
	PoolTransactionBuy   PoolTransactionType = "buy"
	PoolTransactionSell  PoolTransactionType = "sell"
	PoolTransactionBurn  PoolTransactionType = "burn"
	PoolTransactionMint  PoolTransactionType = "mint"
	PoolTransactionSpend PoolTransactionType = "spend"
)

// GenesisHash is the previous hash of the first record in the chain
const GenesisHash = "0000000000000000000000000000000000000000000000000000000000000000"

// PoolTransaction is an immutable audit entry. Deltas are seen from the pool's side.
type PoolTransaction struct {
	ID          uuid.UUID           `db:"id"`
	Seq         int64               `db:"seq"`
	PoolName    string              `db:"pool_name"`
	Type        PoolTransactionType `db:"transaction_type"`
	HardDelta   decimal.Decimal     `db:"hard_delta"`
	SoftDelta   int64               `db:"soft_delta"`
	UserID      int64               `db:"user_id"`
	Description string              `db:"description"`
	PrevHash    string              `db:"prev_hash"`
	Hash        string              `db:"hash"`
	CreatedAt   time.Time           `db:"created_at"`
}

// ComputeHash hashes the record contents together with PrevHash.
// CreatedAt is hashed at microsecond precision, which is what PostgreSQL stores.
func (t *PoolTransaction) ComputeHash() string {
	h := sha256.New()
	fmt.Fprintf(h, "%d|%s|%s|%s|%s|%d|%d|%s|%s|%s",
		t.Seq,
		t.ID.String(),
		t.PoolName,
		t.Type,
		t.HardDelta.StringFixed(4),
		t.SoftDelta,
		t.UserID,
		t.Description,
		t.CreatedAt.UTC().Truncate(time.Microsecond).Format(time.RFC3339Nano),
		t.PrevHash,
	)
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyChain checks that records, ordered by Seq, link to each other and
// that every stored hash matches its contents.
func VerifyChain(records []*PoolTransaction) error {
	for i, rec := range records {
		if i > 0 {
			prev := records[i-1]
			if rec.Seq != prev.Seq+1 {
				return fmt.Errorf("sequence gap between %d and %d", prev.Seq, rec.Seq)
			}
			if rec.PrevHash != prev.Hash {
				return fmt.Errorf("record %d does not link to record %d", rec.Seq, prev.Seq)
			}
		}
		if rec.ComputeHash() != rec.Hash {
			return fmt.Errorf("record %d hash mismatch", rec.Seq)
		}
	}
	return nil
}
