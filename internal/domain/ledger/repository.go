package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository manages transaction record persistence. Append must never
// silently fail: when it errors inside a transaction the whole unit is
// rolled back, so no balance change commits without its record.
type Repository interface {
	Append(ctx context.Context, record *Record) error
	GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*Record, error)

	// RecentByCardID returns records for a card ordered newest first.
	RecentByCardID(ctx context.Context, cardID string, limit int) ([]*Record, error)
	CountByCardID(ctx context.Context, cardID string) (int64, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrRecordNotFound indicates missing transaction record
type ErrRecordNotFound struct {
	TransactionID uuid.UUID
}

func (e ErrRecordNotFound) Error() string {
	return "transaction record not found: " + e.TransactionID.String()
}

// Is matches any ErrRecordNotFound when the target carries a nil ID
func (e ErrRecordNotFound) Is(target error) bool {
	t, ok := target.(ErrRecordNotFound)
	if !ok {
		return false
	}
	if t.TransactionID == uuid.Nil {
		return true
	}
	return e.TransactionID == t.TransactionID
}
