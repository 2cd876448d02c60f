package ledger

import (
	"time"

	"github.com/campuspay-ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// Record is an append-only audit entry for an attempted balance mutation.
// Records are immutable once written; they are never rewritten when the
// account is later blocked, unblocked, or credited.
type Record struct {
	ID            int64             `json:"id" bson:"id"` // Commit order within the log
	TransactionID uuid.UUID         `json:"transaction_id" bson:"transaction_id"`
	CardID        string            `json:"card_id" bson:"card_id"`
	Kind          shared.RecordKind `json:"kind" bson:"kind"`
	Amount        int64             `json:"amount" bson:"amount"` // Positive magnitude, minor units
	CorrelationID string            `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	CreatedAt     time.Time         `json:"created_at" bson:"created_at"` // Assigned at commit
}

// NewRecord builds a record for an attempt on the given card. The amount is
// always the requested magnitude, including for failed attempts, so the
// audit trail captures attempted overspend.
func NewRecord(cardID string, kind shared.RecordKind, amount int64, correlationID string) *Record {
	return &Record{
		TransactionID: uuid.New(),
		CardID:        cardID,
		Kind:          kind,
		Amount:        amount,
		CorrelationID: correlationID,
		CreatedAt:     time.Now().UTC(),
	}
}
