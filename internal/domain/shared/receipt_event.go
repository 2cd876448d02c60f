package shared

import (
	"time"

	"github.com/google/uuid"
)

// ReceiptEvent defines a Kafka message emitted after a committed balance
// mutation. Delivery is best-effort: the ledger never blocks or fails on it.
type ReceiptEvent struct {
	TransactionID uuid.UUID  `json:"transaction_id"`
	CardID        string     `json:"card_id"`
	Kind          RecordKind `json:"kind"`
	Amount        int64      `json:"amount"` // Stored in minor units
	NewBalance    int64      `json:"new_balance"`
	CorrelationID string     `json:"correlation_id,omitempty"`
	Timestamp     time.Time  `json:"timestamp"`
}
