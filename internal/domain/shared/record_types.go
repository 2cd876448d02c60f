package shared

// RecordKind defines the audit classification of a transaction record
type RecordKind string

const (
	RecordKindDebitSuccess      RecordKind = "debit_success"
	RecordKindDebitInsufficient RecordKind = "debit_failed_insufficient"
	RecordKindDebitBlocked      RecordKind = "debit_failed_blocked"
	RecordKindCredit            RecordKind = "credit"
)

// IsBalanceEffective reports whether records of this kind are paired with a
// balance change in the same atomic unit. Failed-debit records capture the
// attempt only.
func (k RecordKind) IsBalanceEffective() bool {
	return k == RecordKindDebitSuccess || k == RecordKindCredit
}

// ReasonCode defines failure reason codes surfaced to the HTTP boundary
type ReasonCode string

const (
	ReasonNotFound           ReasonCode = "not_found"
	ReasonBlocked            ReasonCode = "blocked"
	ReasonInsufficientFunds  ReasonCode = "insufficient_funds"
	ReasonDuplicateAccount   ReasonCode = "duplicate_account"
	ReasonTooSoon            ReasonCode = "too_soon"
	ReasonInvalidCredentials ReasonCode = "invalid_credentials"
	ReasonInvalidAmount      ReasonCode = "invalid_amount"
)

// OutboxStatus defines archive publishing states for committed records
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)
