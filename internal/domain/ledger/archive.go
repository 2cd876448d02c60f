package ledger

import "context"

// ArchiveRepository defines the interface for the read-optimized archive of
// transaction records. The archive is fed asynchronously from the outbox and
// serves dashboard feeds; it is eventually consistent with the ledger.
type ArchiveRepository interface {
	// Archive stores a record in the archive. Archiving the same record
	// twice is a no-op, so outbox redelivery is safe.
	Archive(ctx context.Context, record *Record) error

	// ListRecent retrieves archived records across all cards, newest first.
	ListRecent(ctx context.Context, limit, offset int) ([]*Record, error)

	// ListByCardID retrieves archived records for one card, newest first.
	ListByCardID(ctx context.Context, cardID string, limit, offset int) ([]*Record, error)

	// CountAll counts every archived record.
	CountAll(ctx context.Context) (int64, error)

	// CountByCardID counts archived records for one card.
	CountByCardID(ctx context.Context, cardID string) (int64, error)
}
