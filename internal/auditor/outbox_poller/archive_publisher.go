package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/campuspay-ledger/internal/domain/ledger"
	"github.com/campuspay-ledger/internal/domain/outbox"
	"github.com/campuspay-ledger/internal/domain/shared"
)

// ArchivePublisher copies outbox messages into the audit archive
type ArchivePublisher interface {
	PublishToArchive(ctx context.Context, message *outbox.Message) error
}

// ArchivePublisherImpl implements ArchivePublisher
type ArchivePublisherImpl struct {
	outboxRepo  outbox.Repository
	archiveRepo ledger.ArchiveRepository
	logger      *slog.Logger
}

// NewArchivePublisher creates a new publisher
func NewArchivePublisher(
	outboxRepo outbox.Repository,
	archiveRepo ledger.ArchiveRepository,
	logger *slog.Logger,
) ArchivePublisher {
	return &ArchivePublisherImpl{
		outboxRepo:  outboxRepo,
		archiveRepo: archiveRepo,
		logger:      logger,
	}
}

// PublishToArchive writes the transaction record carried by the outbox
// message into the archive and marks the message processed. The archive
// write is an upsert keyed by transaction ID, so redelivery after a crash
// between the two steps is harmless.
func (p *ArchivePublisherImpl) PublishToArchive(ctx context.Context, message *outbox.Message) error {
	record, err := message.GetRecord()
	if err != nil {
		p.logger.Error("Failed to unmarshal transaction record from outbox payload",
			"outbox_id", message.ID, "transaction_id", message.TransactionID, "error", err,
		)
		// A payload that never unmarshals will never succeed; park it for
		// manual inspection instead of retrying forever.
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after unmarshal error", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("unmarshal payload for outbox %d failed: %w", message.ID, err)
	}

	logger := p.logger
	if record.CorrelationID != "" {
		logger = p.logger.With("correlation_id", record.CorrelationID)
	}

	if err := p.archiveRepo.Archive(ctx, record); err != nil {
		logger.Error("Failed to archive transaction record",
			"outbox_id", message.ID, "transaction_id", message.TransactionID, "error", err,
		)
		return fmt.Errorf("failed to archive record %s: %w", message.TransactionID, err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID, "transaction_id", message.TransactionID, "error", err,
		)
		return fmt.Errorf("archive write for %s OK, but failed to mark outbox %d as PROCESSED: %w", message.TransactionID, message.ID, err)
	}

	logger.Info("Outbox message archived and marked as PROCESSED", "outbox_id", message.ID, "transaction_id", message.TransactionID)
	return nil
}
