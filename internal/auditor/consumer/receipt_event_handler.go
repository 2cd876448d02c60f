package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/campuspay-ledger/internal/auditor/service"
	"github.com/campuspay-ledger/internal/domain/shared"
	"github.com/campuspay-ledger/internal/platform/messaging/producers"
)

// ReceiptEventHandler handles incoming receipt event messages from Kafka
type ReceiptEventHandler struct {
	notificationService service.NotificationService
	producer            producers.DeadLetterPublisher
	logger              *slog.Logger
}

// NewReceiptEventHandler creates a new handler
func NewReceiptEventHandler(
	logger *slog.Logger,
	notificationService service.NotificationService,
	producer producers.DeadLetterPublisher,
) *ReceiptEventHandler {
	return &ReceiptEventHandler{
		notificationService: notificationService,
		producer:            producer,
		logger:              logger,
	}
}

// HandleMessage processes Kafka messages
func (h *ReceiptEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var event shared.ReceiptEvent
	if err := json.Unmarshal(value, &event); err != nil {
		unmarshalErrorMsg := "Failed to unmarshal receipt event from Kafka message"
		h.logger.Error(unmarshalErrorMsg,
			"error", err,
			"message_key", string(key),
		)

		// Send to DLQ if available
		if h.producer != nil {
			dlqReason := fmt.Sprintf("%s: %s", unmarshalErrorMsg, err.Error())
			if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				h.logger.Error("Failed to publish message to DLQ after unmarshal error",
					"dlq_error", dlqErr,
					"original_error", err,
					"message_key", string(key),
				)
				// Return original error if DLQ fails
			} else {
				h.logger.Info("Published unprocessable message to DLQ", "message_key", string(key), "reason", dlqReason)
				// Message handled, commit offset
				return nil
			}
		}
		// Allow Kafka retries
		return fmt.Errorf("failed to unmarshal message value: %w", err)
	}

	logger := h.logger
	if event.CorrelationID != "" {
		logger = h.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Received receipt event for delivery",
		"transaction_id", event.TransactionID.String(),
		"card_id", event.CardID,
		"kind", event.Kind,
		"amount", event.Amount,
	)

	if err := h.notificationService.Notify(ctx, &event); err != nil {
		logger.Error("Failed to deliver receipt event",
			"transaction_id", event.TransactionID.String(),
			"card_id", event.CardID,
			"error", err,
		)

		// Delivery is best-effort: park the event instead of blocking the
		// partition on a dead webhook endpoint.
		if h.producer != nil {
			dlqReason := fmt.Sprintf("delivery failed: %s", err.Error())
			if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				logger.Error("Failed to publish undeliverable receipt event to DLQ",
					"dlq_error", dlqErr,
					"original_error", err,
					"transaction_id", event.TransactionID.String(),
				)
			} else {
				logger.Info("Published undeliverable receipt event to DLQ",
					"transaction_id", event.TransactionID.String(), "reason", dlqReason)
				return nil
			}
		}
		return fmt.Errorf("delivery of receipt event %s failed: %w", event.TransactionID.String(), err)
	}

	logger.Info("Receipt event delivered", "transaction_id", event.TransactionID.String())
	return nil // Success, commit offset
}
