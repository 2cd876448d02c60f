package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/campuspay-ledger/internal/config"
	"github.com/segmentio/kafka-go"
)

// ReceiptEventProducer publishes receipt events emitted after a committed
// balance change. Delivery is best effort: the ledger write has already
// committed by the time a receipt is published, so a lost receipt never
// loses money.
type ReceiptEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// NewReceiptEventProducer creates the kiosk-side producer and ensures the
// receipt topic exists.
func NewReceiptEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*ReceiptEventProducer, error) {
	if cfg.ReceiptTopic == "" {
		return nil, fmt.Errorf("kafka receipt topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for receipt producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.ReceiptTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure receipt topic %s exists: %w", cfg.ReceiptTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.ReceiptTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true, // Receipts are fire-and-forget; don't block the tap path
		WriteTimeout: cfg.MaxWait,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to write receipt events asynchronously", "topic", cfg.ReceiptTopic, "error", err, "count", len(messages))
			} else {
				logger.Debug("Successfully wrote receipt events asynchronously", "topic", cfg.ReceiptTopic, "count", len(messages))
			}
		},
	}

	return &ReceiptEventProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.ReceiptTopic,
	}, nil
}

// Publish serializes the value as JSON and writes it keyed by card ID so
// events for one card stay ordered within a partition.
func (p *ReceiptEventProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal receipt event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish receipt event",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish receipt event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published receipt event",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *ReceiptEventProducer) Close() error {
	p.logger.Info("Closing receipt event producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close receipt kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
