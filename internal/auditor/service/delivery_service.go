package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/campuspay-ledger/internal/config"
	"github.com/campuspay-ledger/internal/domain/shared"
)

// WebhookDeliveryService posts receipt events to the configured gateway
// endpoint as JSON. A non-2xx response is a delivery failure; the caller
// decides whether to retry or dead-letter.
type WebhookDeliveryService struct {
	client     *http.Client
	webhookURL string
	logger     *slog.Logger
}

func NewWebhookDeliveryService(logger *slog.Logger, cfg *config.NotifyConfig) *WebhookDeliveryService {
	return &WebhookDeliveryService{
		client:     &http.Client{Timeout: cfg.Timeout},
		webhookURL: cfg.WebhookURL,
		logger:     logger,
	}
}

// Notify delivers a single receipt event to the webhook endpoint.
func (s *WebhookDeliveryService) Notify(ctx context.Context, event *shared.ReceiptEvent) error {
	logger := s.logger
	if event.CorrelationID != "" {
		logger = s.logger.With("correlation_id", event.CorrelationID)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal receipt event %s: %w", event.TransactionID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if event.CorrelationID != "" {
		req.Header.Set("X-Correlation-ID", event.CorrelationID)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		logger.Error("Webhook delivery failed",
			"transaction_id", event.TransactionID.String(),
			"card_id", event.CardID,
			"error", err,
		)
		return fmt.Errorf("webhook delivery for %s failed: %w", event.TransactionID, err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Error("Webhook endpoint rejected receipt event",
			"transaction_id", event.TransactionID.String(),
			"status", resp.StatusCode,
		)
		return fmt.Errorf("webhook endpoint returned status %d for %s", resp.StatusCode, event.TransactionID)
	}

	logger.Info("Receipt event delivered",
		"transaction_id", event.TransactionID.String(),
		"card_id", event.CardID,
		"kind", event.Kind,
	)
	return nil
}
