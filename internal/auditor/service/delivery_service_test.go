package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"log/slog"

	"github.com/campuspay-ledger/internal/config"
	"github.com/campuspay-ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReceiptEvent() *shared.ReceiptEvent {
	return &shared.ReceiptEvent{
		TransactionID: uuid.New(),
		CardID:        "CARD001",
		Kind:          shared.RecordKindDebitSuccess,
		Amount:        150,
		NewBalance:    350,
		CorrelationID: "corr-1",
		Timestamp:     time.Now().UTC(),
	}
}

func TestWebhookDeliveryService_Notify(t *testing.T) {
	event := testReceiptEvent()

	var received shared.ReceiptEvent
	var receivedCorrelationID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		receivedCorrelationID = r.Header.Get("X-Correlation-ID")

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &received))

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc := NewWebhookDeliveryService(slog.Default(), &config.NotifyConfig{
		WebhookURL: server.URL,
		Timeout:    time.Second,
	})

	err := svc.Notify(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, event.TransactionID, received.TransactionID)
	assert.Equal(t, event.CardID, received.CardID)
	assert.Equal(t, event.Kind, received.Kind)
	assert.Equal(t, event.NewBalance, received.NewBalance)
	assert.Equal(t, "corr-1", receivedCorrelationID)
}

func TestWebhookDeliveryService_Notify_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	svc := NewWebhookDeliveryService(slog.Default(), &config.NotifyConfig{
		WebhookURL: server.URL,
		Timeout:    time.Second,
	})

	err := svc.Notify(context.Background(), testReceiptEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestWebhookDeliveryService_Notify_EndpointUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	svc := NewWebhookDeliveryService(slog.Default(), &config.NotifyConfig{
		WebhookURL: server.URL,
		Timeout:    time.Second,
	})

	err := svc.Notify(context.Background(), testReceiptEvent())
	assert.Error(t, err)
}

func TestWebhookDeliveryService_Notify_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	svc := NewWebhookDeliveryService(slog.Default(), &config.NotifyConfig{
		WebhookURL: server.URL,
		Timeout:    20 * time.Millisecond,
	})

	err := svc.Notify(context.Background(), testReceiptEvent())
	assert.Error(t, err)
}
