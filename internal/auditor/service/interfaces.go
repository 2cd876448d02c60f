package service

import (
	"context"

	"github.com/campuspay-ledger/internal/domain/shared"
)

// NotificationService delivers receipt events to the notification gateway.
type NotificationService interface {
	Notify(ctx context.Context, event *shared.ReceiptEvent) error
}
