package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/campuspay-ledger/internal/domain/shared"
	"github.com/panjf2000/ants/v2"
)

// WorkerPoolNotificationService fans receipt deliveries out over a bounded
// worker pool so a slow webhook endpoint cannot stall the Kafka consumer
// beyond the pool size.
type WorkerPoolNotificationService struct {
	baseService NotificationService
	pool        *ants.Pool
	logger      *slog.Logger
	// Protects the in-flight results map
	mu      sync.Mutex
	results map[string]chan error
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolNotificationService(
	baseService NotificationService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolNotificationService, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolNotificationService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
		results:     make(map[string]chan error),
	}, nil
}

// Notify submits a receipt event to the worker pool and waits for the
// delivery result.
func (s *WorkerPoolNotificationService) Notify(ctx context.Context, event *shared.ReceiptEvent) error {
	logger := s.logger
	if event.CorrelationID != "" {
		logger = s.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Submitting receipt event to worker pool",
		"transaction_id", event.TransactionID.String(),
		"card_id", event.CardID,
	)

	resultChan := make(chan error, 1)

	transactionID := event.TransactionID.String()
	s.mu.Lock()
	s.results[transactionID] = resultChan
	s.mu.Unlock()

	// Copy the event so the worker never races the caller
	eventCopy := *event

	err := s.pool.Submit(func() {
		err := s.baseService.Notify(ctx, &eventCopy)

		resultChan <- err

		s.mu.Lock()
		delete(s.results, transactionID)
		close(resultChan)
		s.mu.Unlock()
	})

	if err != nil {
		s.mu.Lock()
		delete(s.results, transactionID)
		close(resultChan)
		s.mu.Unlock()

		logger.Error("Failed to submit receipt event to worker pool",
			"transaction_id", event.TransactionID.String(),
			"error", err,
		)
		return err
	}

	return <-resultChan
}

// Shutdown gracefully shuts down the worker pool.
func (s *WorkerPoolNotificationService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool.
func (s *WorkerPoolNotificationService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *WorkerPoolNotificationService) Capacity() int {
	return s.pool.Cap()
}
