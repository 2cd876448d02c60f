package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/campuspay-ledger/internal/domain/ledger"
	"github.com/campuspay-ledger/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// LedgerRepository implements the ledger.Repository interface for PostgreSQL.
// Records live in the same database as account balances so a record append
// and its balance write share one transaction.
type LedgerRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewLedgerRepository creates a new PostgreSQL ledger repository
func NewLedgerRepository(logger *slog.Logger, db *persistence.PostgresDB) ledger.Repository {
	return &LedgerRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction so record appends join the
// caller's atomic unit.
func (r *LedgerRepository) WithTx(tx pgx.Tx) ledger.Repository {
	return &LedgerRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Append stores a new transaction record. The database assigns the serial
// id, which fixes the record's position in the audit order.
func (r *LedgerRepository) Append(ctx context.Context, record *ledger.Record) error {
	query := `
		INSERT INTO transactions (transaction_id, card_id, kind, amount, correlation_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		record.TransactionID,
		record.CardID,
		record.Kind,
		record.Amount,
		record.CorrelationID,
		record.CreatedAt,
	).Scan(&record.ID)
	if err != nil {
		r.logger.Error("Failed to append transaction record",
			"transaction_id", record.TransactionID.String(),
			"card_id", record.CardID,
			"error", err,
		)
		return fmt.Errorf("failed to append transaction record: %w", err)
	}

	return nil
}

// GetByTransactionID retrieves a record by its transaction ID
func (r *LedgerRepository) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*ledger.Record, error) {
	query := `
		SELECT id, transaction_id, card_id, kind, amount, correlation_id, created_at
		FROM transactions
		WHERE transaction_id = $1
	`

	var record ledger.Record
	err := r.querier.QueryRow(ctx, query, transactionID).Scan(
		&record.ID,
		&record.TransactionID,
		&record.CardID,
		&record.Kind,
		&record.Amount,
		&record.CorrelationID,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ledger.ErrRecordNotFound{TransactionID: transactionID}
		}
		r.logger.Error("Failed to get transaction record", "transaction_id", transactionID.String(), "error", err)
		return nil, fmt.Errorf("failed to get transaction record: %w", err)
	}

	return &record, nil
}

// RecentByCardID retrieves the newest records for a card, newest first.
// Ordering by serial id follows commit order even when clock timestamps tie.
func (r *LedgerRepository) RecentByCardID(ctx context.Context, cardID string, limit int) ([]*ledger.Record, error) {
	query := `
		SELECT id, transaction_id, card_id, kind, amount, correlation_id, created_at
		FROM transactions
		WHERE card_id = $1
		ORDER BY id DESC
		LIMIT $2
	`

	rows, err := r.querier.Query(ctx, query, cardID, limit)
	if err != nil {
		r.logger.Error("Failed to get recent transaction records", "card_id", cardID, "error", err)
		return nil, fmt.Errorf("failed to get recent transaction records: %w", err)
	}
	defer rows.Close()

	var records []*ledger.Record
	for rows.Next() {
		var record ledger.Record
		err := rows.Scan(
			&record.ID,
			&record.TransactionID,
			&record.CardID,
			&record.Kind,
			&record.Amount,
			&record.CorrelationID,
			&record.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to scan transaction record", "error", err)
			return nil, fmt.Errorf("failed to scan transaction record: %w", err)
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over transaction records", "error", err)
		return nil, fmt.Errorf("error iterating over transaction records: %w", err)
	}

	return records, nil
}

// CountByCardID counts the total number of records for a card
func (r *LedgerRepository) CountByCardID(ctx context.Context, cardID string) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM transactions
		WHERE card_id = $1
	`

	var count int64
	if err := r.querier.QueryRow(ctx, query, cardID).Scan(&count); err != nil {
		r.logger.Error("Failed to count transaction records", "card_id", cardID, "error", err)
		return 0, fmt.Errorf("failed to count transaction records: %w", err)
	}

	return count, nil
}
