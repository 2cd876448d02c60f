// Package postgres provides PostgreSQL implementations of the domain
// repositories. It handles all database operations while maintaining
// transaction safety and proper error handling for the stored-value ledger.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/campuspay-ledger/internal/domain/account"
	"github.com/campuspay-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// AccountRepository implements the account.Repository interface for PostgreSQL
type AccountRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewAccountRepository creates a new PostgreSQL account repository.
// It expects db.Pool() to satisfy persistence.Querier.
func NewAccountRepository(logger *slog.Logger, db *persistence.PostgresDB) account.Repository {
	return &AccountRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing for atomic
// operations across multiple repository calls.
func (r *AccountRepository) WithTx(tx pgx.Tx) account.Repository {
	return &AccountRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Insert stores a new account. A unique-constraint violation on either
// card_id or login_id maps to ErrDuplicateAccount.
func (r *AccountRepository) Insert(ctx context.Context, acc *account.Account) error {
	query := `
		INSERT INTO accounts (card_id, login_id, display_name, balance, blocked, pin_hash, photo, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.querier.Exec(ctx, query,
		acc.CardID,
		acc.LoginID,
		acc.DisplayName,
		acc.Balance,
		acc.Blocked,
		acc.PINHash,
		acc.Photo,
		acc.Version,
		acc.CreatedAt,
		acc.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return account.ErrDuplicateAccount{Key: acc.CardID}
		}
		r.logger.Error("Failed to insert account", "card_id", acc.CardID, "error", err)
		return fmt.Errorf("failed to insert account: %w", err)
	}

	return nil
}

// GetByCardID retrieves an account by its card ID
func (r *AccountRepository) GetByCardID(ctx context.Context, cardID string) (*account.Account, error) {
	query := `
		SELECT card_id, login_id, display_name, balance, blocked, pin_hash, photo, version, created_at, updated_at
		FROM accounts
		WHERE card_id = $1
	`

	return r.scanAccount(ctx, query, cardID)
}

// GetByLoginID retrieves an account by its login ID
func (r *AccountRepository) GetByLoginID(ctx context.Context, loginID string) (*account.Account, error) {
	query := `
		SELECT card_id, login_id, display_name, balance, blocked, pin_hash, photo, version, created_at, updated_at
		FROM accounts
		WHERE login_id = $1
	`

	return r.scanAccount(ctx, query, loginID)
}

func (r *AccountRepository) scanAccount(ctx context.Context, query string, key string) (*account.Account, error) {
	var acc account.Account
	err := r.querier.QueryRow(ctx, query, key).Scan(
		&acc.CardID,
		&acc.LoginID,
		&acc.DisplayName,
		&acc.Balance,
		&acc.Blocked,
		&acc.PINHash,
		&acc.Photo,
		&acc.Version,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{CardID: key}
		}
		r.logger.Error("Failed to get account", "key", key, "error", err)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return &acc, nil
}

// Update persists the account's mutable fields using optimistic locking.
// Returns ErrConcurrentModification if the row changed since it was read.
func (r *AccountRepository) Update(ctx context.Context, acc *account.Account) error {
	query := `
		UPDATE accounts
		SET display_name = $1, balance = $2, blocked = $3, pin_hash = $4, photo = $5, version = $6, updated_at = $7
		WHERE card_id = $8 AND version = $9
	`

	result, err := r.querier.Exec(ctx, query,
		acc.DisplayName,
		acc.Balance,
		acc.Blocked,
		acc.PINHash,
		acc.Photo,
		acc.Version,
		acc.UpdatedAt,
		acc.CardID,
		acc.Version-1, // Check previous version for optimistic locking
	)
	if err != nil {
		r.logger.Error("Failed to update account", "card_id", acc.CardID, "error", err)
		return fmt.Errorf("failed to update account: %w", err)
	}

	if result.RowsAffected() == 0 {
		return account.ErrConcurrentModification{CardID: acc.CardID}
	}

	return nil
}

// SetBlocked flips the blocked flag. The write is idempotent: setting the
// current state again still counts as an affected row.
func (r *AccountRepository) SetBlocked(ctx context.Context, cardID string, blocked bool) error {
	query := `
		UPDATE accounts
		SET blocked = $1, version = version + 1, updated_at = NOW()
		WHERE card_id = $2
	`

	result, err := r.querier.Exec(ctx, query, blocked, cardID)
	if err != nil {
		r.logger.Error("Failed to set blocked flag", "card_id", cardID, "error", err)
		return fmt.Errorf("failed to set blocked flag: %w", err)
	}

	if result.RowsAffected() == 0 {
		return account.ErrAccountNotFound{CardID: cardID}
	}

	return nil
}

// LockForUpdate obtains a pessimistic lock on the account and returns its
// current state. Must be used within a transaction; the lock serializes
// the read-check-write sequence against concurrent debits on the same card.
func (r *AccountRepository) LockForUpdate(ctx context.Context, cardID string) (*account.Account, error) {
	query := `
		SELECT card_id, login_id, display_name, balance, blocked, pin_hash, photo, version, created_at, updated_at
		FROM accounts
		WHERE card_id = $1
		FOR UPDATE
	`

	var acc account.Account
	err := r.querier.QueryRow(ctx, query, cardID).Scan(
		&acc.CardID,
		&acc.LoginID,
		&acc.DisplayName,
		&acc.Balance,
		&acc.Blocked,
		&acc.PINHash,
		&acc.Photo,
		&acc.Version,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{CardID: cardID}
		}
		r.logger.Error("Failed to lock account for update", "card_id", cardID, "error", err)
		return nil, fmt.Errorf("failed to lock account for update: %w", err)
	}

	return &acc, nil
}
