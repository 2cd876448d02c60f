package account

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Repository defines account persistence operations
type Repository interface {
	Insert(ctx context.Context, account *Account) error
	GetByCardID(ctx context.Context, cardID string) (*Account, error)
	GetByLoginID(ctx context.Context, loginID string) (*Account, error)
	Update(ctx context.Context, account *Account) error
	SetBlocked(ctx context.Context, cardID string, blocked bool) error

	// LockForUpdate acquires a pessimistic row lock for the balance
	// read-check-write sequence. Must run inside a transaction.
	LockForUpdate(ctx context.Context, cardID string) (*Account, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrAccountNotFound indicates missing account
type ErrAccountNotFound struct {
	CardID string
}

func (e ErrAccountNotFound) Error() string {
	return "account not found: " + e.CardID
}

// Is matches any ErrAccountNotFound when the target carries no card ID
func (e ErrAccountNotFound) Is(target error) bool {
	t, ok := target.(ErrAccountNotFound)
	if !ok {
		return false
	}
	if t.CardID == "" {
		return true
	}
	return e.CardID == t.CardID
}

// ErrDuplicateAccount indicates a card ID or login ID uniqueness violation
type ErrDuplicateAccount struct {
	Key string
}

func (e ErrDuplicateAccount) Error() string {
	return "account already exists: " + e.Key
}

// Is matches any ErrDuplicateAccount when the target carries no key
func (e ErrDuplicateAccount) Is(target error) bool {
	t, ok := target.(ErrDuplicateAccount)
	if !ok {
		return false
	}
	if t.Key == "" {
		return true
	}
	return e.Key == t.Key
}

// ErrConcurrentModification indicates optimistic lock failure
type ErrConcurrentModification struct {
	CardID string
}

func (e ErrConcurrentModification) Error() string {
	return "concurrent modification detected for account: " + e.CardID
}
