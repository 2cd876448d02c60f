// Package service holds the kiosk-side application services: the ledger
// engine that mutates balances, and the read service that feeds dashboards
// from the archive.
package service

import (
	"context"

	"github.com/campuspay-ledger/internal/domain/account"
	"github.com/campuspay-ledger/internal/domain/ledger"
)

// TapResult carries the outcome of a committed balance operation back to
// the HTTP boundary.
type TapResult struct {
	Record     *ledger.Record
	NewBalance int64
}

// LedgerService defines balance mutations and card lifecycle operations.
// Every mutation commits its balance change and its transaction record in
// one atomic unit.
type LedgerService interface {
	// Debit charges the card. Blocked and insufficient-funds attempts are
	// refused but still recorded in the transaction log.
	Debit(ctx context.Context, cardID string, amount int64, correlationID string) (*TapResult, error)

	// Credit tops up the card. Credits are accepted on blocked cards.
	Credit(ctx context.Context, cardID string, amount int64, correlationID string) (*TapResult, error)

	// SetBlocked flips the card's blocked flag. Setting the current state
	// again succeeds without effect.
	SetBlocked(ctx context.Context, cardID string, blocked bool) error

	// Enroll provisions a new account with a hashed PIN.
	Enroll(ctx context.Context, cardID, loginID, displayName, pin string, initialBalance int64, photo string) (*account.Account, error)

	// VerifyCard looks up the account a reader just presented.
	VerifyCard(ctx context.Context, cardID string) (*account.Account, error)

	// VerifyPIN authenticates a login ID and PIN pair.
	// Returns account.ErrInvalidCredentials on any mismatch.
	VerifyPIN(ctx context.Context, loginID, pin string) (*account.Account, error)

	// RecentActivity returns the newest transaction records for a card.
	RecentActivity(ctx context.Context, cardID string, limit int) ([]*ledger.Record, error)
}

// ActivityService serves dashboard reads from the eventually consistent
// archive.
type ActivityService interface {
	// ListRecent returns a page of records across all cards with the total count.
	ListRecent(ctx context.Context, page, perPage int) ([]*ledger.Record, int64, error)

	// ListByCardID returns a page of records for one card with the total count.
	ListByCardID(ctx context.Context, cardID string, page, perPage int) ([]*ledger.Record, int64, error)
}
