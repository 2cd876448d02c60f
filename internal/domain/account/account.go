package account

import (
	"errors"
	"strings"
	"time"
)

// Common errors
var (
	ErrInsufficientFunds = errors.New("insufficient funds for debit")
	ErrCardBlocked       = errors.New("card is blocked")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrEmptyCardID       = errors.New("card id cannot be empty")
	ErrEmptyLoginID      = errors.New("login id cannot be empty")
	ErrEmptyDisplayName  = errors.New("display name cannot be empty")

	// ErrInvalidCredentials deliberately covers both an unknown login and a
	// wrong PIN so the response never reveals which one failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Account represents a stored-value campus card account
type Account struct {
	CardID      string    `json:"card_id"`  // Hardware identifier presented at the reader
	LoginID     string    `json:"login_id"` // Human-facing credential identity
	DisplayName string    `json:"display_name"`
	Balance     int64     `json:"balance"` // Stored in minor units
	Blocked     bool      `json:"blocked"`
	PINHash     string    `json:"-"`
	Photo       string    `json:"photo,omitempty"`
	Version     int       `json:"version"` // For optimistic locking
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NormalizeCardID canonicalizes a card identifier read from a reader or
// request body. Readers report the same tag with varying case and padding.
func NormalizeCardID(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// NewAccount creates a new unblocked account with the given parameters
func NewAccount(cardID, loginID, displayName string, initialBalance int64, pinHash string) (*Account, error) {
	cardID = NormalizeCardID(cardID)
	loginID = strings.TrimSpace(loginID)

	if cardID == "" {
		return nil, ErrEmptyCardID
	}
	if loginID == "" {
		return nil, ErrEmptyLoginID
	}
	if displayName == "" {
		return nil, ErrEmptyDisplayName
	}
	if initialBalance < 0 {
		return nil, ErrInvalidAmount
	}

	now := time.Now()
	return &Account{
		CardID:      cardID,
		LoginID:     loginID,
		DisplayName: displayName,
		Balance:     initialBalance,
		Blocked:     false,
		PINHash:     pinHash,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Credit adds the specified amount to the account balance. Top-ups are
// permitted on blocked accounts; the block only refuses debits.
func (a *Account) Credit(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	a.Balance += amount
	a.UpdatedAt = time.Now()
	a.Version++
	return nil
}

// Debit subtracts the specified amount from the account balance.
// The blocked check runs before the funds check so a blocked card never
// leaks balance information through the error it gets back.
func (a *Account) Debit(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if a.Blocked {
		return ErrCardBlocked
	}
	if a.Balance < amount {
		return ErrInsufficientFunds
	}

	a.Balance -= amount
	a.UpdatedAt = time.Now()
	a.Version++
	return nil
}

// CanDebit checks if the account admits a debit of the given amount
func (a *Account) CanDebit(amount int64) bool {
	return !a.Blocked && a.Balance >= amount
}
