package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/campuspay-ledger/internal/domain/account"
	"github.com/campuspay-ledger/internal/domain/ledger"
	"github.com/campuspay-ledger/internal/domain/outbox"
	"github.com/campuspay-ledger/internal/domain/shared"
	"github.com/campuspay-ledger/internal/platform/messaging/producers"
)

// TxManager abstracts transaction execution for testability
type TxManager interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// LedgerServiceImpl implements the LedgerService interface
type LedgerServiceImpl struct {
	logger      *slog.Logger
	tx          TxManager
	accountRepo account.Repository
	ledgerRepo  ledger.Repository
	outboxRepo  outbox.Repository
	receipts    producers.MessagePublisher // nil when receipts are disabled
}

// NewLedgerService creates a new ledger service
func NewLedgerService(
	logger *slog.Logger,
	tx TxManager,
	accountRepo account.Repository,
	ledgerRepo ledger.Repository,
	outboxRepo outbox.Repository,
	receipts producers.MessagePublisher,
) LedgerService {
	return &LedgerServiceImpl{
		logger:      logger,
		tx:          tx,
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		outboxRepo:  outboxRepo,
		receipts:    receipts,
	}
}

// Debit charges the card inside one transaction: lock the row, apply the
// domain checks, write the new balance and append the record together.
// Refused attempts (blocked card, insufficient funds) commit a failure
// record without touching the balance and surface the domain error.
func (s *LedgerServiceImpl) Debit(ctx context.Context, cardID string, amount int64, correlationID string) (*TapResult, error) {
	cardID = account.NormalizeCardID(cardID)
	if cardID == "" {
		return nil, account.ErrEmptyCardID
	}
	if amount <= 0 {
		return nil, account.ErrInvalidAmount
	}

	logger := s.logger
	if correlationID != "" {
		logger = s.logger.With("correlation_id", correlationID)
	}

	var result *TapResult
	var refusal error // business refusal, committed with a failure record

	err := s.tx.ExecuteTx(ctx, func(tx pgx.Tx) error {
		accountRepoTx := s.accountRepo.WithTx(tx)

		acc, err := accountRepoTx.LockForUpdate(ctx, cardID)
		if err != nil {
			return err
		}

		if debitErr := acc.Debit(amount); debitErr != nil {
			var kind shared.RecordKind
			switch {
			case errors.Is(debitErr, account.ErrCardBlocked):
				kind = shared.RecordKindDebitBlocked
			case errors.Is(debitErr, account.ErrInsufficientFunds):
				kind = shared.RecordKindDebitInsufficient
			default:
				return debitErr
			}

			logger.Warn("Debit refused", "card_id", cardID, "amount", amount, "kind", string(kind))

			record, appendErr := s.appendRecord(ctx, tx, cardID, kind, amount, correlationID)
			if appendErr != nil {
				return appendErr
			}
			result = &TapResult{Record: record, NewBalance: acc.Balance}
			refusal = debitErr
			return nil // commit the failure record
		}

		record, err := s.appendRecord(ctx, tx, cardID, shared.RecordKindDebitSuccess, amount, correlationID)
		if err != nil {
			return err
		}

		if err := accountRepoTx.Update(ctx, acc); err != nil {
			return err
		}

		result = &TapResult{Record: record, NewBalance: acc.Balance}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishReceipt(ctx, result)

	if refusal != nil {
		return result, refusal
	}

	logger.Info("Debit committed",
		"card_id", cardID,
		"amount", amount,
		"new_balance", result.NewBalance,
		"transaction_id", result.Record.TransactionID.String(),
	)
	return result, nil
}

// Credit tops up the card. A blocked card still accepts credits.
func (s *LedgerServiceImpl) Credit(ctx context.Context, cardID string, amount int64, correlationID string) (*TapResult, error) {
	cardID = account.NormalizeCardID(cardID)
	if cardID == "" {
		return nil, account.ErrEmptyCardID
	}
	if amount <= 0 {
		return nil, account.ErrInvalidAmount
	}

	var result *TapResult

	err := s.tx.ExecuteTx(ctx, func(tx pgx.Tx) error {
		accountRepoTx := s.accountRepo.WithTx(tx)

		acc, err := accountRepoTx.LockForUpdate(ctx, cardID)
		if err != nil {
			return err
		}

		if err := acc.Credit(amount); err != nil {
			return err
		}

		record, err := s.appendRecord(ctx, tx, cardID, shared.RecordKindCredit, amount, correlationID)
		if err != nil {
			return err
		}

		if err := accountRepoTx.Update(ctx, acc); err != nil {
			return err
		}

		result = &TapResult{Record: record, NewBalance: acc.Balance}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishReceipt(ctx, result)

	s.logger.Info("Credit committed",
		"card_id", cardID,
		"amount", amount,
		"new_balance", result.NewBalance,
		"transaction_id", result.Record.TransactionID.String(),
	)
	return result, nil
}

// appendRecord writes the transaction record and its outbox message inside
// the caller's transaction, so the log entry and the archive handoff commit
// with the balance change.
func (s *LedgerServiceImpl) appendRecord(ctx context.Context, tx pgx.Tx, cardID string, kind shared.RecordKind, amount int64, correlationID string) (*ledger.Record, error) {
	record := ledger.NewRecord(cardID, kind, amount, correlationID)

	if err := s.ledgerRepo.WithTx(tx).Append(ctx, record); err != nil {
		return nil, err
	}

	message, err := outbox.NewMessage(record)
	if err != nil {
		return nil, fmt.Errorf("failed to build outbox message: %w", err)
	}
	if err := s.outboxRepo.WithTx(tx).Create(ctx, message); err != nil {
		return nil, err
	}

	return record, nil
}

// publishReceipt emits a receipt event for a committed record. Failures are
// logged and swallowed: by this point the money has already moved. Refusal
// records stay in the ledger but never produce a receipt.
func (s *LedgerServiceImpl) publishReceipt(ctx context.Context, result *TapResult) {
	if s.receipts == nil || result == nil {
		return
	}
	if !result.Record.Kind.IsBalanceEffective() {
		return
	}

	event := &shared.ReceiptEvent{
		TransactionID: result.Record.TransactionID,
		CardID:        result.Record.CardID,
		Kind:          result.Record.Kind,
		Amount:        result.Record.Amount,
		NewBalance:    result.NewBalance,
		CorrelationID: result.Record.CorrelationID,
		Timestamp:     time.Now().UTC(),
	}

	if err := s.receipts.Publish(ctx, event.CardID, event); err != nil {
		s.logger.Error("Failed to publish receipt event",
			"card_id", event.CardID,
			"transaction_id", event.TransactionID.String(),
			"error", err,
		)
	}
}

// SetBlocked flips the blocked flag. Repeating the current state is a no-op
// that still succeeds.
func (s *LedgerServiceImpl) SetBlocked(ctx context.Context, cardID string, blocked bool) error {
	cardID = account.NormalizeCardID(cardID)
	if cardID == "" {
		return account.ErrEmptyCardID
	}

	if err := s.accountRepo.SetBlocked(ctx, cardID, blocked); err != nil {
		return err
	}

	s.logger.Info("Card blocked flag updated", "card_id", cardID, "blocked", blocked)
	return nil
}

// Enroll provisions a new account. The PIN is stored as a bcrypt hash; the
// plaintext never leaves this function.
func (s *LedgerServiceImpl) Enroll(ctx context.Context, cardID, loginID, displayName, pin string, initialBalance int64, photo string) (*account.Account, error) {
	if pin == "" {
		return nil, account.ErrInvalidCredentials
	}

	pinHash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash pin: %w", err)
	}

	acc, err := account.NewAccount(cardID, loginID, displayName, initialBalance, string(pinHash))
	if err != nil {
		return nil, err
	}
	acc.Photo = photo

	if err := s.accountRepo.Insert(ctx, acc); err != nil {
		return nil, err
	}

	s.logger.Info("Account enrolled", "card_id", acc.CardID, "login_id", acc.LoginID)
	return acc, nil
}

// VerifyCard resolves a reader tap to an account
func (s *LedgerServiceImpl) VerifyCard(ctx context.Context, cardID string) (*account.Account, error) {
	cardID = account.NormalizeCardID(cardID)
	if cardID == "" {
		return nil, account.ErrEmptyCardID
	}

	return s.accountRepo.GetByCardID(ctx, cardID)
}

// VerifyPIN authenticates a login ID and PIN pair. Unknown logins and wrong
// PINs return the same error.
func (s *LedgerServiceImpl) VerifyPIN(ctx context.Context, loginID, pin string) (*account.Account, error) {
	acc, err := s.accountRepo.GetByLoginID(ctx, loginID)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound{}) {
			return nil, account.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.PINHash), []byte(pin)); err != nil {
		s.logger.Warn("PIN verification failed", "login_id", loginID)
		return nil, account.ErrInvalidCredentials
	}

	return acc, nil
}

// RecentActivity returns the newest transaction records for a card, straight
// from the authoritative log.
func (s *LedgerServiceImpl) RecentActivity(ctx context.Context, cardID string, limit int) ([]*ledger.Record, error) {
	cardID = account.NormalizeCardID(cardID)
	if cardID == "" {
		return nil, account.ErrEmptyCardID
	}
	if limit <= 0 {
		limit = 5
	}

	return s.ledgerRepo.RecentByCardID(ctx, cardID, limit)
}
