package handler

import (
	"time"

	"github.com/campuspay-ledger/internal/domain/account"
	"github.com/campuspay-ledger/internal/domain/ledger"
)

// EnrollRequest represents a request to enroll a new card
type EnrollRequest struct {
	CardID         string `json:"uid" binding:"required"`
	LoginID        string `json:"login_id" binding:"required"`
	DisplayName    string `json:"name" binding:"required"`
	PIN            string `json:"pin" binding:"required,min=4"`
	InitialBalance int64  `json:"initial_balance" binding:"min=0"`
	Photo          string `json:"photo,omitempty"`
}

// AmountRequest carries the amount for top-up and payment endpoints
type AmountRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// TapRequest represents a debit submitted by a card reader
type TapRequest struct {
	CardID string `json:"uid" binding:"required"`
	Amount int64  `json:"amount" binding:"required,gt=0"`
}

// LoginRequest represents a PIN login attempt
type LoginRequest struct {
	LoginID string `json:"login_id" binding:"required"`
	PIN     string `json:"pin" binding:"required"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	CardID      string `json:"uid"`
	LoginID     string `json:"login_id"`
	DisplayName string `json:"name"`
	Balance     int64  `json:"balance"`
	Blocked     bool   `json:"blocked"`
	Photo       string `json:"photo,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// RecordResponse represents a transaction record in API responses
type RecordResponse struct {
	TransactionID string `json:"transaction_id"`
	CardID        string `json:"uid"`
	Kind          string `json:"kind"`
	Amount        int64  `json:"amount"`
	CorrelationID string `json:"correlation_id,omitempty"`
	CreatedAt     string `json:"created_at"`
}

// StudentDetailResponse combines the account with its most recent activity
type StudentDetailResponse struct {
	Account AccountResponse  `json:"account"`
	Recent  []RecordResponse `json:"recent_transactions"`
}

// BalanceResponse reports the committed balance after a mutation
type BalanceResponse struct {
	CardID        string `json:"uid"`
	Balance       int64  `json:"balance"`
	TransactionID string `json:"transaction_id"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int    `form:"page,default=1" binding:"min=1"`
	PerPage int    `form:"per_page,default=20" binding:"min=1,max=100"`
	CardID  string `form:"uid"`
}

func toAccountResponse(acc *account.Account) AccountResponse {
	return AccountResponse{
		CardID:      acc.CardID,
		LoginID:     acc.LoginID,
		DisplayName: acc.DisplayName,
		Balance:     acc.Balance,
		Blocked:     acc.Blocked,
		Photo:       acc.Photo,
		CreatedAt:   acc.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   acc.UpdatedAt.Format(time.RFC3339),
	}
}

func toRecordResponse(record *ledger.Record) RecordResponse {
	return RecordResponse{
		TransactionID: record.TransactionID.String(),
		CardID:        record.CardID,
		Kind:          string(record.Kind),
		Amount:        record.Amount,
		CorrelationID: record.CorrelationID,
		CreatedAt:     record.CreatedAt.Format(time.RFC3339),
	}
}

func toRecordResponses(records []*ledger.Record) []RecordResponse {
	out := make([]RecordResponse, 0, len(records))
	for _, record := range records {
		out = append(out, toRecordResponse(record))
	}
	return out
}
