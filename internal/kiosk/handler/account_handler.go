// Package handler exposes the kiosk HTTP API: reader endpoints for taps,
// and the /api/v1 surface for enrollment, card lifecycle, and dashboards.
package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/campuspay-ledger/internal/kiosk/middleware"
	"github.com/campuspay-ledger/internal/kiosk/service"
)

const recentActivityLimit = 5

// AccountHandler serves enrollment, card lifecycle, and login endpoints
type AccountHandler struct {
	logger        *slog.Logger
	ledgerService service.LedgerService
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(logger *slog.Logger, ledgerService service.LedgerService) *AccountHandler {
	return &AccountHandler{
		logger:        logger,
		ledgerService: ledgerService,
	}
}

// Enroll handles POST /api/v1/students
func (h *AccountHandler) Enroll(c *gin.Context) {
	var req EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request: "+err.Error())
		return
	}

	acc, err := h.ledgerService.Enroll(c.Request.Context(), req.CardID, req.LoginID, req.DisplayName, req.PIN, req.InitialBalance, req.Photo)
	if err != nil {
		RespondLedgerError(c, err)
		return
	}

	RespondCreated(c, toAccountResponse(acc))
}

// GetStudent handles GET /api/v1/students/:uid and returns the account with
// its most recent transaction records.
func (h *AccountHandler) GetStudent(c *gin.Context) {
	uid := c.Param("uid")

	acc, err := h.ledgerService.VerifyCard(c.Request.Context(), uid)
	if err != nil {
		RespondLedgerError(c, err)
		return
	}

	records, err := h.ledgerService.RecentActivity(c.Request.Context(), uid, recentActivityLimit)
	if err != nil {
		RespondLedgerError(c, err)
		return
	}

	RespondOK(c, StudentDetailResponse{
		Account: toAccountResponse(acc),
		Recent:  toRecordResponses(records),
	})
}

// TopUp handles POST /api/v1/students/:uid/topup
func (h *AccountHandler) TopUp(c *gin.Context) {
	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request: "+err.Error())
		return
	}

	result, err := h.ledgerService.Credit(c.Request.Context(), c.Param("uid"), req.Amount, middleware.GetCorrelationID(c))
	if err != nil {
		RespondLedgerError(c, err)
		return
	}

	RespondOK(c, BalanceResponse{
		CardID:        result.Record.CardID,
		Balance:       result.NewBalance,
		TransactionID: result.Record.TransactionID.String(),
	})
}

// Pay handles POST /api/v1/students/:uid/pay, the operator-paced debit.
// Operator requests are deliberate, so the replay guard does not apply here.
func (h *AccountHandler) Pay(c *gin.Context) {
	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request: "+err.Error())
		return
	}

	result, err := h.ledgerService.Debit(c.Request.Context(), c.Param("uid"), req.Amount, middleware.GetCorrelationID(c))
	if err != nil {
		RespondLedgerError(c, err)
		return
	}

	RespondOK(c, BalanceResponse{
		CardID:        result.Record.CardID,
		Balance:       result.NewBalance,
		TransactionID: result.Record.TransactionID.String(),
	})
}

// Block handles POST /api/v1/students/:uid/block
func (h *AccountHandler) Block(c *gin.Context) {
	h.setBlocked(c, true)
}

// Unblock handles POST /api/v1/students/:uid/unblock
func (h *AccountHandler) Unblock(c *gin.Context) {
	h.setBlocked(c, false)
}

func (h *AccountHandler) setBlocked(c *gin.Context, blocked bool) {
	uid := c.Param("uid")

	if err := h.ledgerService.SetBlocked(c.Request.Context(), uid, blocked); err != nil {
		RespondLedgerError(c, err)
		return
	}

	RespondOK(c, gin.H{"uid": uid, "blocked": blocked})
}

// Login handles POST /api/v1/login
func (h *AccountHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request: "+err.Error())
		return
	}

	acc, err := h.ledgerService.VerifyPIN(c.Request.Context(), req.LoginID, req.PIN)
	if err != nil {
		RespondLedgerError(c, err)
		return
	}

	RespondOK(c, toAccountResponse(acc))
}
