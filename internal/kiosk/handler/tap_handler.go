package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campuspay-ledger/internal/domain/account"
	"github.com/campuspay-ledger/internal/domain/shared"
	"github.com/campuspay-ledger/internal/kiosk/middleware"
	"github.com/campuspay-ledger/internal/kiosk/replay"
	"github.com/campuspay-ledger/internal/kiosk/service"
)

// TapHandler serves the card-reader endpoints. Readers are dumb clients, so
// these endpoints keep a flat {ok, ...} payload instead of the API envelope.
type TapHandler struct {
	logger        *slog.Logger
	ledgerService service.LedgerService
	guard         *replay.Guard
}

// NewTapHandler creates a new tap handler
func NewTapHandler(logger *slog.Logger, ledgerService service.LedgerService, guard *replay.Guard) *TapHandler {
	return &TapHandler{
		logger:        logger,
		ledgerService: ledgerService,
		guard:         guard,
	}
}

// Verify handles GET /verify?uid= and resolves a presented card to a name
// and balance for the reader display.
func (h *TapHandler) Verify(c *gin.Context) {
	uid := c.Query("uid")
	if uid == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "missing uid"})
		return
	}

	acc, err := h.ledgerService.VerifyCard(c.Request.Context(), uid)
	if err != nil {
		h.respondTapError(c, err)
		return
	}

	// A blocked card is a refusal at the reader; its balance stays private.
	if acc.Blocked {
		h.respondTapError(c, account.ErrCardBlocked)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"name":    acc.DisplayName,
		"balance": acc.Balance,
	})
}

// Deduct handles POST /deduct, the reader debit path. The replay guard runs
// before the ledger so a bounced tap never opens a transaction.
func (h *TapHandler) Deduct(c *gin.Context) {
	var req TapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request: " + err.Error()})
		return
	}

	cardID := account.NormalizeCardID(req.CardID)
	if !h.guard.CheckAndMark(cardID, time.Now()) {
		h.logger.Warn("Tap rejected by replay guard", "card_id", cardID)
		c.JSON(http.StatusTooManyRequests, gin.H{"ok": false, "error": string(shared.ReasonTooSoon)})
		return
	}

	correlationID := middleware.GetCorrelationID(c)
	result, err := h.ledgerService.Debit(c.Request.Context(), cardID, req.Amount, correlationID)
	if err != nil {
		h.respondTapError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":             true,
		"balance":        result.NewBalance,
		"transaction_id": result.Record.TransactionID.String(),
	})
}

// respondTapError maps domain errors to the flat reader payload
func (h *TapHandler) respondTapError(c *gin.Context, err error) {
	var status int
	var reason shared.ReasonCode

	switch {
	case errors.Is(err, account.ErrAccountNotFound{}):
		status, reason = http.StatusNotFound, shared.ReasonNotFound
	case errors.Is(err, account.ErrCardBlocked):
		status, reason = http.StatusForbidden, shared.ReasonBlocked
	case errors.Is(err, account.ErrInsufficientFunds):
		status, reason = http.StatusPaymentRequired, shared.ReasonInsufficientFunds
	case errors.Is(err, account.ErrInvalidAmount), errors.Is(err, account.ErrEmptyCardID):
		status, reason = http.StatusBadRequest, shared.ReasonInvalidAmount
	default:
		h.logger.Error("Tap failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal_error"})
		return
	}

	c.JSON(status, gin.H{"ok": false, "error": string(reason)})
}
