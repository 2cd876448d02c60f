package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/campuspay-ledger/internal/kiosk/service"
)

// TransactionHandler serves the dashboard feed from the archive
type TransactionHandler struct {
	logger          *slog.Logger
	activityService service.ActivityService
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logger *slog.Logger, activityService service.ActivityService) *TransactionHandler {
	return &TransactionHandler{
		logger:          logger,
		activityService: activityService,
	}
}

// List handles GET /api/v1/transactions. An optional uid query narrows the
// feed to one card. The feed reads the archive and trails the ledger by the
// outbox poll interval.
func (h *TransactionHandler) List(c *gin.Context) {
	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	records, total, err := func() ([]RecordResponse, int64, error) {
		if params.CardID != "" {
			recs, count, err := h.activityService.ListByCardID(ctx, params.CardID, params.Page, params.PerPage)
			return toRecordResponses(recs), count, err
		}
		recs, count, err := h.activityService.ListRecent(ctx, params.Page, params.PerPage)
		return toRecordResponses(recs), count, err
	}()
	if err != nil {
		h.logger.Error("Failed to list archived transactions", "error", err)
		RespondInternalError(c)
		return
	}

	RespondWithPaginatedData(c, records, params.Page, params.PerPage, int(total))
}
