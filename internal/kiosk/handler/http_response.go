package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuspay-ledger/internal/domain/account"
	"github.com/campuspay-ledger/internal/domain/shared"
	"github.com/campuspay-ledger/internal/kiosk/middleware"
)

// Response represents a standard API response
type Response struct {
	Data          interface{} `json:"data,omitempty"`
	Error         *ErrorInfo  `json:"error,omitempty"`
	CorrelationID string      `json:"correlation_id,omitempty"`
	Meta          *MetaInfo   `json:"meta,omitempty"`
}

// ErrorInfo represents error information in a response
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MetaInfo represents pagination metadata in a response
type MetaInfo struct {
	Page       int `json:"page,omitempty"`
	PerPage    int `json:"per_page,omitempty"`
	TotalPages int `json:"total_pages,omitempty"`
	TotalItems int `json:"total_items,omitempty"`
}

// RespondWithData sends a JSON response with data
func RespondWithData(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, &Response{
		Data:          data,
		CorrelationID: middleware.GetCorrelationID(c),
	})
}

// RespondWithError sends a JSON response with an error
func RespondWithError(c *gin.Context, statusCode int, code shared.ReasonCode, message string) {
	c.JSON(statusCode, &Response{
		Error:         &ErrorInfo{Code: string(code), Message: message},
		CorrelationID: middleware.GetCorrelationID(c),
	})
}

// RespondWithPaginatedData sends a JSON response with paginated data
func RespondWithPaginatedData(c *gin.Context, data interface{}, page, perPage, totalItems int) {
	totalPages := totalItems / perPage
	if totalItems%perPage > 0 {
		totalPages++
	}

	c.JSON(http.StatusOK, &Response{
		Data:          data,
		CorrelationID: middleware.GetCorrelationID(c),
		Meta: &MetaInfo{
			Page:       page,
			PerPage:    perPage,
			TotalPages: totalPages,
			TotalItems: totalItems,
		},
	})
}

// RespondOK sends a 200 OK response with data
func RespondOK(c *gin.Context, data interface{}) {
	RespondWithData(c, http.StatusOK, data)
}

// RespondCreated sends a 201 Created response with data
func RespondCreated(c *gin.Context, data interface{}) {
	RespondWithData(c, http.StatusCreated, data)
}

// RespondBadRequest sends a 400 Bad Request response with an error
func RespondBadRequest(c *gin.Context, message string) {
	RespondWithError(c, http.StatusBadRequest, "bad_request", message)
}

// RespondInternalError sends a 500 Internal Server Error response
func RespondInternalError(c *gin.Context) {
	RespondWithError(c, http.StatusInternalServerError, "internal_error", "An internal server error occurred")
}

// RespondLedgerError maps domain errors onto the reason-code taxonomy. Every
// failure a caller can act on gets its own status; anything else is a 500.
func RespondLedgerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, account.ErrAccountNotFound{}):
		RespondWithError(c, http.StatusNotFound, shared.ReasonNotFound, "Account not found")
	case errors.Is(err, account.ErrCardBlocked):
		RespondWithError(c, http.StatusForbidden, shared.ReasonBlocked, "Card is blocked")
	case errors.Is(err, account.ErrInsufficientFunds):
		RespondWithError(c, http.StatusPaymentRequired, shared.ReasonInsufficientFunds, "Insufficient funds")
	case errors.Is(err, account.ErrDuplicateAccount{}):
		RespondWithError(c, http.StatusConflict, shared.ReasonDuplicateAccount, "Account already exists")
	case errors.Is(err, account.ErrInvalidCredentials):
		RespondWithError(c, http.StatusUnauthorized, shared.ReasonInvalidCredentials, "Invalid credentials")
	case errors.Is(err, account.ErrInvalidAmount):
		RespondWithError(c, http.StatusBadRequest, shared.ReasonInvalidAmount, err.Error())
	case errors.Is(err, account.ErrEmptyCardID),
		errors.Is(err, account.ErrEmptyLoginID),
		errors.Is(err, account.ErrEmptyDisplayName):
		RespondBadRequest(c, err.Error())
	default:
		RespondInternalError(c)
	}
}
