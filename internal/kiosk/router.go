// Package kiosk assembles the kiosk-facing HTTP server: reader endpoints,
// the management API, and the dashboard feed.
package kiosk

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campuspay-ledger/internal/kiosk/handler"
	"github.com/campuspay-ledger/internal/kiosk/middleware"
)

// setupRouter configures API routes and middleware for the kiosk server
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	tapHandler *handler.TapHandler,
	accountHandler *handler.AccountHandler,
	transactionHandler *handler.TransactionHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// Reader endpoints keep the flat legacy shape the card terminals expect
	r.GET("/verify", tapHandler.Verify)
	r.POST("/deduct", tapHandler.Deduct)

	v1 := r.Group("/api/v1")
	{
		students := v1.Group("/students")
		{
			students.POST("", accountHandler.Enroll)
			students.GET("/:uid", accountHandler.GetStudent)
			students.POST("/:uid/topup", accountHandler.TopUp)
			students.POST("/:uid/pay", accountHandler.Pay)
			students.POST("/:uid/block", accountHandler.Block)
			students.POST("/:uid/unblock", accountHandler.Unblock)
		}

		v1.GET("/transactions", transactionHandler.List)
		v1.POST("/login", accountHandler.Login)
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
