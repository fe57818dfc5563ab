package simulator

import (
	"time"

	"livemarket-sync/utils"

	"github.com/gin-gonic/gin"
)

// RequestLoggerMiddleware logs incoming requests with timing and a request id
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()
	requestID := utils.GenerateID()
	c.Set("request_id", requestID)

	c.Next()

	utils.Info("HTTP Request", map[string]any{
		"request_id": requestID,
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"status":     c.Writer.Status(),
		"latency":    time.Since(start).String(),
	})
}

// SetupRouter configures the Gin routes of the simulated backend
func SetupRouter(h *Handler) *gin.Engine {
	router := gin.New() // no default middleware, logging stays structured

	router.Use(gin.Recovery())
	router.Use(RequestLoggerMiddleware)

	router.GET("/approved-live-auctions", h.GetApprovedLiveAuctionsHandler)
	router.GET("/sessions/live/:session_id", h.GetSessionHandler)
	router.POST("/submit-bid", h.SubmitBidHandler)

	return router
}
