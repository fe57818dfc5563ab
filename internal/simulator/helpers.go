package simulator

import (
	"errors"
	"fmt"
	"net/http"

	"livemarket-sync/utils"

	"github.com/gin-gonic/gin"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, ErrLotNotFound):
		return http.StatusNotFound, "lot not found"
	case errors.Is(err, ErrInvalidBid):
		return http.StatusBadRequest, "invalid bid details"
	case errors.Is(err, ErrLotNotLive):
		return http.StatusConflict, "lot is not under live auction"
	case errors.Is(err, ErrBidTooLow):
		return http.StatusConflict, "bid amount too low"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
