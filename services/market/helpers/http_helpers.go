package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"auction-market/internal/marketerrors"
	"auction-market/utils"

	"github.com/gin-gonic/gin"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	var tooLow *marketerrors.BidTooLowError
	if errors.As(err, &tooLow) {
		return http.StatusConflict, fmt.Sprintf("bid too low, minimum is %s", tooLow.Minimum)
	}

	var illegal *marketerrors.IllegalTransitionError
	if errors.As(err, &illegal) {
		return http.StatusConflict, fmt.Sprintf("cannot move order from %s to %s", illegal.From, illegal.To)
	}

	switch {
	case errors.Is(err, marketerrors.ErrListingNotFound):
		return http.StatusNotFound, "listing not found"
	case errors.Is(err, marketerrors.ErrInvalidInput):
		return http.StatusBadRequest, "invalid request details"
	case errors.Is(err, marketerrors.ErrNotAuction):
		return http.StatusBadRequest, "listing is not an auction"
	case errors.Is(err, marketerrors.ErrBidTooLow):
		return http.StatusConflict, "bid amount too low"
	case errors.Is(err, marketerrors.ErrAuctionClosed):
		return http.StatusConflict, "auction has ended"
	case errors.Is(err, marketerrors.ErrIllegalTransition):
		return http.StatusConflict, "illegal status transition"
	case errors.Is(err, marketerrors.ErrActorNotAllowed):
		return http.StatusConflict, "action not allowed for this user"
	case errors.Is(err, marketerrors.ErrNoBids):
		return http.StatusNotFound, "no bids found for listing"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
