package httpapi

import (
	"errors"
	"net/http"

	"callpay-platform/internal/ledger"
	"callpay-platform/internal/rates"
	"callpay-platform/internal/session"
	"callpay-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Error taxonomy -> HTTP mapping, applied identically by every endpoint:
//
//	VALIDATION          -> 400 (bad input, field-level detail)
//	unauthorized actor  -> 403
//	not found           -> 404
//	CONFLICT            -> 409 (re-fetch the session; do not blind-retry)
//	ADMISSION_REJECTED  -> 422 with a machine-readable code
//	BACKEND_UNAVAILABLE -> 503 (retryable)
//	INTERNAL            -> 500 (nothing partially applied)
//
// Clients must treat 409/422 as terminal for the attempt and 500/503 as
// retryable.

func writeSessionError(c *gin.Context, err error) {
	if ae, ok := session.AsAdmissionError(err); ok {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
			"error": ae.Message,
			"code":  string(ae.Code),
		})
		return
	}

	switch {
	case errors.Is(err, session.ErrInvalidArgument),
		errors.Is(err, session.ErrCallerNotFound),
		errors.Is(err, session.ErrReceiverNotFound):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, session.ErrUnauthorizedActor):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "not a participant of this call"})
	case errors.Is(err, session.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "call not found"})
	case errors.Is(err, session.ErrConflict):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "call already transitioned; re-fetch its state"})
	case errors.Is(err, session.ErrBackendUnavailable):
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "call service temporarily unavailable; retry"})
	default:
		logger.FromGin(c).Error("call operation failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func writeLedgerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrInvalidArgument):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "account not found"})
	default:
		logger.FromGin(c).Error("ledger operation failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func writeRatesError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, rates.ErrInvalidArgument):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, rates.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "account not found"})
	default:
		logger.FromGin(c).Error("rates operation failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
