package handlers

import (
	"errors"
	"net/http"

	"bookmyseat/internal/apperr"
	"bookmyseat/internal/service"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	services *service.Services
}

func New(services *service.Services) *Handlers {
	return &Handlers{services: services}
}

// Health check endpoint
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// currentUserID returns the authenticated user id set by the auth middleware.
func currentUserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// respondError maps domain errors onto HTTP statuses. Seat conflicts and
// finalize races are 409s so clients can retry with different seats; a
// rejected payment proof is a 402, and a dead payment provider a 502.
func respondError(c *gin.Context, err error) {
	var conflict *apperr.SeatConflictError
	switch {
	case errors.Is(err, apperr.ErrShowNotFound),
		errors.Is(err, apperr.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":  conflict.Error(),
			"row":    conflict.Row,
			"number": conflict.Number,
			"reason": conflict.Reason,
		})
	case errors.Is(err, apperr.ErrAlreadyFinalized),
		errors.Is(err, apperr.ErrHoldLost):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrVerificationFailed):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrUpstreamUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Payment provider unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
