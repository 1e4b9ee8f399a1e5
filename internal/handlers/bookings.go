package handlers

import (
	"log/slog"
	"net/http"

	"bookmyseat/internal/models"

	"github.com/gin-gonic/gin"
)

// CreateBooking holds the requested seats and opens a PENDING booking with a
// payment order for the total. All requested seats are acquired or none are.
func (h *Handlers) CreateBooking(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	if len(req.Seats) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one seat is required"})
		return
	}
	for _, seat := range req.Seats {
		if seat.Row == "" || seat.Number < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "each seat needs a row label and a positive number"})
			return
		}
	}

	resp, err := h.services.Bookings.Create(c.Request.Context(), &req, userID)
	if err != nil {
		slog.Warn("Failed to create booking",
			"error", err,
			"show_id", req.ShowID,
			"user_id", userID)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// ListBookings returns the caller's bookings, newest first.
func (h *Handlers) ListBookings(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	bookings, err := h.services.Bookings.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// ConfirmBooking finalizes a booking from the client's payment proof.
// Succeeds at most once per booking; a duplicate confirm or a racing cancel
// gets a 409 and changes nothing.
func (h *Handlers) ConfirmBooking(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.ConfirmBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	booking, err := h.services.Bookings.ConfirmPayment(c.Request.Context(), &req, userID)
	if err != nil {
		slog.Warn("Failed to confirm booking",
			"error", err,
			"booking_id", req.BookingID,
			"user_id", userID)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// CancelBooking fails a PENDING booking on the user's request and frees its
// seats.
func (h *Handlers) CancelBooking(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	if err := h.services.Bookings.Cancel(c.Request.Context(), &req, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}
