package handlers

import (
	"net/http"
	"strconv"

	"bookmyseat/internal/models"

	"github.com/gin-gonic/gin"
)

// ListSeats returns the paginated seat map of a show. Statuses are the
// effective ones: an expired hold shows as FREE even before the sweeper
// reclaims the row.
func (h *Handlers) ListSeats(c *gin.Context) {
	showID, err := strconv.ParseInt(c.Query("show_id"), 10, 64)
	if err != nil || showID < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "show_id query parameter is required and must be a positive integer"})
		return
	}

	page := 1
	if pageStr := c.Query("page"); pageStr != "" {
		page, err = strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "page must be a positive integer"})
			return
		}
	}

	pageSize := 20
	if pageSizeStr := c.Query("pageSize"); pageSizeStr != "" {
		pageSize, err = strconv.Atoi(pageSizeStr)
		if err != nil || pageSize < 1 || pageSize > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "pageSize must be between 1 and 100"})
			return
		}
	}

	var row *string
	if rowStr := c.Query("row"); rowStr != "" {
		row = &rowStr
	}

	var status *string
	if statusStr := c.Query("status"); statusStr != "" {
		if statusStr != models.SeatFree && statusStr != models.SeatHeld && statusStr != models.SeatBooked {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status must be one of FREE, HELD, BOOKED"})
			return
		}
		status = &statusStr
	}

	// Existence check first so an unknown show is a 404, not an empty list
	if _, err := h.services.Shows.Get(c.Request.Context(), showID); err != nil {
		respondError(c, err)
		return
	}

	seats, err := h.services.Reservations.ListSeats(c.Request.Context(), showID, page, pageSize, row, status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, seats)
}
