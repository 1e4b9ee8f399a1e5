package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"bookmyseat/internal/models"

	"github.com/gin-gonic/gin"
)

// CreateShow sets up a show together with its complete seat grid.
func (h *Handlers) CreateShow(c *gin.Context) {
	var req models.CreateShowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	if req.Rows < 1 || req.Rows > 702 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rows must be between 1 and 702"})
		return
	}
	if req.SeatsPerRow < 1 || req.SeatsPerRow > 1000 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "seats_per_row must be between 1 and 1000"})
		return
	}
	if req.Price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must not be negative"})
		return
	}

	resp, err := h.services.Shows.Create(c.Request.Context(), &req)
	if err != nil {
		slog.Error("Failed to create show", "error", err, "movie_title", req.MovieTitle)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetShow returns a single show by id.
func (h *Handlers) GetShow(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid show id"})
		return
	}

	show, err := h.services.Shows.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, show)
}
