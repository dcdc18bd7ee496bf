package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"print_shop/internal/services"
)

// TrackingHandler serves the public, unauthenticated tracking surface.
type TrackingHandler struct {
	trackingService services.TrackingService
}

func NewTrackingHandler(trackingService services.TrackingService) *TrackingHandler {
	return &TrackingHandler{trackingService: trackingService}
}

func (h *TrackingHandler) Get(c *gin.Context) {
	view, err := h.trackingService.GetByTrackingCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *TrackingHandler) SubmitFeedback(c *gin.Context) {
	var req struct {
		Rating   int    `json:"rating"`
		Feedback string `json:"feedback"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := h.trackingService.SubmitFeedback(c.Request.Context(), c.Param("code"), req.Rating, req.Feedback); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "recorded"})
}
