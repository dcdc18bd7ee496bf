package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"print_shop/internal/models"
)

// respondError maps the domain error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message, "field": ve.Field})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, models.ErrResourceBusy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrAlreadyRegistered):
		c.JSON(http.StatusConflict, gin.H{"error": "Sale already registered for this order"})
	case errors.Is(err, models.ErrNotDelivered):
		c.JSON(http.StatusConflict, gin.H{"error": "Order is not delivered yet"})
	case errors.Is(err, models.ErrUpstreamUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Upstream service unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
