package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"print_shop/internal/middleware"
	"print_shop/internal/models"
	"print_shop/internal/repository"
)

type PrinterHandler struct {
	printerRepo repository.PrinterRepository
}

func NewPrinterHandler(printerRepo repository.PrinterRepository) *PrinterHandler {
	return &PrinterHandler{printerRepo: printerRepo}
}

func (h *PrinterHandler) List(c *gin.Context) {
	printers, err := h.printerRepo.GetAll(middleware.TenantID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, printers)
}

func (h *PrinterHandler) Create(c *gin.Context) {
	var req struct {
		Name         string `json:"name"`
		PrinterModel string `json:"printer_model"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Printer name is required"})
		return
	}

	printer := &models.Printer{
		Name:         req.Name,
		PrinterModel: req.PrinterModel,
		Status:       string(models.PrinterIdle),
		TenantID:     middleware.TenantID(c),
	}
	if printer.PrinterModel == "" {
		printer.PrinterModel = "generic"
	}
	if err := h.printerRepo.Create(printer); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, printer)
}

func (h *PrinterHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid printer id"})
		return
	}
	if err := h.printerRepo.Delete(middleware.TenantID(c), uint(id)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
