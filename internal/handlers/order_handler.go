package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"print_shop/internal/middleware"
	"print_shop/internal/repository"
	"print_shop/internal/services"
)

type OrderHandler struct {
	orderService services.OrderService
	saleService  services.SaleService
}

func NewOrderHandler(orderService services.OrderService, saleService services.SaleService) *OrderHandler {
	return &OrderHandler{orderService: orderService, saleService: saleService}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return 0, false
	}
	return uint(id), true
}

func (h *OrderHandler) List(c *gin.Context) {
	filter := repository.OrderFilter{
		Status: c.Query("status"),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.Limit = limit
	}
	if from := c.Query("from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			filter.From = &t
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			filter.To = &t
		}
	}

	orders, total, err := h.orderService.ListOrders(c.Request.Context(), middleware.TenantID(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "total": total})
}

func (h *OrderHandler) Create(c *gin.Context) {
	var input services.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), middleware.TenantID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.orderService.GetOrder(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var input services.UpdateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	order, err := h.orderService.UpdateOrder(c.Request.Context(), middleware.TenantID(c), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var input services.UpdateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), middleware.TenantID(c), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) RegisterSale(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		FinalCost string `json:"final_cost"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	result, err := h.saleService.RegisterDelivery(c.Request.Context(), middleware.TenantID(c), id, req.FinalCost)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *OrderHandler) ResendTracking(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.orderService.ResendTracking(c.Request.Context(), middleware.TenantID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}

func (h *OrderHandler) Timeline(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	timeline, err := h.orderService.GetTimeline(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, timeline)
}

func (h *OrderHandler) Summary(c *gin.Context) {
	summary, err := h.orderService.GetSummary(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
