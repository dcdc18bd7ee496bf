package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"print_shop/internal/models"
	"print_shop/internal/repository"
)

// SaleResult is the outcome of delivery reconciliation: the immutable
// ledger entry plus the finalized order.
type SaleResult struct {
	Sale  *models.Sale  `json:"sale"`
	Order *models.Order `json:"order"`
}

type SaleService interface {
	RegisterDelivery(ctx context.Context, tenantID string, orderID uint, finalCost string) (*SaleResult, error)
}

type saleService struct {
	orderRepo repository.OrderRepository
	saleRepo  repository.SaleRepository
	notifier  NotificationService
}

func NewSaleService(orderRepo repository.OrderRepository, saleRepo repository.SaleRepository, notifier NotificationService) SaleService {
	return &saleService{orderRepo: orderRepo, saleRepo: saleRepo, notifier: notifier}
}

// parseFinalCost treats blank or non-numeric input as zero: the operator
// often has no separate cost figure at hand-off time.
func parseFinalCost(raw string) float64 {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || value < 0 {
		return 0
	}
	return value
}

// RegisterDelivery is the only path that moves an order to delivered,
// so every delivered order has exactly one matching sale record.
func (s *saleService) RegisterDelivery(ctx context.Context, tenantID string, orderID uint, finalCost string) (*SaleResult, error) {
	if tenantID == "" {
		return nil, models.NewValidationError("tenant_id", "tenant is required")
	}

	order, err := s.orderRepo.GetByID(tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if order.IsSaleRegistered {
		return nil, models.ErrAlreadyRegistered
	}

	cost := parseFinalCost(finalCost)
	profit := order.Total - cost

	sale := &models.Sale{
		OrderID:     order.ID,
		ProductName: fmt.Sprintf("Order: %s", order.ClientName),
		Quantity:    1,
		Price:       order.Total,
		Cost:        cost,
		Profit:      profit,
		Category:    models.SaleCategoryService,
		TenantID:    tenantID,
	}
	if err := s.saleRepo.Create(sale); err != nil {
		return nil, err
	}

	order.Status = string(models.OrderDelivered)
	order.IsSaleRegistered = true
	// The reconciled profit supersedes the creation-time estimate.
	order.Profit = profit
	if err := s.orderRepo.Save(order); err != nil {
		return nil, err
	}

	s.notifier.NotifyStatusChange(ctx, order)

	return &SaleResult{Sale: sale, Order: order}, nil
}
