package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"print_shop/internal/models"
	"print_shop/internal/repository"
	"print_shop/pkg/trackcode"
)

type OrderItemInput struct {
	ProductID   *uint   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	IsCustom    bool    `json:"is_custom"`
}

type CreateOrderInput struct {
	ClientName      string             `json:"client_name"`
	CustomerContact string             `json:"customer_contact"`
	Origin          string             `json:"origin"`
	PaymentMethod   string             `json:"payment_method"`
	Deposit         float64            `json:"deposit"`
	Notes           string             `json:"notes"`
	DueDate         *time.Time         `json:"due_date"`
	Files           []models.OrderFile `json:"files"`
	Items           []OrderItemInput   `json:"items"`
}

type UpdateOrderInput struct {
	ClientName      *string            `json:"client_name"`
	CustomerContact *string            `json:"customer_contact"`
	Origin          *string            `json:"origin"`
	PaymentMethod   *string            `json:"payment_method"`
	Deposit         *float64           `json:"deposit"`
	Notes           *string            `json:"notes"`
	DueDate         *time.Time         `json:"due_date"`
	Files           []models.OrderFile `json:"files"`
	Items           []OrderItemInput   `json:"items"`
}

type UpdateStatusInput struct {
	Status           string `json:"status"`
	PrinterID        *uint  `json:"printer_id"`
	PrintTimeMinutes int    `json:"print_time_minutes"`
}

type OrderTimeline struct {
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at"`
	DeliveredAt *time.Time `json:"delivered_at"`
}

type OrderSummary struct {
	CountsByStatus      map[string]int64 `json:"counts_by_status"`
	MonthlyRevenue      float64          `json:"monthly_revenue"`
	AverageSatisfaction float64          `json:"average_satisfaction"`
}

type OrderService interface {
	CreateOrder(ctx context.Context, tenantID string, input CreateOrderInput) (*models.Order, error)
	GetOrder(ctx context.Context, tenantID string, id uint) (*models.Order, error)
	ListOrders(ctx context.Context, tenantID string, filter repository.OrderFilter) ([]models.Order, int64, error)
	UpdateOrder(ctx context.Context, tenantID string, id uint, input UpdateOrderInput) (*models.Order, error)
	UpdateStatus(ctx context.Context, tenantID string, id uint, input UpdateStatusInput) (*models.Order, error)
	GetTimeline(ctx context.Context, tenantID string, id uint) (*OrderTimeline, error)
	GetSummary(ctx context.Context, tenantID string) (*OrderSummary, error)
	ResendTracking(ctx context.Context, tenantID string, id uint) error
}

type orderService struct {
	orderRepo   repository.OrderRepository
	printerRepo repository.PrinterRepository
	saleRepo    repository.SaleRepository
	clientRepo  repository.ClientRepository
	pricing     PricingService
	notifier    NotificationService
	queue       Enqueuer // nil when no broker is configured
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	printerRepo repository.PrinterRepository,
	saleRepo repository.SaleRepository,
	clientRepo repository.ClientRepository,
	pricing PricingService,
	notifier NotificationService,
	queue Enqueuer,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		printerRepo: printerRepo,
		saleRepo:    saleRepo,
		clientRepo:  clientRepo,
		pricing:     pricing,
		notifier:    notifier,
		queue:       queue,
	}
}

// allowedTransitions is the canonical state machine. Delivered is absent
// as a target on purpose: it is only reachable through sale
// registration. A repeated "completed" request is accepted so a retried
// call stays harmless.
var allowedTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderPending:    {models.OrderInProgress, models.OrderCancelled},
	models.OrderInProgress: {models.OrderCompleted, models.OrderCancelled},
	models.OrderCompleted:  {models.OrderCompleted, models.OrderCancelled},
}

func transitionAllowed(from, to models.OrderStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func validateCreateInput(tenantID string, input CreateOrderInput) error {
	if tenantID == "" {
		return models.NewValidationError("tenant_id", "tenant is required")
	}
	if input.ClientName == "" {
		return models.NewValidationError("client_name", "client name is required")
	}
	if len(input.Items) == 0 {
		return models.NewValidationError("items", "at least one item is required")
	}
	for i, item := range input.Items {
		if item.ProductName == "" {
			return models.NewValidationError("items", fmt.Sprintf("item %d has no product name", i))
		}
		if item.Quantity <= 0 {
			return models.NewValidationError("items", fmt.Sprintf("item %d has a non-positive quantity", i))
		}
		if item.UnitPrice < 0 {
			return models.NewValidationError("items", fmt.Sprintf("item %d has a negative price", i))
		}
	}
	return nil
}

func buildItems(inputs []OrderItemInput) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(inputs))
	for _, in := range inputs {
		items = append(items, models.OrderItem{
			ProductID:   in.ProductID,
			ProductName: in.ProductName,
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
			IsCustom:    in.IsCustom,
		})
	}
	return items
}

func (s *orderService) CreateOrder(ctx context.Context, tenantID string, input CreateOrderInput) (*models.Order, error) {
	if err := validateCreateInput(tenantID, input); err != nil {
		return nil, err
	}

	enriched := s.pricing.EnrichItems(tenantID, buildItems(input.Items))

	origin := input.Origin
	if origin == "" {
		origin = "local"
	}
	paymentMethod := input.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "cash"
	}

	order := &models.Order{
		TrackingCode:    trackcode.New(),
		ClientName:      input.ClientName,
		CustomerContact: input.CustomerContact,
		Origin:          origin,
		PaymentMethod:   paymentMethod,
		Deposit:         input.Deposit,
		Notes:           input.Notes,
		DueDate:         input.DueDate,
		Files:           input.Files,
		Items:           enriched.Items,
		Total:           enriched.Total,
		EstimatedCost:   enriched.EstimatedCost,
		Profit:          enriched.EstimatedProfit,
		Status:          string(models.OrderPending),
		TenantID:        tenantID,
	}

	if err := s.orderRepo.Create(order); err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		// Tracking code collision is astronomically unlikely; regenerate
		// once and retry before giving up.
		order.TrackingCode = trackcode.New()
		if err := s.orderRepo.Create(order); err != nil {
			return nil, fmt.Errorf("failed to create order after tracking code retry: %w", err)
		}
	}

	s.emitCRMUpdate(ctx, order)
	s.notifier.NotifyStatusChange(ctx, order)

	return order, nil
}

// emitCRMUpdate pushes the client aggregate delta. Queued when a broker
// is configured, applied inline otherwise; failure is logged and never
// rolls back the order.
func (s *orderService) emitCRMUpdate(ctx context.Context, order *models.Order) {
	if s.queue != nil {
		err := s.queue.Enqueue(ctx, &models.NotificationJob{
			JobID:    uuid.NewString(),
			Type:     models.JobCRMUpdate,
			TenantID: order.TenantID,
			CRM: &models.CRMJob{
				ClientName: order.ClientName,
				Source:     order.Origin,
				Amount:     order.Total,
			},
		})
		if err == nil {
			return
		}
		log.Printf("CRM warning: could not enqueue aggregate update for order %d, applying inline: %v", order.ID, err)
	}
	if err := s.clientRepo.ApplyOrder(order.TenantID, order.ClientName, order.Origin, order.Total); err != nil {
		log.Printf("CRM warning: client aggregate update failed, order %d saved anyway: %v", order.ID, err)
	}
}

func (s *orderService) GetOrder(ctx context.Context, tenantID string, id uint) (*models.Order, error) {
	return s.orderRepo.GetByID(tenantID, id)
}

func (s *orderService) ListOrders(ctx context.Context, tenantID string, filter repository.OrderFilter) ([]models.Order, int64, error) {
	if filter.Status != "" && !models.IsValidStatus(filter.Status) {
		return nil, 0, models.NewValidationError("status", "unknown status value")
	}
	return s.orderRepo.List(tenantID, filter)
}

func (s *orderService) UpdateOrder(ctx context.Context, tenantID string, id uint, input UpdateOrderInput) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(tenantID, id)
	if err != nil {
		return nil, err
	}

	if input.ClientName != nil {
		if *input.ClientName == "" {
			return nil, models.NewValidationError("client_name", "client name cannot be empty")
		}
		order.ClientName = *input.ClientName
	}
	if input.CustomerContact != nil {
		order.CustomerContact = *input.CustomerContact
	}
	if input.Origin != nil {
		order.Origin = *input.Origin
	}
	if input.PaymentMethod != nil {
		order.PaymentMethod = *input.PaymentMethod
	}
	if input.Deposit != nil {
		order.Deposit = *input.Deposit
	}
	if input.Notes != nil {
		order.Notes = *input.Notes
	}
	if input.DueDate != nil {
		order.DueDate = input.DueDate
	}

	// Item edits recompute the total but deliberately do not re-run cost
	// enrichment or touch profit; reconciliation owns the final numbers.
	if input.Items != nil {
		items := buildItems(input.Items)
		if err := s.orderRepo.ReplaceItems(order.ID, items); err != nil {
			return nil, err
		}
		order.Items = items
		order.Total = ItemsTotal(items)
	}

	if input.Files != nil {
		if err := s.orderRepo.ReplaceFiles(order.ID, input.Files); err != nil {
			return nil, err
		}
		order.Files = input.Files
	}

	if err := s.orderRepo.Save(order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, tenantID string, id uint, input UpdateStatusInput) (*models.Order, error) {
	if !models.IsValidStatus(input.Status) {
		return nil, models.NewValidationError("status", "unknown status value")
	}
	target := models.OrderStatus(input.Status)
	if target == models.OrderDelivered {
		return nil, models.NewValidationError("status", "delivered is set by sale registration, not a status update")
	}

	order, err := s.orderRepo.GetByID(tenantID, id)
	if err != nil {
		return nil, err
	}

	current := models.OrderStatus(order.Status)
	if !transitionAllowed(current, target) {
		return nil, models.NewValidationError("status", fmt.Sprintf("cannot move order from %s to %s", current, target))
	}

	now := time.Now()

	switch target {
	case models.OrderInProgress:
		if input.PrinterID == nil {
			return nil, models.NewValidationError("printer_id", "a printer must be selected to start printing")
		}
		if err := s.printerRepo.Allocate(tenantID, *input.PrinterID, order.ID); err != nil {
			return nil, err
		}
		order.StartedAt = &now
		if input.PrintTimeMinutes > 0 {
			order.PrintTimeMinutes = input.PrintTimeMinutes
		}

	case models.OrderCompleted:
		order.FinishedAt = &now
		// Free the machine first: even if notifying or saving fails, a
		// printer must never stay bound to a finished order.
		if err := s.printerRepo.ReleaseByOrder(tenantID, order.ID); err != nil {
			log.Printf("Printer warning: release for order %d failed: %v", order.ID, err)
		}
		if !order.AdminNotified {
			s.notifier.NotifyAdminOrderFinished(ctx, order)
			order.AdminNotified = true
		}

	case models.OrderCancelled:
		// Cancellation releases any allocated printer, same as completion.
		if err := s.printerRepo.ReleaseByOrder(tenantID, order.ID); err != nil {
			log.Printf("Printer warning: release for cancelled order %d failed: %v", order.ID, err)
		}
	}

	order.Status = string(target)
	if err := s.orderRepo.Save(order); err != nil {
		return nil, err
	}

	s.notifier.NotifyStatusChange(ctx, order)

	return order, nil
}

func (s *orderService) GetTimeline(ctx context.Context, tenantID string, id uint) (*OrderTimeline, error) {
	order, err := s.orderRepo.GetByID(tenantID, id)
	if err != nil {
		return nil, err
	}

	timeline := &OrderTimeline{
		CreatedAt:  order.CreatedAt,
		StartedAt:  order.StartedAt,
		FinishedAt: order.FinishedAt,
	}

	if order.IsSaleRegistered {
		sales, err := s.saleRepo.GetByOrderID(tenantID, order.ID)
		if err == nil && len(sales) > 0 {
			timeline.DeliveredAt = &sales[0].CreatedAt
		}
	}

	return timeline, nil
}

func (s *orderService) GetSummary(ctx context.Context, tenantID string) (*OrderSummary, error) {
	counts, err := s.orderRepo.CountByStatus(tenantID)
	if err != nil {
		return nil, err
	}
	byStatus := make(map[string]int64, len(counts))
	for _, c := range counts {
		byStatus[c.Status] = c.Count
	}

	now := time.Now()
	revenue, err := s.saleRepo.MonthlyRevenue(tenantID, now.Year(), now.Month())
	if err != nil {
		return nil, err
	}

	satisfaction, err := s.orderRepo.AverageSatisfaction(tenantID)
	if err != nil {
		return nil, err
	}

	return &OrderSummary{
		CountsByStatus:      byStatus,
		MonthlyRevenue:      revenue,
		AverageSatisfaction: satisfaction,
	}, nil
}

func (s *orderService) ResendTracking(ctx context.Context, tenantID string, id uint) error {
	order, err := s.orderRepo.GetByID(tenantID, id)
	if err != nil {
		return err
	}
	return s.notifier.ResendTracking(ctx, order)
}
