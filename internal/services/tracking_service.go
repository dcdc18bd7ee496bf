package services

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"print_shop/internal/models"
	"print_shop/internal/repository"
	"print_shop/pkg/trackcode"
)

// TrackedItem is the item view exposed publicly: names and quantities
// only, no prices or costs.
type TrackedItem struct {
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

// TrackingView is the public projection of an order. It carries no
// internal ids and no money fields.
type TrackingView struct {
	TrackingCode         string        `json:"tracking_code"`
	ClientName           string        `json:"client_name"`
	Status               string        `json:"status"`
	Progress             int           `json:"progress"`
	Items                []TrackedItem `json:"items"`
	CreatedAt            time.Time     `json:"created_at"`
	DueDate              *time.Time    `json:"due_date,omitempty"`
	CustomerSatisfaction *int          `json:"customer_satisfaction,omitempty"`
}

// TrackingCache is the optional read-through cache for public lookups.
type TrackingCache interface {
	GetTrackingView(ctx context.Context, code string, dest interface{}) error
	SetTrackingView(ctx context.Context, code string, view interface{}, ttl time.Duration) error
	DeleteTrackingView(ctx context.Context, code string) error
}

type TrackingService interface {
	GetByTrackingCode(ctx context.Context, code string) (*TrackingView, error)
	SubmitFeedback(ctx context.Context, code string, rating int, feedback string) error
}

type trackingService struct {
	orderRepo repository.OrderRepository
	cache     TrackingCache // may be nil
	cacheTTL  time.Duration
}

func NewTrackingService(orderRepo repository.OrderRepository, cache TrackingCache, cacheTTL time.Duration) TrackingService {
	return &trackingService{orderRepo: orderRepo, cache: cache, cacheTTL: cacheTTL}
}

// progressFor maps an order onto the four-step production scale:
// 0, 33, 67, 100. A cancelled order reports the last step it actually
// reached, derived from its production timestamps.
func progressFor(order *models.Order) int {
	step := -1
	for i, s := range models.StatusSteps {
		if string(s) == order.Status {
			step = i
			break
		}
	}
	if step < 0 {
		// Cancelled (or unknown): reconstruct the last known step.
		switch {
		case order.FinishedAt != nil:
			step = 2
		case order.StartedAt != nil:
			step = 1
		default:
			step = 0
		}
	}
	return int(math.Round(float64(step) * 100 / float64(len(models.StatusSteps)-1)))
}

func buildTrackingView(order *models.Order) *TrackingView {
	items := make([]TrackedItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, TrackedItem{ProductName: item.ProductName, Quantity: item.Quantity})
	}
	return &TrackingView{
		TrackingCode:         order.TrackingCode,
		ClientName:           order.ClientName,
		Status:               order.Status,
		Progress:             progressFor(order),
		Items:                items,
		CreatedAt:            order.CreatedAt,
		DueDate:              order.DueDate,
		CustomerSatisfaction: order.CustomerSatisfaction,
	}
}

func (s *trackingService) GetByTrackingCode(ctx context.Context, code string) (*TrackingView, error) {
	normalized := trackcode.Normalize(code)
	if normalized == "" {
		return nil, models.NewValidationError("code", "tracking code is required")
	}

	if s.cache != nil {
		var cached TrackingView
		if err := s.cache.GetTrackingView(ctx, normalized, &cached); err == nil {
			return &cached, nil
		}
	}

	order, err := s.orderRepo.GetByTrackingCode(normalized)
	if err != nil {
		return nil, err
	}

	view := buildTrackingView(order)

	if s.cache != nil {
		if err := s.cache.SetTrackingView(ctx, normalized, view, s.cacheTTL); err != nil {
			log.Printf("Tracking warning: could not cache view for %s: %v", normalized, err)
		}
	}

	return view, nil
}

// SubmitFeedback stores a satisfaction rating on a delivered order.
// Re-submission overwrites: last write wins.
func (s *trackingService) SubmitFeedback(ctx context.Context, code string, rating int, feedback string) error {
	if rating < 1 || rating > 5 {
		return models.NewValidationError("rating", "rating must be between 1 and 5")
	}

	normalized := trackcode.Normalize(code)
	order, err := s.orderRepo.GetByTrackingCode(normalized)
	if err != nil {
		return err
	}
	if order.Status != string(models.OrderDelivered) {
		return models.ErrNotDelivered
	}

	order.CustomerSatisfaction = &rating
	order.CustomerFeedback = feedback
	if err := s.orderRepo.Save(order); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.DeleteTrackingView(ctx, normalized); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Tracking warning: could not invalidate cache for %s: %v", normalized, err)
		}
	}

	return nil
}
