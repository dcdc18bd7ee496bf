package services

import (
	"log"

	"print_shop/internal/models"
	"print_shop/internal/repository"
)

// Enrichment is the financial outcome of pricing an item list at order
// creation time.
type Enrichment struct {
	Items           []models.OrderItem
	Total           float64
	EstimatedCost   float64
	EstimatedProfit float64
}

type PricingService interface {
	EnrichItems(tenantID string, items []models.OrderItem) Enrichment
}

type pricingService struct {
	productRepo repository.ProductRepository
}

func NewPricingService(productRepo repository.ProductRepository) PricingService {
	return &pricingService{productRepo: productRepo}
}

// EnrichItems fills per-item unit costs from the catalog and computes
// order totals. A missing product or a failed lookup contributes zero
// cost instead of failing the order: a transient catalog issue must
// never block intake.
func (s *pricingService) EnrichItems(tenantID string, items []models.OrderItem) Enrichment {
	var total, cost float64

	for i := range items {
		item := &items[i]
		item.UnitCost = 0

		if !item.IsCustom && item.ProductID != nil {
			product, err := s.productRepo.GetByID(tenantID, *item.ProductID)
			if err != nil {
				log.Printf("Pricing warning: product %d lookup failed, assuming zero cost: %v", *item.ProductID, err)
			} else {
				item.UnitCost = product.Cost
			}
		}

		total += item.UnitPrice * float64(item.Quantity)
		cost += item.UnitCost * float64(item.Quantity)
	}

	return Enrichment{
		Items:           items,
		Total:           total,
		EstimatedCost:   cost,
		EstimatedProfit: total - cost,
	}
}

// ItemsTotal recomputes an order total from its item list. Used on item
// edits, which adjust the total without re-running cost enrichment.
func ItemsTotal(items []models.OrderItem) float64 {
	var total float64
	for _, item := range items {
		total += item.UnitPrice * float64(item.Quantity)
	}
	return total
}
