package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"print_shop/internal/models"
)

type OrderFilter struct {
	Status string
	From   *time.Time
	To     *time.Time
	Page   int
	Limit  int
}

type StatusCount struct {
	Status string
	Count  int64
}

type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(tenantID string, id uint) (*models.Order, error)
	GetByTrackingCode(code string) (*models.Order, error)
	List(tenantID string, filter OrderFilter) ([]models.Order, int64, error)
	Save(order *models.Order) error
	ReplaceItems(orderID uint, items []models.OrderItem) error
	ReplaceFiles(orderID uint, files []models.OrderFile) error
	CountByStatus(tenantID string) ([]StatusCount, error)
	AverageSatisfaction(tenantID string) (float64, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

func (r *orderRepository) GetByID(tenantID string, id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").Preload("Files").
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// GetByTrackingCode is the only lookup not scoped to a tenant: the code
// itself is the public capability.
func (r *orderRepository) GetByTrackingCode(code string) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").
		Where("tracking_code = ?", code).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) List(tenantID string, filter OrderFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{}).Where("tenant_id = ?", tenantID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	var orders []models.Order
	err := query.Preload("Items").
		Order("created_at DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&orders).Error
	return orders, total, err
}

func (r *orderRepository) Save(order *models.Order) error {
	// Omit associations: item/file changes go through ReplaceItems and
	// ReplaceFiles so stale slices never resurrect deleted rows.
	return r.db.Omit("Items", "Files").Save(order).Error
}

func (r *orderRepository) ReplaceItems(orderID uint, items []models.OrderItem) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].ID = 0
			items[i].OrderID = orderID
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

func (r *orderRepository) ReplaceFiles(orderID uint, files []models.OrderFile) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderFile{}).Error; err != nil {
			return err
		}
		for i := range files {
			files[i].ID = 0
			files[i].OrderID = orderID
		}
		if len(files) == 0 {
			return nil
		}
		return tx.Create(&files).Error
	})
}

func (r *orderRepository) CountByStatus(tenantID string) ([]StatusCount, error) {
	var counts []StatusCount
	err := r.db.Model(&models.Order{}).
		Select("status, COUNT(*) as count").
		Where("tenant_id = ?", tenantID).
		Group("status").
		Scan(&counts).Error
	return counts, err
}

func (r *orderRepository) AverageSatisfaction(tenantID string) (float64, error) {
	var avg *float64
	err := r.db.Model(&models.Order{}).
		Select("AVG(customer_satisfaction)").
		Where("tenant_id = ? AND customer_satisfaction IS NOT NULL", tenantID).
		Scan(&avg).Error
	if err != nil || avg == nil {
		return 0, err
	}
	return *avg, nil
}
