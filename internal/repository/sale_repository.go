package repository

import (
	"time"

	"gorm.io/gorm"

	"print_shop/internal/models"
)

type SaleRepository interface {
	Create(sale *models.Sale) error
	GetByOrderID(tenantID string, orderID uint) ([]models.Sale, error)
	MonthlyRevenue(tenantID string, year int, month time.Month) (float64, error)
}

type saleRepository struct {
	db *gorm.DB
}

func NewSaleRepository(db *gorm.DB) SaleRepository {
	return &saleRepository{db: db}
}

func (r *saleRepository) Create(sale *models.Sale) error {
	return r.db.Create(sale).Error
}

func (r *saleRepository) GetByOrderID(tenantID string, orderID uint) ([]models.Sale, error) {
	var sales []models.Sale
	err := r.db.Where("tenant_id = ? AND order_id = ?", tenantID, orderID).Find(&sales).Error
	return sales, err
}

func (r *saleRepository) MonthlyRevenue(tenantID string, year int, month time.Month) (float64, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	var revenue *float64
	err := r.db.Model(&models.Sale{}).
		Select("SUM(price)").
		Where("tenant_id = ? AND created_at >= ? AND created_at < ?", tenantID, start, end).
		Scan(&revenue).Error
	if err != nil || revenue == nil {
		return 0, err
	}
	return *revenue, nil
}
