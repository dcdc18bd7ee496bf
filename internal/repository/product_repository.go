package repository

import (
	"errors"

	"gorm.io/gorm"

	"print_shop/internal/models"
)

// ProductRepository is the read-only catalog view the fulfillment core
// consults during cost enrichment. Catalog CRUD lives elsewhere.
type ProductRepository interface {
	GetByID(tenantID string, id uint) (*models.Product, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) GetByID(tenantID string, id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}
