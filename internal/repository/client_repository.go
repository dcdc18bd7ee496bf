package repository

import (
	"time"

	"gorm.io/gorm"

	"print_shop/internal/models"
)

type ClientRepository interface {
	ApplyOrder(tenantID, name, source string, amount float64) error
	GetByName(tenantID, name string) (*models.Client, error)
}

type clientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

// ApplyOrder bumps the per-client aggregates for one new order. The
// increments are expressions evaluated in the database, so concurrent
// orders for the same client never lose updates.
func (r *clientRepository) ApplyOrder(tenantID, name, source string, amount float64) error {
	now := time.Now()

	increment := func() (int64, error) {
		result := r.db.Model(&models.Client{}).
			Where("tenant_id = ? AND name = ?", tenantID, name).
			Updates(map[string]interface{}{
				"total_spent":     gorm.Expr("total_spent + ?", amount),
				"order_count":     gorm.Expr("order_count + 1"),
				"last_order_date": now,
			})
		return result.RowsAffected, result.Error
	}

	affected, err := increment()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	client := &models.Client{
		Name:          name,
		Source:        source,
		TotalSpent:    amount,
		OrderCount:    1,
		LastOrderDate: &now,
		TenantID:      tenantID,
	}
	if err := r.db.Create(client).Error; err != nil {
		// A concurrent create may have won the unique (tenant, name)
		// index; fall back to incrementing the winner's row.
		if affected, incErr := increment(); incErr == nil && affected > 0 {
			return nil
		}
		return err
	}
	return nil
}

func (r *clientRepository) GetByName(tenantID, name string) (*models.Client, error) {
	var client models.Client
	err := r.db.Where("tenant_id = ? AND name = ?", tenantID, name).First(&client).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &client, nil
}
