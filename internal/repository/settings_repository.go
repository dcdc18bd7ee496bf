package repository

import (
	"errors"

	"gorm.io/gorm"

	"print_shop/internal/models"
)

type SettingsRepository interface {
	// Get returns the tenant's settings, or the hardcoded defaults when
	// no row exists. It never returns ErrNotFound.
	Get(tenantID string) (*models.Settings, error)
	Save(settings *models.Settings) error
}

type settingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(tenantID string) (*models.Settings, error) {
	var settings models.Settings
	err := r.db.Where("tenant_id = ?", tenantID).First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.DefaultSettings(tenantID), nil
		}
		return nil, err
	}
	return &settings, nil
}

func (r *settingsRepository) Save(settings *models.Settings) error {
	return r.db.Save(settings).Error
}
