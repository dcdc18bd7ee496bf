package models

import (
	"time"

	"gorm.io/gorm"
)

// Product is the catalog entry consulted during order cost enrichment.
// Catalog CRUD itself lives outside the fulfillment core.
type Product struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"not null"`
	Cost      float64        `json:"cost" gorm:"default:0"`
	Price     float64        `json:"price" gorm:"default:0"`
	Category  string         `json:"category" gorm:"default:'general'"`
	TenantID  string         `json:"tenant_id" gorm:"not null;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}
