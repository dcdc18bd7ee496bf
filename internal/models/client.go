package models

import (
	"time"
)

// Client is the per-customer CRM aggregate, keyed by name within a tenant.
type Client struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	Name          string     `json:"name" gorm:"not null;uniqueIndex:idx_clients_tenant_name"`
	Phone         string     `json:"phone"`
	SocialHandle  string     `json:"social_handle"`
	Source        string     `json:"source" gorm:"default:'local'"`
	TotalSpent    float64    `json:"total_spent" gorm:"default:0"`
	OrderCount    int        `json:"order_count" gorm:"default:0"`
	LastOrderDate *time.Time `json:"last_order_date"`
	Notes         string     `json:"notes" gorm:"type:text"`
	TenantID      string     `json:"tenant_id" gorm:"not null;uniqueIndex:idx_clients_tenant_name"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
