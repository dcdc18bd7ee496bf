package models

import (
	"time"
)

// Sale is the immutable ledger entry written when an order is delivered.
// Rows are never updated after creation.
type Sale struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	OrderID     uint      `json:"order_id" gorm:"not null;index"`
	ProductName string    `json:"product_name" gorm:"not null"`
	Quantity    int       `json:"quantity" gorm:"not null;default:1"`
	Price       float64   `json:"price" gorm:"not null"`
	Cost        float64   `json:"cost" gorm:"not null;default:0"`
	Profit      float64   `json:"profit" gorm:"not null"`
	Category    string    `json:"category" gorm:"not null;default:'general'"`
	TenantID    string    `json:"tenant_id" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at"`
}

// SaleCategoryService marks sales produced by order delivery, as opposed
// to direct catalog/stock sales.
const SaleCategoryService = "service"
