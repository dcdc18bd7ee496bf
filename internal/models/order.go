package models

import (
	"time"

	"gorm.io/gorm"
)

type Order struct {
	ID                   uint           `json:"id" gorm:"primaryKey"`
	TrackingCode         string         `json:"tracking_code" gorm:"uniqueIndex;not null"`
	ClientName           string         `json:"client_name" gorm:"not null"`
	CustomerContact      string         `json:"customer_contact"`
	Origin               string         `json:"origin" gorm:"default:'local'"`
	PaymentMethod        string         `json:"payment_method" gorm:"default:'cash'"`
	Deposit              float64        `json:"deposit"`
	Notes                string         `json:"notes" gorm:"type:text"`
	DueDate              *time.Time     `json:"due_date"`
	Items                []OrderItem    `json:"items" gorm:"foreignKey:OrderID"`
	Files                []OrderFile    `json:"files" gorm:"foreignKey:OrderID"`
	Total                float64        `json:"total" gorm:"not null"`
	EstimatedCost        float64        `json:"estimated_cost"`
	Profit               float64        `json:"profit"`
	Status               string         `json:"status" gorm:"default:'pending';index"`
	PrintTimeMinutes     int            `json:"print_time_minutes"`
	StartedAt            *time.Time     `json:"started_at"`
	FinishedAt           *time.Time     `json:"finished_at"`
	AdminNotified        bool           `json:"admin_notified" gorm:"default:false"`
	IsSaleRegistered     bool           `json:"is_sale_registered" gorm:"default:false"`
	CustomerSatisfaction *int           `json:"customer_satisfaction"`
	CustomerFeedback     string         `json:"customer_feedback" gorm:"type:text"`
	TenantID             string         `json:"tenant_id" gorm:"not null;index"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

type OrderFile struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	OrderID uint   `json:"order_id" gorm:"not null;index"`
	Name    string `json:"name"`
	URL     string `json:"url"`
}

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderInProgress OrderStatus = "in_progress"
	OrderCompleted  OrderStatus = "completed"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// StatusSteps is the canonical production path used for public progress
// reporting. Cancelled is not a step.
var StatusSteps = []OrderStatus{OrderPending, OrderInProgress, OrderCompleted, OrderDelivered}

func IsValidStatus(s string) bool {
	switch OrderStatus(s) {
	case OrderPending, OrderInProgress, OrderCompleted, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

func IsTerminalStatus(s OrderStatus) bool {
	return s == OrderDelivered || s == OrderCancelled
}
