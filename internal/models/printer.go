package models

import (
	"time"
)

type Printer struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	Name           string     `json:"name" gorm:"not null"`
	PrinterModel   string     `json:"printer_model" gorm:"default:'generic'"`
	Status         string     `json:"status" gorm:"default:'idle'"`
	CurrentOrderID *uint      `json:"current_order_id"`
	TenantID       string     `json:"tenant_id" gorm:"not null;index"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type PrinterStatus string

const (
	PrinterIdle        PrinterStatus = "idle"
	PrinterPrinting    PrinterStatus = "printing"
	PrinterMaintenance PrinterStatus = "maintenance"
)
