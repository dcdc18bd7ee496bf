package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// TemplateMap stores per-status customer message templates as a JSON column.
type TemplateMap map[string]string

func (m TemplateMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (m *TemplateMap) Scan(value interface{}) error {
	if value == nil {
		*m = TemplateMap{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	}
	return errors.New("unsupported type for TemplateMap")
}

type Settings struct {
	ID              uint        `json:"id" gorm:"primaryKey"`
	BusinessName    string      `json:"business_name" gorm:"default:'Global 3D'"`
	AdminPhone      string      `json:"admin_phone"`
	CurrencySymbol  string      `json:"currency_symbol" gorm:"default:'$'"`
	TrackingBaseURL string      `json:"tracking_base_url" gorm:"default:'http://localhost:3000/track'"`
	Templates       TemplateMap `json:"customer_message_templates" gorm:"type:jsonb"`
	TenantID        string      `json:"tenant_id" gorm:"uniqueIndex;not null"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// Template key for the manual "resend tracking code" message.
const TemplateResendTracking = "resend_tracking"

// DefaultTemplates backs any tenant that has no stored template for a
// given status key.
var DefaultTemplates = TemplateMap{
	string(OrderPending):    "Hi {clientName}! Your order {trackingCode} is queued for production. Follow it at {trackingUrl}",
	string(OrderInProgress): "Hi {clientName}! Your order {trackingCode} is now being printed. Follow the progress at {trackingUrl}",
	string(OrderCompleted):  "Good news {clientName}! Your order {trackingCode} is ready for pickup/delivery. Details at {trackingUrl}",
	string(OrderDelivered):  "Thanks for your purchase {clientName}! Your order {trackingCode} is marked as delivered. You can rate your experience at {trackingUrl}",
	string(OrderCancelled):  "Hi {clientName}, your order {trackingCode} was cancelled. Write to us at {businessName} if you want to resume it.",
	TemplateResendTracking:  "Hi {clientName}! Here is your tracking code again: {trackingCode}. Check your order at {trackingUrl}",
}

// DefaultSettings returns the fallback settings used when a tenant has
// no stored row.
func DefaultSettings(tenantID string) *Settings {
	return &Settings{
		BusinessName:    "Global 3D",
		CurrencySymbol:  "$",
		TrackingBaseURL: "http://localhost:3000/track",
		Templates:       TemplateMap{},
		TenantID:        tenantID,
	}
}
