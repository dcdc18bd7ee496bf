package models

// Notification job types carried on the broker queue.
const (
	JobAdminAlert    = "admin-alert"
	JobCustomerAlert = "customer-alert"
	JobCRMUpdate     = "crm-update"
)

// NotificationJob is the wire payload for queued work. Delivery is
// at-least-once; consumers must tolerate duplicates.
type NotificationJob struct {
	JobID    string  `json:"job_id"`
	Type     string  `json:"type"`
	TenantID string  `json:"tenant_id"`
	Phone    string  `json:"phone,omitempty"`
	Message  string  `json:"message,omitempty"`
	CRM      *CRMJob `json:"crm,omitempty"`
}

// CRMJob carries the aggregate delta applied after an order is created.
type CRMJob struct {
	ClientName string  `json:"client_name"`
	Source     string  `json:"source"`
	Amount     float64 `json:"amount"`
}
