package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"print_shop/internal/models"
	"print_shop/internal/repository"
)

// Enqueuer is the async broker contract. Enqueued jobs are owned by the
// broker and delivered at least once.
type Enqueuer interface {
	Enqueue(ctx context.Context, job *models.NotificationJob) error
}

// ChannelSender is the direct messaging channel (WhatsApp gateway).
type ChannelSender interface {
	Send(phone, message string) error
}

// Dispatcher delivers a rendered message to the admin or a customer.
// The returned bool reports whether delivery was handed off; callers
// must treat false as a non-fatal outcome.
type Dispatcher interface {
	NotifyAdmin(ctx context.Context, tenantID, message string) (bool, error)
	NotifyCustomer(ctx context.Context, tenantID, phone, message string) (bool, error)
}

// QueuedDispatcher hands messages to the broker and reports success as
// soon as the job is enqueued. Retries are the broker's policy.
type QueuedDispatcher struct {
	queue Enqueuer
}

func NewQueuedDispatcher(queue Enqueuer) *QueuedDispatcher {
	return &QueuedDispatcher{queue: queue}
}

func (d *QueuedDispatcher) NotifyAdmin(ctx context.Context, tenantID, message string) (bool, error) {
	err := d.queue.Enqueue(ctx, &models.NotificationJob{
		JobID:    uuid.NewString(),
		Type:     models.JobAdminAlert,
		TenantID: tenantID,
		Message:  message,
	})
	if err != nil {
		return false, fmt.Errorf("%w: %v", models.ErrUpstreamUnavailable, err)
	}
	return true, nil
}

func (d *QueuedDispatcher) NotifyCustomer(ctx context.Context, tenantID, phone, message string) (bool, error) {
	err := d.queue.Enqueue(ctx, &models.NotificationJob{
		JobID:    uuid.NewString(),
		Type:     models.JobCustomerAlert,
		TenantID: tenantID,
		Phone:    phone,
		Message:  message,
	})
	if err != nil {
		return false, fmt.Errorf("%w: %v", models.ErrUpstreamUnavailable, err)
	}
	return true, nil
}

// DirectDispatcher sends synchronously through the messaging channel.
// Used when no broker is configured; the channel may genuinely fail or
// not be ready, so the result reflects the actual send.
type DirectDispatcher struct {
	channel      ChannelSender
	settingsRepo repository.SettingsRepository
}

func NewDirectDispatcher(channel ChannelSender, settingsRepo repository.SettingsRepository) *DirectDispatcher {
	return &DirectDispatcher{channel: channel, settingsRepo: settingsRepo}
}

func (d *DirectDispatcher) NotifyAdmin(ctx context.Context, tenantID, message string) (bool, error) {
	settings, err := d.settingsRepo.Get(tenantID)
	if err != nil {
		return false, err
	}
	if settings.AdminPhone == "" {
		return false, fmt.Errorf("no admin phone configured for tenant %s", tenantID)
	}
	if err := d.channel.Send(settings.AdminPhone, message); err != nil {
		return false, fmt.Errorf("%w: %v", models.ErrUpstreamUnavailable, err)
	}
	return true, nil
}

func (d *DirectDispatcher) NotifyCustomer(ctx context.Context, tenantID, phone, message string) (bool, error) {
	if err := d.channel.Send(phone, message); err != nil {
		return false, fmt.Errorf("%w: %v", models.ErrUpstreamUnavailable, err)
	}
	return true, nil
}

// RenderTemplate substitutes {placeholder} markers literally. The
// channel is plain text, so there is no escaping; unknown placeholders
// stay as written.
func RenderTemplate(template string, vars map[string]string) string {
	out := template
	for key, value := range vars {
		out = strings.ReplaceAll(out, "{"+key+"}", value)
	}
	return out
}

// TrackingURL builds the public link carried in customer messages.
func TrackingURL(baseURL, code string) string {
	return strings.TrimRight(baseURL, "/") + "?code=" + url.QueryEscape(code)
}

// NotificationService renders per-tenant templates and pushes them
// through the configured dispatcher. Every send failure here is logged
// and absorbed: notifications are side effects of a transition, never
// preconditions for it.
type NotificationService interface {
	NotifyStatusChange(ctx context.Context, order *models.Order)
	NotifyAdminOrderFinished(ctx context.Context, order *models.Order)
	ResendTracking(ctx context.Context, order *models.Order) error
}

type notificationService struct {
	dispatcher   Dispatcher
	settingsRepo repository.SettingsRepository
}

func NewNotificationService(dispatcher Dispatcher, settingsRepo repository.SettingsRepository) NotificationService {
	return &notificationService{dispatcher: dispatcher, settingsRepo: settingsRepo}
}

func (s *notificationService) templateFor(settings *models.Settings, key string) string {
	if settings.Templates != nil {
		if tpl, ok := settings.Templates[key]; ok && tpl != "" {
			return tpl
		}
	}
	if tpl, ok := models.DefaultTemplates[key]; ok {
		return tpl
	}
	// Statuses without a dedicated template reuse the pending one.
	return models.DefaultTemplates[string(models.OrderPending)]
}

func (s *notificationService) renderFor(order *models.Order, key string) (string, error) {
	settings, err := s.settingsRepo.Get(order.TenantID)
	if err != nil {
		return "", err
	}
	tpl := s.templateFor(settings, key)
	return RenderTemplate(tpl, map[string]string{
		"clientName":   order.ClientName,
		"trackingCode": order.TrackingCode,
		"status":       order.Status,
		"trackingUrl":  TrackingURL(settings.TrackingBaseURL, order.TrackingCode),
		"businessName": settings.BusinessName,
	}), nil
}

func (s *notificationService) NotifyStatusChange(ctx context.Context, order *models.Order) {
	if order.CustomerContact == "" {
		return
	}
	message, err := s.renderFor(order, order.Status)
	if err != nil {
		log.Printf("Notification warning: could not render message for order %d: %v", order.ID, err)
		return
	}
	if _, err := s.dispatcher.NotifyCustomer(ctx, order.TenantID, order.CustomerContact, message); err != nil {
		log.Printf("Notification warning: customer alert for order %d failed: %v", order.ID, err)
	}
}

func (s *notificationService) NotifyAdminOrderFinished(ctx context.Context, order *models.Order) {
	names := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		names = append(names, item.ProductName)
	}
	message := fmt.Sprintf("PRINT FINISHED\nClient: %s\nItems: %s\nMachine released and ready.",
		order.ClientName, strings.Join(names, ", "))

	if _, err := s.dispatcher.NotifyAdmin(ctx, order.TenantID, message); err != nil {
		log.Printf("Notification warning: admin alert for order %d failed: %v", order.ID, err)
	}
}

func (s *notificationService) ResendTracking(ctx context.Context, order *models.Order) error {
	if order.CustomerContact == "" {
		return models.NewValidationError("customer_contact", "order has no customer contact")
	}
	message, err := s.renderFor(order, models.TemplateResendTracking)
	if err != nil {
		return err
	}
	if _, err := s.dispatcher.NotifyCustomer(ctx, order.TenantID, order.CustomerContact, message); err != nil {
		return err
	}
	return nil
}
