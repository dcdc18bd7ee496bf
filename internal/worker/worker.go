// Package worker consumes the notification queue: outbound WhatsApp
// alerts and CRM aggregate updates. Delivery is at-least-once, so every
// handler must tolerate a duplicate job; effect idempotence (e.g. the
// admin-notified flag) is enforced by the producers.
package worker

import (
	"context"
	"fmt"
	"log"
	"sync"

	"print_shop/internal/models"
	"print_shop/internal/repository"
	"print_shop/internal/services"
)

// Subscriber is the broker consumption contract.
type Subscriber interface {
	Subscribe(ctx context.Context, handler func(context.Context, *models.NotificationJob) error) error
}

type Worker struct {
	broker       Subscriber
	channel      services.ChannelSender
	settingsRepo repository.SettingsRepository
	clientRepo   repository.ClientRepository
	count        int
}

func New(
	broker Subscriber,
	channel services.ChannelSender,
	settingsRepo repository.SettingsRepository,
	clientRepo repository.ClientRepository,
	count int,
) *Worker {
	if count <= 0 {
		count = 1
	}
	return &Worker{
		broker:       broker,
		channel:      channel,
		settingsRepo: settingsRepo,
		clientRepo:   clientRepo,
		count:        count,
	}
}

// Run blocks until the context is cancelled. Multiple consumers run in
// parallel; ordering across jobs is not guaranteed.
func (w *Worker) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < w.count; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if err := w.broker.Subscribe(ctx, w.handle); err != nil && ctx.Err() == nil {
				log.Printf("Worker %d stopped: %v", id, err)
			}
		}(i)
	}
	wg.Wait()
}

func (w *Worker) handle(ctx context.Context, job *models.NotificationJob) error {
	switch job.Type {
	case models.JobAdminAlert:
		return w.sendAdminAlert(job)
	case models.JobCustomerAlert:
		return w.sendCustomerAlert(job)
	case models.JobCRMUpdate:
		return w.applyCRMUpdate(job)
	default:
		// Unknown job types can never succeed; ack and move on.
		log.Printf("Worker: dropping job %s with unknown type %q", job.JobID, job.Type)
		return nil
	}
}

func (w *Worker) sendAdminAlert(job *models.NotificationJob) error {
	settings, err := w.settingsRepo.Get(job.TenantID)
	if err != nil {
		return fmt.Errorf("failed to load settings for job %s: %w", job.JobID, err)
	}
	if settings.AdminPhone == "" {
		// Retrying will not conjure a phone number; drop with a log line.
		log.Printf("Worker: no admin phone for tenant %s, dropping job %s", job.TenantID, job.JobID)
		return nil
	}
	if err := w.channel.Send(settings.AdminPhone, job.Message); err != nil {
		return fmt.Errorf("admin alert %s failed: %w", job.JobID, err)
	}
	return nil
}

func (w *Worker) sendCustomerAlert(job *models.NotificationJob) error {
	if job.Phone == "" {
		log.Printf("Worker: customer alert %s has no phone, dropping", job.JobID)
		return nil
	}
	if err := w.channel.Send(job.Phone, job.Message); err != nil {
		return fmt.Errorf("customer alert %s failed: %w", job.JobID, err)
	}
	return nil
}

func (w *Worker) applyCRMUpdate(job *models.NotificationJob) error {
	if job.CRM == nil {
		log.Printf("Worker: crm job %s has no payload, dropping", job.JobID)
		return nil
	}
	if err := w.clientRepo.ApplyOrder(job.TenantID, job.CRM.ClientName, job.CRM.Source, job.CRM.Amount); err != nil {
		return fmt.Errorf("crm update %s failed: %w", job.JobID, err)
	}
	return nil
}
