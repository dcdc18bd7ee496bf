package broker

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"print_shop/internal/models"
)

// NotificationsQueue is the single durable work queue for outbound
// notifications and CRM aggregate updates.
const NotificationsQueue = "notifications"

type Client struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func Dial(url string) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(
		NotificationsQueue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	return &Client{conn: conn, ch: ch}, nil
}

// Enqueue publishes a job as a persistent message. Once accepted the job
// is owned by the broker; delivery is at-least-once.
func (c *Client) Enqueue(ctx context.Context, job *models.NotificationJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	return c.ch.PublishWithContext(
		ctx,
		"", // default exchange
		NotificationsQueue,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
		},
	)
}

// Subscribe delivers queued jobs to handler. A nil handler error acks
// the message; an error nacks it back onto the queue for redelivery.
func (c *Client) Subscribe(ctx context.Context, handler func(context.Context, *models.NotificationJob) error) error {
	if err := c.ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	deliveries, err := c.ch.Consume(
		NotificationsQueue,
		"",    // consumer tag
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("broker channel closed")
			}
			var job models.NotificationJob
			if err := json.Unmarshal(d.Body, &job); err != nil {
				// Malformed payloads can never succeed; drop them.
				d.Nack(false, false)
				continue
			}
			if err := handler(ctx, &job); err != nil {
				d.Nack(false, true)
				continue
			}
			d.Ack(false)
		}
	}
}

func (c *Client) Close() {
	if c.ch != nil {
		c.ch.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
}
