package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// LeadQueuedPayload is one webhook lead action handed to the worker.
type LeadQueuedPayload struct {
	LeadID    int    `json:"lead_id"`
	Subdomain string `json:"subdomain"`
	Origin    string `json:"origin"`
}

type ProducerInterface interface {
	PublishLead(ctx context.Context, payload LeadQueuedPayload) error
}

type RabbitMQProducer struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewProducer(conn *amqp.Connection, ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{
		Conn: conn,
		Ch:   ch,
	}
}

func (p *RabbitMQProducer) PublishLead(ctx context.Context, payload LeadQueuedPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal lead payload: %w", err)
	}

	return p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}
