package queue

import (
	"context"
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/algovyborg/lesson-payments/internal/infra/http/middleware"
	"github.com/algovyborg/lesson-payments/internal/usecase"
)

// LeadProcessor is the reconciliation entry point for webhook-delivered
// leads.
type LeadProcessor interface {
	ProcessLead(ctx context.Context, leadID int) usecase.ProcessOutcome
}

type Worker struct {
	Channel   *amqp.Channel
	Processor LeadProcessor
}

func NewWorker(ch *amqp.Channel, processor LeadProcessor) *Worker {
	return &Worker{
		Channel:   ch,
		Processor: processor,
	}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack: manual so malformed messages can go to the DLQ
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		log.Fatalf("❌ failed to register RabbitMQ consumer: %s", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var payload LeadQueuedPayload
			if err := json.Unmarshal(d.Body, &payload); err != nil {
				log.Printf("❌ [WORKER] invalid JSON, rejecting to DLQ: %s", err)
				d.Nack(false, false)
				continue
			}

			log.Printf("📥 [WORKER] processing lead %d (origin %s)", payload.LeadID, payload.Origin)

			out := w.Processor.ProcessLead(context.Background(), payload.LeadID)
			middleware.RecordEventOutcome(out)

			// The orchestrator guarantees one terminal outcome either way, so
			// the message is done regardless of success.
			if out.Success {
				log.Printf("✅ [WORKER] lead %d reconciled", payload.LeadID)
			} else {
				log.Printf("⚠️ [WORKER] lead %d dead-lettered: %s", payload.LeadID, out.Reason)
			}
			d.Ack(false)
		}
	}()

	log.Printf(" [*] Worker running, waiting on queue %q", queueName)
	<-forever
}
