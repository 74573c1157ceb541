package notify

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/fieldops-dev/shift-scheduler/backend/internal/domain"
)

// QueueName is shared with the notifier worker.
const QueueName = "assignment_events"

// Publisher pushes assignment-change events onto the notification queue.
// Publishing is best effort from the caller's perspective: a failed publish
// never rolls back the assignment itself.
type Publisher struct {
	channel *amqp.Channel
	timeout time.Duration
}

func NewPublisher(channel *amqp.Channel, timeout time.Duration) *Publisher {
	return &Publisher{
		channel: channel,
		timeout: timeout,
	}
}

func (p *Publisher) AssignmentChanged(event *domain.AssignmentEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	return p.channel.PublishWithContext(ctx,
		"",        // default exchange
		QueueName, // routing key
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}
