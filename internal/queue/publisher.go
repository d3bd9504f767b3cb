package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends reservation events to RabbitMQ.  Every publish dials a
// fresh connection and never panics; errors are logged and returned so the
// caller can ignore them without affecting the committed transaction.
type Publisher struct {
	url string
}

// NewPublisher returns a publisher for the given AMQP URL.
func NewPublisher(url string) *Publisher {
	return &Publisher{url: url}
}

// Publish wraps the payload in an envelope and delivers it to the durable
// reservation.events queue as a persistent message.
func (p *Publisher) Publish(ctx context.Context, eventType string, payload any) error {
	env, err := NewEnvelope(eventType, payload)
	if err != nil {
		log.Printf("queue: marshal %s event failed: %v", eventType, err)
		return err
	}
	body, err := json.Marshal(env)
	if err != nil {
		log.Printf("queue: marshal envelope failed: %v", err)
		return err
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Printf("queue: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("queue: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so events survive broker restarts.
	if _, err := ch.QueueDeclare(EventsQueueName, true, false, false, false, nil); err != nil {
		log.Printf("queue: queue declare failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    env.EventID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", EventsQueueName, false, false, pub); err != nil {
		log.Printf("queue: publish %s failed: %v", eventType, err)
		return err
	}
	return nil
}
