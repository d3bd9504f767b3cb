package queue

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartNotificationConsumer connects to RabbitMQ and consumes the
// reservation.events queue, appending one human-readable line per event to
// logs/notifications.log.  This stands in for the notification delivery
// system: the core only guarantees that events reach the queue.  The
// function runs a reconnect loop with exponential backoff and never
// returns; run it in its own goroutine.
func StartNotificationConsumer(url string) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("notification-consumer: dial failed: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeLoop(conn); err != nil {
			log.Printf("notification-consumer: consume loop ended: %v; reconnecting", err)
		}
		_ = conn.Close()
		time.Sleep(2 * time.Second)
	}
}

func consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("notification-consumer: set QoS failed: %v", err)
	}
	if _, err := ch.QueueDeclare(EventsQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(EventsQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body); err != nil {
			log.Printf("notification-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return fmt.Errorf("delivery channel closed")
}

func handleMessage(body []byte) error {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("unmarshal envelope: %w", err)
	}
	line, err := formatLine(&env)
	if err != nil {
		return err
	}
	return appendLogLine(line)
}

// formatLine renders one event as a single log line.  Unknown event types
// are logged with their raw payload so nothing is silently dropped.
func formatLine(env *Envelope) (string, error) {
	prefix := fmt.Sprintf("%s [%s] %s", env.EmittedAt, env.EventType, env.EventID)
	switch env.EventType {
	case TypeRelationDecided:
		var ev RelationDecidedEvent
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s relation=%d coach=%d student=%d decision=%s by=%d",
			prefix, ev.RelationID, ev.CoachID, ev.StudentID, ev.Decision, ev.DecidedBy), nil
	case TypeBookingCancelled:
		var ev BookingCancelledEvent
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s booking=%d relation=%d table=%d start=%s by=%d reason=%q",
			prefix, ev.BookingID, ev.RelationID, ev.TableID, ev.StartTime, ev.CancelledBy, ev.Reason), nil
	case TypeCoachChangeDecided:
		var ev CoachChangeDecidedEvent
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s request=%d student=%d current_coach=%d target_coach=%d decision=%s by=%d",
			prefix, ev.RequestID, ev.StudentID, ev.CurrentCoachID, ev.TargetCoachID, ev.Decision, ev.DecidedBy), nil
	default:
		return fmt.Sprintf("%s payload=%s", prefix, string(env.Payload)), nil
	}
}

func appendLogLine(line string) error {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("create logs dir: %w", err)
	}
	path := filepath.Join("logs", "notifications.log")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("write log line: %w", err)
	}
	return nil
}
