// Package queue defines the notification events the reservation core emits
// and the RabbitMQ plumbing around them.  Delivery is best effort: the core
// publishes after its transaction commits, logs failures and never retries.
package queue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventsQueueName is the durable queue all reservation events go to.
const EventsQueueName = "reservation.events"

// Event types carried in the envelope.
const (
	TypeRelationDecided    = "relation.decided"
	TypeBookingCancelled   = "booking.cancelled"
	TypeCoachChangeDecided = "coachchange.decided"
)

// Envelope wraps every published event with a unique ID and type so the
// notification consumer can dispatch without knowing the payload shape in
// advance.
type Envelope struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	EmittedAt string          `json:"emitted_at"`
	Payload   json.RawMessage `json:"payload"`
}

// NewEnvelope builds an envelope around the marshalled payload.
func NewEnvelope(eventType string, payload any) (*Envelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Envelope{
		EventID:   uuid.NewString(),
		EventType: eventType,
		EmittedAt: time.Now().UTC().Format(time.RFC3339),
		Payload:   body,
	}, nil
}

// RelationDecidedEvent is published when a pending coach/student application
// is approved or rejected.
type RelationDecidedEvent struct {
	RelationID uint64 `json:"relation_id"`
	CoachID    uint64 `json:"coach_id"`
	StudentID  uint64 `json:"student_id"`
	Decision   string `json:"decision"` // approved or rejected
	DecidedBy  uint64 `json:"decided_by"`
	DecidedAt  string `json:"decided_at"`
}

// BookingCancelledEvent is published when a cancellation passes the policy
// enforcer and commits.
type BookingCancelledEvent struct {
	BookingID   uint64 `json:"booking_id"`
	RelationID  uint64 `json:"relation_id"`
	TableID     uint64 `json:"table_id"`
	StartTime   string `json:"start_time"`
	CancelledBy uint64 `json:"cancelled_by"`
	Reason      string `json:"reason,omitempty"`
	CancelledAt string `json:"cancelled_at"`
}

// CoachChangeDecidedEvent is published when a coach-change request reaches a
// terminal state.
type CoachChangeDecidedEvent struct {
	RequestID      uint64 `json:"request_id"`
	StudentID      uint64 `json:"student_id"`
	CurrentCoachID uint64 `json:"current_coach_id"`
	TargetCoachID  uint64 `json:"target_coach_id"`
	Decision       string `json:"decision"` // approved or rejected
	DecidedBy      uint64 `json:"decided_by"`
	DecidedAt      string `json:"decided_at"`
}
