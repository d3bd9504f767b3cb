package model

import "time"

// Booking statuses.  cancelled and completed are terminal; a booking in
// either state is immutable.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
	BookingCompleted = "completed"
)

// Booking reserves a table for a half-open time interval [StartTime,
// EndTime) under an approved coach/student relation.  It is created pending,
// confirmed by the coach, and either cancelled through the policy-gated
// cancellation flow or swept to completed once its end time has passed.
//
// Fields:
//  ID            – primary key identifier.
//  RelationID    – approved relation the session belongs to.
//  TableID       – reserved table.
//  StartTime     – session start (UTC).
//  EndTime       – session end (UTC), strictly after StartTime.
//  DurationHours – derived length in hours, one decimal place.
//  FeeCents      – coach hourly rate × duration, in cents.
//  Status        – lifecycle state.
//  ConfirmedAt   – when the coach confirmed (nil unless confirmed).
//  CancelledAt   – when the booking was cancelled.
//  CancelledBy   – user who cancelled; feeds the monthly quota count.
//  CancelReason  – free-text reason supplied on cancellation.
//  Notes         – free-text note supplied on creation.
type Booking struct {
	ID            uint64     // bookings.id
	RelationID    uint64     // bookings.relation_id
	TableID       uint64     // bookings.table_id
	StartTime     time.Time  // bookings.start_time
	EndTime       time.Time  // bookings.end_time
	DurationHours float64    // bookings.duration_hours
	FeeCents      uint32     // bookings.fee_cents
	Status        string     // bookings.status
	ConfirmedAt   *time.Time // bookings.confirmed_at (nullable)
	CancelledAt   *time.Time // bookings.cancelled_at (nullable)
	CancelledBy   *uint64    // bookings.cancelled_by (nullable)
	CancelReason  *string    // bookings.cancel_reason (nullable)
	Notes         *string    // bookings.notes (nullable)
	CreatedAt     time.Time  // bookings.created_at
	UpdatedAt     time.Time  // bookings.updated_at
}

// IsFinal reports whether the booking reached a terminal state.
func (b *Booking) IsFinal() bool {
	return b.Status == BookingCancelled || b.Status == BookingCompleted
}
