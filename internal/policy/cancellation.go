// Package policy implements the cancellation rules as a pure decision
// function.  The booking engine consults Evaluate inside the cancellation
// transaction and commits only on Allow, so the decision and the mutation
// are never observably separated.
package policy

import (
	"time"

	"github.com/ttcenter/reservation-api/internal/model"
)

// Policy constants.  Both values replicate the production rules of the
// training center: a 24-hour cancellation floor and at most three
// cancellations per calendar month per user.  The quota window is the
// calendar month containing "now", not a rolling 30 days.
const (
	CancelNotice       = 24 * time.Hour
	MonthlyCancelLimit = 3
)

// Reason is a machine-readable denial code surfaced to API clients.
type Reason string

const (
	ReasonAlreadyFinal Reason = "ALREADY_FINAL"
	ReasonTooLate      Reason = "TOO_LATE_TO_CANCEL"
	ReasonMonthlyQuota Reason = "MONTHLY_QUOTA_EXCEEDED"
)

// Violation is the error returned when a cancellation is denied.  It
// satisfies the error interface so services can return it unchanged and
// handlers can map it to an HTTP response.
type Violation struct {
	Reason  Reason
	Message string
}

func (v *Violation) Error() string { return v.Message }

func deny(r Reason, msg string) *Violation { return &Violation{Reason: r, Message: msg} }

// Evaluate decides whether actorID may cancel the booking at instant now.
// monthlyCancelCount is the number of bookings the actor has already
// cancelled within the calendar month containing now, counted before this
// cancellation is recorded.  It returns nil to allow, or a *Violation.
func Evaluate(b *model.Booking, actorID uint64, now time.Time, monthlyCancelCount int) error {
	if b.IsFinal() {
		return deny(ReasonAlreadyFinal, "booking is already "+b.Status)
	}
	if !now.Before(b.StartTime.Add(-CancelNotice)) {
		return deny(ReasonTooLate, "bookings cannot be cancelled less than 24 hours before start")
	}
	if monthlyCancelCount >= MonthlyCancelLimit {
		return deny(ReasonMonthlyQuota, "monthly cancellation limit (3) reached")
	}
	return nil
}

// MonthWindow returns the half-open UTC interval [start, end) of the
// calendar month containing now.  Repositories use it to count an actor's
// cancellations for the quota rule.
func MonthWindow(now time.Time) (start, end time.Time) {
	u := now.UTC()
	start = time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, 0)
	return start, end
}
