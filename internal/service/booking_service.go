package service

import (
	"context"
	"time"

	"github.com/ttcenter/reservation-api/internal/model"
	"github.com/ttcenter/reservation-api/internal/policy"
	"github.com/ttcenter/reservation-api/internal/queue"
	"github.com/ttcenter/reservation-api/internal/repository"
)

// BookingService runs the table booking lifecycle.  Creation serializes on
// the table's overlapping rows, cancellation is gated by the policy package,
// and completion is swept by a background loop.
type BookingService struct {
	bookings  *repository.BookingRepo
	relations *repository.RelationRepo
	tables    *repository.TableRepo
	users     *repository.UserRepo
	events    *queue.Publisher
}

// NewBookingService wires the booking use cases.  events may be nil when
// notifications are disabled.
func NewBookingService(bookings *repository.BookingRepo, relations *repository.RelationRepo, tables *repository.TableRepo, users *repository.UserRepo, events *queue.Publisher) *BookingService {
	if bookings == nil || relations == nil || tables == nil || users == nil {
		panic("nil repository passed to NewBookingService")
	}
	return &BookingService{bookings: bookings, relations: relations, tables: tables, users: users, events: events}
}

// CreateBookingInput carries the validated request fields for Create.
type CreateBookingInput struct {
	RelationID uint64
	TableID    uint64
	StartTime  time.Time
	EndTime    time.Time
	Notes      *string
}

// Create reserves a table for the interval [StartTime, EndTime) under an
// approved relation the actor belongs to.  The relation and table are read
// under row locks inside the same transaction as the insert, so a concurrent
// termination or table status change cannot land between the checks and the
// write.  The overlap check locks the conflicting rows, so of two concurrent
// requests for the same table and window exactly one commits; the other sees
// the winner's row and fails with ErrTimeConflict.  The fee is computed from
// the coach's hourly rate at creation time and frozen on the row.
func (s *BookingService) Create(ctx context.Context, actor *model.User, in CreateBookingInput) (*model.Booking, error) {
	if !actor.Role.Can(model.CapBookingCreate) {
		return nil, repository.ErrInvalidRole
	}
	now := time.Now().UTC()
	if !in.EndTime.After(in.StartTime) || !in.StartTime.After(now) {
		return nil, repository.ErrInvalidTimeRange
	}

	tx, err := s.bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	rel, err := s.relations.GetByIDTx(ctx, tx, in.RelationID)
	if err != nil {
		return nil, err
	}
	if !rel.IsParty(actor.ID) {
		return nil, repository.ErrForbidden
	}
	if rel.Status != model.RelationApproved {
		return nil, repository.ErrRelationNotApproved
	}
	table, err := s.tables.GetByIDTx(ctx, tx, in.TableID)
	if err != nil {
		return nil, err
	}
	if !table.Bookable() {
		return nil, repository.ErrResourceUnavailable
	}

	conflicts, err := s.bookings.LockOverlappingTx(ctx, tx, in.TableID, in.StartTime, in.EndTime)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, repository.ErrTimeConflict
	}
	rate, err := s.users.HourlyRateCentsTx(ctx, tx, rel.CoachID)
	if err != nil {
		return nil, err
	}
	hours := SessionHours(in.StartTime, in.EndTime)
	b := &model.Booking{
		RelationID:    rel.ID,
		TableID:       in.TableID,
		StartTime:     in.StartTime.UTC(),
		EndTime:       in.EndTime.UTC(),
		DurationHours: hours,
		FeeCents:      FeeCents(rate, hours),
		Status:        model.BookingPending,
		Notes:         in.Notes,
	}
	if err := s.bookings.CreateTx(ctx, tx, b); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return b, nil
}

// Confirm moves a pending booking to confirmed.  Only the coach of the
// booking's relation confirms.
func (s *BookingService) Confirm(ctx context.Context, actor *model.User, bookingID uint64) (*model.Booking, error) {
	if !actor.Role.Can(model.CapBookingConfirm) {
		return nil, repository.ErrInvalidRole
	}

	tx, err := s.bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := s.bookings.GetByIDTx(ctx, tx, bookingID)
	if err != nil {
		return nil, err
	}
	rel, err := s.relations.GetByID(ctx, b.RelationID)
	if err != nil {
		return nil, err
	}
	if actor.ID != rel.CoachID {
		return nil, repository.ErrForbidden
	}
	if b.Status != model.BookingPending {
		return nil, repository.ErrNotPending
	}
	now := time.Now().UTC()
	if err := s.bookings.MarkConfirmedTx(ctx, tx, b.ID, now); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	b.Status = model.BookingConfirmed
	b.ConfirmedAt = &now
	return b, nil
}

// Cancel cancels a booking on behalf of the actor.  Both the policy
// evaluation and the write happen under the booking's row lock, and the
// monthly quota count runs in the same transaction, so two concurrent
// cancellations by the same user cannot both slip under the quota.
func (s *BookingService) Cancel(ctx context.Context, actor *model.User, bookingID uint64, reason string) (*model.Booking, error) {
	if !actor.Role.Can(model.CapBookingCancel) {
		return nil, repository.ErrInvalidRole
	}

	tx, err := s.bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := s.bookings.GetByIDTx(ctx, tx, bookingID)
	if err != nil {
		return nil, err
	}
	rel, err := s.relations.GetByID(ctx, b.RelationID)
	if err != nil {
		return nil, err
	}
	if !rel.IsParty(actor.ID) {
		return nil, repository.ErrForbidden
	}

	now := time.Now().UTC()
	monthStart, monthEnd := policy.MonthWindow(now)
	count, err := s.bookings.CountCancelledByUserInMonthTx(ctx, tx, actor.ID, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}
	if err := policy.Evaluate(b, actor.ID, now, count); err != nil {
		return nil, err
	}
	if err := s.bookings.MarkCancelledTx(ctx, tx, b.ID, actor.ID, reason, now); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	b.Status = model.BookingCancelled
	b.CancelledAt = &now
	b.CancelledBy = &actor.ID
	if reason != "" {
		b.CancelReason = &reason
	}

	if s.events != nil {
		_ = s.events.Publish(ctx, queue.TypeBookingCancelled, queue.BookingCancelledEvent{
			BookingID:   b.ID,
			RelationID:  b.RelationID,
			TableID:     b.TableID,
			StartTime:   b.StartTime.Format(time.RFC3339),
			CancelledBy: actor.ID,
			Reason:      reason,
			CancelledAt: now.Format(time.RFC3339),
		})
	}
	return b, nil
}

// ListForUser returns the actor's bookings with names joined in, filtered by
// the optional status and date range.
func (s *BookingService) ListForUser(ctx context.Context, actor *model.User, f repository.ListFilter) ([]repository.BookingDetail, error) {
	return s.bookings.ListForUser(ctx, actor, f)
}

// ListTables returns active tables, optionally scoped to a campus.
func (s *BookingService) ListTables(ctx context.Context, campusID *uint64) ([]model.Table, error) {
	return s.tables.List(ctx, campusID)
}

// AvailableTables returns bookable tables free for the given window.
func (s *BookingService) AvailableTables(ctx context.Context, campusID *uint64, start, end time.Time) ([]model.Table, error) {
	if !end.After(start) {
		return nil, repository.ErrInvalidTimeRange
	}
	return s.tables.ListAvailable(ctx, campusID, start, end)
}

// CompleteDue flips past bookings to completed and returns how many changed.
func (s *BookingService) CompleteDue(ctx context.Context, now time.Time) (int64, error) {
	return s.bookings.CompleteDue(ctx, now)
}
