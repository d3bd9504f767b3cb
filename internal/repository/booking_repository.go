package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ttcenter/reservation-api/internal/model"
)

// BookingRepo persists bookings.  All mutations run inside the caller's
// transaction; LockOverlappingTx is the serialization point that prevents a
// double booking under concurrent requests.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying sql.DB for transaction control.
func (r *BookingRepo) DB() *sql.DB { return r.db }

const bookingColumns = `id, relation_id, table_id, start_time, end_time, duration_hours, fee_cents, status,
	confirmed_at, cancelled_at, cancelled_by, cancel_reason, notes, created_at, updated_at`

func scanBooking(scan func(dest ...any) error) (*model.Booking, error) {
	var b model.Booking
	var confirmedAt, cancelledAt sql.NullTime
	var cancelledBy sql.NullInt64
	var cancelReason, notes sql.NullString
	err := scan(&b.ID, &b.RelationID, &b.TableID, &b.StartTime, &b.EndTime,
		&b.DurationHours, &b.FeeCents, &b.Status,
		&confirmedAt, &cancelledAt, &cancelledBy, &cancelReason, &notes,
		&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if confirmedAt.Valid {
		t := confirmedAt.Time
		b.ConfirmedAt = &t
	}
	if cancelledAt.Valid {
		t := cancelledAt.Time
		b.CancelledAt = &t
	}
	if cancelledBy.Valid {
		u := uint64(cancelledBy.Int64)
		b.CancelledBy = &u
	}
	if cancelReason.Valid {
		s := cancelReason.String
		b.CancelReason = &s
	}
	if notes.Valid {
		s := notes.String
		b.Notes = &s
	}
	return &b, nil
}

// CreateTx inserts a booking and reads the row back to populate defaults.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings (relation_id, table_id, start_time, end_time, duration_hours, fee_cents, status, notes)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	var notes any
	if b.Notes != nil {
		notes = *b.Notes
	}
	res, err := tx.ExecContext(ctx, q, b.RelationID, b.TableID,
		b.StartTime.UTC(), b.EndTime.UTC(), b.DurationHours, b.FeeCents, b.Status, notes)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	const sel = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	got, err := scanBooking(tx.QueryRowContext(ctx, sel, id).Scan)
	if err != nil {
		return err
	}
	*b = *got
	return nil
}

// GetByID returns a booking outside any transaction.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	b, err := scanBooking(r.db.QueryRowContext(ctx, q, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

// GetByIDTx loads a booking with a row lock so a concurrent cancellation of
// the same booking cannot slip between the policy check and the update.
func (r *BookingRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ? FOR UPDATE`
	b, err := scanBooking(tx.QueryRowContext(ctx, q, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

// LockOverlappingTx locks and returns the IDs of active (pending or
// confirmed) bookings on the table whose interval overlaps [start, end).
// The FOR UPDATE scan serializes concurrent creations for the same table
// and window: the second transaction blocks here until the first commits,
// then sees its row and reports the conflict.
func (r *BookingRepo) LockOverlappingTx(ctx context.Context, tx *sql.Tx, tableID uint64, start, end time.Time) ([]uint64, error) {
	const q = `SELECT id FROM bookings
	           WHERE table_id = ? AND status IN ('pending','confirmed')
	             AND start_time < ? AND end_time > ?
	           FOR UPDATE`
	rows, err := tx.QueryContext(ctx, q, tableID, end.UTC(), start.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// CountCancelledByUserInMonthTx counts bookings the user cancelled within
// [monthStart, monthEnd), the calendar month of the pending cancellation.
// Runs inside the cancellation transaction so the quota check and the write
// are atomic.
func (r *BookingRepo) CountCancelledByUserInMonthTx(ctx context.Context, tx *sql.Tx, userID uint64, monthStart, monthEnd time.Time) (int, error) {
	const q = `SELECT COUNT(*) FROM bookings
	           WHERE cancelled_by = ? AND cancelled_at >= ? AND cancelled_at < ?`
	var n int
	if err := tx.QueryRowContext(ctx, q, userID, monthStart.UTC(), monthEnd.UTC()).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// MarkConfirmedTx moves a pending booking to confirmed.
func (r *BookingRepo) MarkConfirmedTx(ctx context.Context, tx *sql.Tx, id uint64, now time.Time) error {
	const q = `UPDATE bookings SET status = 'confirmed', confirmed_at = ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, now.UTC(), id)
	return err
}

// MarkCancelledTx records the cancellation decided by the policy enforcer.
func (r *BookingRepo) MarkCancelledTx(ctx context.Context, tx *sql.Tx, id, byUserID uint64, reason string, now time.Time) error {
	const q = `UPDATE bookings
	           SET status = 'cancelled', cancelled_at = ?, cancelled_by = ?, cancel_reason = ?
	           WHERE id = ?`
	var reasonArg any
	if reason != "" {
		reasonArg = reason
	}
	_, err := tx.ExecContext(ctx, q, now.UTC(), byUserID, reasonArg, id)
	return err
}

// CompleteDue moves active bookings whose end time has passed to completed
// and returns how many rows changed.  Called by the completion sweeper; the
// single UPDATE is its own transaction.
func (r *BookingRepo) CompleteDue(ctx context.Context, now time.Time) (int64, error) {
	const q = `UPDATE bookings SET status = 'completed'
	           WHERE status IN ('pending','confirmed') AND end_time <= ?`
	res, err := r.db.ExecContext(ctx, q, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListFilter narrows ListForUser.  Zero values mean "no filter".
type ListFilter struct {
	Status string
	From   *time.Time
	To     *time.Time
}

// BookingDetail is a booking joined with the names a client needs to render
// a schedule row without further lookups.
type BookingDetail struct {
	ID            uint64     `json:"id"`
	RelationID    uint64     `json:"relation_id"`
	TableID       uint64     `json:"table_id"`
	StartTime     time.Time  `json:"start_time"`
	EndTime       time.Time  `json:"end_time"`
	DurationHours float64    `json:"duration_hours"`
	FeeCents      uint32     `json:"fee_cents"`
	Status        string     `json:"status"`
	ConfirmedAt   *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
	CancelledBy   *uint64    `json:"cancelled_by,omitempty"`
	CancelReason  *string    `json:"cancel_reason,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	CoachID       uint64     `json:"coach_id"`
	CoachName     string     `json:"coach_name"`
	StudentID     uint64     `json:"student_id"`
	StudentName   string     `json:"student_name"`
	TableNumber   string     `json:"table_number"`
	CampusName    string     `json:"campus_name"`
}

// ListForUser returns bookings visible to the actor with optional status and
// date-range filters, newest start time first.  Coaches and students see the
// bookings of their own relations; admins see everything.
func (r *BookingRepo) ListForUser(ctx context.Context, actor *model.User, f ListFilter) ([]BookingDetail, error) {
	q := `SELECT b.id, b.relation_id, b.table_id, b.start_time, b.end_time, b.duration_hours, b.fee_cents, b.status,
	             b.confirmed_at, b.cancelled_at, b.cancelled_by, b.cancel_reason, b.notes, b.created_at, b.updated_at,
	             rel.coach_id, cu.real_name, rel.student_id, su.real_name, t.number, c.name
	      FROM bookings b
	      JOIN relations rel ON rel.id = b.relation_id
	      JOIN users cu ON cu.id = rel.coach_id
	      JOIN users su ON su.id = rel.student_id
	      JOIN tables t ON t.id = b.table_id
	      JOIN campuses c ON c.id = t.campus_id`
	where := []string{}
	args := []any{}
	switch {
	case actor.Role == model.RoleCoach:
		where = append(where, "rel.coach_id = ?")
		args = append(args, actor.ID)
	case actor.Role == model.RoleStudent:
		where = append(where, "rel.student_id = ?")
		args = append(args, actor.ID)
	case actor.Role.IsAdmin():
		// no scoping
	default:
		return []BookingDetail{}, nil
	}
	if f.Status != "" {
		where = append(where, "b.status = ?")
		args = append(args, f.Status)
	}
	if f.From != nil {
		where = append(where, "b.start_time >= ?")
		args = append(args, f.From.UTC())
	}
	if f.To != nil {
		where = append(where, "b.start_time <= ?")
		args = append(args, f.To.UTC())
	}
	for i, w := range where {
		if i == 0 {
			q += " WHERE " + w
		} else {
			q += " AND " + w
		}
	}
	q += " ORDER BY b.start_time DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]BookingDetail, 0)
	for rows.Next() {
		var d BookingDetail
		var confirmedAt, cancelledAt sql.NullTime
		var cancelledBy sql.NullInt64
		var cancelReason, notes sql.NullString
		if err := rows.Scan(&d.ID, &d.RelationID, &d.TableID, &d.StartTime, &d.EndTime,
			&d.DurationHours, &d.FeeCents, &d.Status,
			&confirmedAt, &cancelledAt, &cancelledBy, &cancelReason, &notes,
			&d.CreatedAt, &d.UpdatedAt,
			&d.CoachID, &d.CoachName, &d.StudentID, &d.StudentName, &d.TableNumber, &d.CampusName,
		); err != nil {
			return nil, err
		}
		if confirmedAt.Valid {
			t := confirmedAt.Time
			d.ConfirmedAt = &t
		}
		if cancelledAt.Valid {
			t := cancelledAt.Time
			d.CancelledAt = &t
		}
		if cancelledBy.Valid {
			u := uint64(cancelledBy.Int64)
			d.CancelledBy = &u
		}
		if cancelReason.Valid {
			s := cancelReason.String
			d.CancelReason = &s
		}
		if notes.Valid {
			s := notes.String
			d.Notes = &s
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}
