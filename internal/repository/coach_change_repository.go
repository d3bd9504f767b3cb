package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ttcenter/reservation-api/internal/model"
)

// CoachChangeRepo persists coach-change requests.  A student has at most one
// pending request at a time; the check runs inside the creation transaction
// and the schema's pending_student_key unique index backstops it.
type CoachChangeRepo struct {
	db *sql.DB
}

// NewCoachChangeRepo returns a new CoachChangeRepo bound to the given database.
func NewCoachChangeRepo(db *sql.DB) *CoachChangeRepo { return &CoachChangeRepo{db: db} }

// DB exposes the underlying sql.DB for transaction control.
func (r *CoachChangeRepo) DB() *sql.DB { return r.db }

const requestColumns = `id, student_id, current_coach_id, target_coach_id, reason, status, decided_by, decided_at, created_at`

func scanRequest(scan func(dest ...any) error) (*model.CoachChangeRequest, error) {
	var req model.CoachChangeRequest
	var decidedBy sql.NullInt64
	var decidedAt sql.NullTime
	err := scan(&req.ID, &req.StudentID, &req.CurrentCoachID, &req.TargetCoachID,
		&req.Reason, &req.Status, &decidedBy, &decidedAt, &req.CreatedAt)
	if err != nil {
		return nil, err
	}
	if decidedBy.Valid {
		u := uint64(decidedBy.Int64)
		req.DecidedBy = &u
	}
	if decidedAt.Valid {
		t := decidedAt.Time
		req.DecidedAt = &t
	}
	return &req, nil
}

// CreateTx inserts a pending request and reads the row back.
func (r *CoachChangeRepo) CreateTx(ctx context.Context, tx *sql.Tx, req *model.CoachChangeRequest) error {
	const q = `INSERT INTO coach_change_requests (student_id, current_coach_id, target_coach_id, reason, status)
	           VALUES (?, ?, ?, ?, 'pending')`
	res, err := tx.ExecContext(ctx, q, req.StudentID, req.CurrentCoachID, req.TargetCoachID, req.Reason)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	const sel = `SELECT ` + requestColumns + ` FROM coach_change_requests WHERE id = ?`
	got, err := scanRequest(tx.QueryRowContext(ctx, sel, id).Scan)
	if err != nil {
		return err
	}
	*req = *got
	return nil
}

// GetByIDTx loads a request with a row lock so two concurrent decisions
// serialize on the row.
func (r *CoachChangeRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.CoachChangeRequest, error) {
	const q = `SELECT ` + requestColumns + ` FROM coach_change_requests WHERE id = ? FOR UPDATE`
	req, err := scanRequest(tx.QueryRowContext(ctx, q, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return req, nil
}

// HasPendingByStudentTx reports whether the student already has a pending
// request, locking it when present.
func (r *CoachChangeRepo) HasPendingByStudentTx(ctx context.Context, tx *sql.Tx, studentID uint64) (bool, error) {
	const q = `SELECT id FROM coach_change_requests WHERE student_id = ? AND status = 'pending' FOR UPDATE`
	var id uint64
	err := tx.QueryRowContext(ctx, q, studentID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MarkDecidedTx records the decision on a pending request.
func (r *CoachChangeRepo) MarkDecidedTx(ctx context.Context, tx *sql.Tx, id uint64, approve bool, deciderID uint64, now time.Time) error {
	status := model.CoachChangeRejected
	if approve {
		status = model.CoachChangeApproved
	}
	const q = `UPDATE coach_change_requests SET status = ?, decided_by = ?, decided_at = ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, status, deciderID, now.UTC(), id)
	return err
}

// ListForUser returns requests visible to the actor: students their own,
// coaches those naming them as current or target coach, admins all.
func (r *CoachChangeRepo) ListForUser(ctx context.Context, actor *model.User) ([]model.CoachChangeRequest, error) {
	q := `SELECT ` + requestColumns + ` FROM coach_change_requests`
	args := []any{}
	switch {
	case actor.Role == model.RoleStudent:
		q += ` WHERE student_id = ?`
		args = append(args, actor.ID)
	case actor.Role == model.RoleCoach:
		q += ` WHERE current_coach_id = ? OR target_coach_id = ?`
		args = append(args, actor.ID, actor.ID)
	case actor.Role.IsAdmin():
		// no filter
	default:
		return []model.CoachChangeRequest{}, nil
	}
	q += ` ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	reqs := make([]model.CoachChangeRequest, 0)
	for rows.Next() {
		req, err := scanRequest(rows.Scan)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reqs, nil
}
