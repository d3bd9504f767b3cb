package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ttcenter/reservation-api/internal/model"
)

// RelationRepo persists coach/student relations.  Mutations run inside the
// caller's transaction; the active-pair lookup takes a row lock so that two
// concurrent applications for the same pair serialize, and the unique
// active_pair_key column in the schema backstops the check.
type RelationRepo struct {
	db *sql.DB
}

// NewRelationRepo returns a new RelationRepo bound to the given database.
func NewRelationRepo(db *sql.DB) *RelationRepo { return &RelationRepo{db: db} }

// DB exposes the underlying sql.DB for transaction control.
func (r *RelationRepo) DB() *sql.DB { return r.db }

const relationColumns = `id, coach_id, student_id, status, applied_by, notes, applied_at, approved_at, terminated_at, created_at`

func scanRelation(scan func(dest ...any) error) (*model.Relation, error) {
	var rel model.Relation
	var notes sql.NullString
	var approvedAt, terminatedAt sql.NullTime
	err := scan(&rel.ID, &rel.CoachID, &rel.StudentID, &rel.Status, &rel.AppliedBy,
		&notes, &rel.AppliedAt, &approvedAt, &terminatedAt, &rel.CreatedAt)
	if err != nil {
		return nil, err
	}
	if notes.Valid {
		n := notes.String
		rel.Notes = &n
	}
	if approvedAt.Valid {
		t := approvedAt.Time
		rel.ApprovedAt = &t
	}
	if terminatedAt.Valid {
		t := terminatedAt.Time
		rel.TerminatedAt = &t
	}
	return &rel, nil
}

// CreateTx inserts a relation within the caller's transaction and reads the
// full row back to populate defaults.  The caller sets Status (pending for a
// normal application, approved for a coach-change re-assignment), AppliedBy
// and optionally ApprovedAt.
func (r *RelationRepo) CreateTx(ctx context.Context, tx *sql.Tx, rel *model.Relation) error {
	const q = `INSERT INTO relations (coach_id, student_id, status, applied_by, notes, applied_at, approved_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	var notes any
	if rel.Notes != nil {
		notes = *rel.Notes
	}
	var approvedAt any
	if rel.ApprovedAt != nil {
		approvedAt = rel.ApprovedAt.UTC()
	}
	res, err := tx.ExecContext(ctx, q, rel.CoachID, rel.StudentID, rel.Status,
		rel.AppliedBy, notes, rel.AppliedAt.UTC(), approvedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	const sel = `SELECT ` + relationColumns + ` FROM relations WHERE id = ?`
	got, err := scanRelation(tx.QueryRowContext(ctx, sel, id).Scan)
	if err != nil {
		return err
	}
	*rel = *got
	return nil
}

// GetByID returns a relation outside any transaction.
func (r *RelationRepo) GetByID(ctx context.Context, id uint64) (*model.Relation, error) {
	const q = `SELECT ` + relationColumns + ` FROM relations WHERE id = ?`
	rel, err := scanRelation(r.db.QueryRowContext(ctx, q, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRelationNotFound
		}
		return nil, err
	}
	return rel, nil
}

// GetByIDTx loads a relation with a row lock so state checks and the
// following update cannot interleave with a concurrent decision.
func (r *RelationRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Relation, error) {
	const q = `SELECT ` + relationColumns + ` FROM relations WHERE id = ? FOR UPDATE`
	rel, err := scanRelation(tx.QueryRowContext(ctx, q, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRelationNotFound
		}
		return nil, err
	}
	return rel, nil
}

// FindActivePairTx returns the pending or approved relation for a coach and
// student, locking it.  ErrRelationNotFound means the pair has no active
// relation and a new application may proceed.
func (r *RelationRepo) FindActivePairTx(ctx context.Context, tx *sql.Tx, coachID, studentID uint64) (*model.Relation, error) {
	const q = `SELECT ` + relationColumns + ` FROM relations
	           WHERE coach_id = ? AND student_id = ? AND status IN ('pending','approved')
	           FOR UPDATE`
	rel, err := scanRelation(tx.QueryRowContext(ctx, q, coachID, studentID).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRelationNotFound
		}
		return nil, err
	}
	return rel, nil
}

// FindApprovedByStudentTx returns the student's approved relation, locked.
// ErrNoActiveCoach is returned when the student has no approved coach.
func (r *RelationRepo) FindApprovedByStudentTx(ctx context.Context, tx *sql.Tx, studentID uint64) (*model.Relation, error) {
	const q = `SELECT ` + relationColumns + ` FROM relations
	           WHERE student_id = ? AND status = 'approved'
	           ORDER BY approved_at DESC LIMIT 1
	           FOR UPDATE`
	rel, err := scanRelation(tx.QueryRowContext(ctx, q, studentID).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoActiveCoach
		}
		return nil, err
	}
	return rel, nil
}

// MarkDecidedTx resolves a pending application.  Approval stamps
// approved_at; rejection only flips the status.
func (r *RelationRepo) MarkDecidedTx(ctx context.Context, tx *sql.Tx, id uint64, approve bool, now time.Time) error {
	if approve {
		const q = `UPDATE relations SET status = 'approved', approved_at = ? WHERE id = ?`
		_, err := tx.ExecContext(ctx, q, now.UTC(), id)
		return err
	}
	const q = `UPDATE relations SET status = 'rejected' WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, id)
	return err
}

// MarkTerminatedTx ends an approved relation.
func (r *RelationRepo) MarkTerminatedTx(ctx context.Context, tx *sql.Tx, id uint64, now time.Time) error {
	const q = `UPDATE relations SET status = 'terminated', terminated_at = ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, now.UTC(), id)
	return err
}

// ListForUser returns relations visible to the actor: coaches see the
// relations they are the coach of, students theirs, admins everything.
// Ordered newest first.
func (r *RelationRepo) ListForUser(ctx context.Context, actor *model.User) ([]model.Relation, error) {
	q := `SELECT ` + relationColumns + ` FROM relations`
	args := []any{}
	switch {
	case actor.Role == model.RoleCoach:
		q += ` WHERE coach_id = ?`
		args = append(args, actor.ID)
	case actor.Role == model.RoleStudent:
		q += ` WHERE student_id = ?`
		args = append(args, actor.ID)
	case actor.Role.IsAdmin():
		// no filter
	default:
		return []model.Relation{}, nil
	}
	q += ` ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	rels := make([]model.Relation, 0)
	for rows.Next() {
		rel, err := scanRelation(rows.Scan)
		if err != nil {
			return nil, err
		}
		rels = append(rels, *rel)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rels, nil
}
