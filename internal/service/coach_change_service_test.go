package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ttcenter/reservation-api/internal/model"
	"github.com/ttcenter/reservation-api/internal/repository"
)

func newCoachChangeService(db *sql.DB) *CoachChangeService {
	return NewCoachChangeService(
		repository.NewCoachChangeRepo(db),
		repository.NewRelationRepo(db),
		repository.NewUserRepo(db),
		nil,
	)
}

var requestCols = []string{"id", "student_id", "current_coach_id", "target_coach_id", "reason", "status", "decided_by", "decided_at", "created_at"}

func pendingRequestRow(id, studentID, currentCoachID, targetCoachID uint64, now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(requestCols).
		AddRow(id, studentID, currentCoachID, targetCoachID, "schedule conflict", "pending", nil, nil, now)
}

// Approval re-points the student in one transaction: the old approved
// relation is terminated, a fresh approved relation with the target coach is
// created, and the request is closed.  Exactly one terminate and one insert.
func TestCoachChangeDecideApproveReassigns(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM coach_change_requests WHERE id = \? FOR UPDATE`).
		WillReturnRows(pendingRequestRow(11, 1, 2, 5, now))
	mock.ExpectQuery(`WHERE coach_id = \? AND student_id = \? AND status IN \('pending','approved'\)`).
		WillReturnRows(relationRow(4, 2, 1, model.RelationApproved, now))
	mock.ExpectExec(`UPDATE relations SET status = 'terminated'`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`WHERE coach_id = \? AND student_id = \? AND status IN \('pending','approved'\)`).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`INSERT INTO relations`).
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectQuery(`FROM relations WHERE id = \?$`).
		WillReturnRows(relationRow(9, 5, 1, model.RelationApproved, now))
	mock.ExpectExec(`UPDATE coach_change_requests SET status = \?`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := newCoachChangeService(db)
	req, err := svc.Decide(context.Background(), &model.User{ID: 2, Role: model.RoleCoach}, 11, true)
	require.NoError(t, err)
	assert.Equal(t, model.CoachChangeApproved, req.Status)
	require.NotNil(t, req.DecidedBy)
	assert.Equal(t, uint64(2), *req.DecidedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCoachChangeRequestDuplicatePending(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM users WHERE id = \? AND role = \? AND is_active = 1`).
		WillReturnRows(coachUserRow(5, now))
	mock.ExpectBegin()
	mock.ExpectQuery(`WHERE student_id = \? AND status = 'approved'`).
		WillReturnRows(relationRow(4, 2, 1, model.RelationApproved, now))
	mock.ExpectQuery(`WHERE student_id = \? AND status = 'pending' FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(8))
	mock.ExpectRollback()

	svc := newCoachChangeService(db)
	_, err := svc.Request(context.Background(), studentActor(), 5, "schedule conflict")
	assert.ErrorIs(t, err, repository.ErrDuplicatePendingRequest)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCoachChangeRequestSameCoach(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM users WHERE id = \? AND role = \? AND is_active = 1`).
		WillReturnRows(coachUserRow(5, now))
	mock.ExpectBegin()
	mock.ExpectQuery(`WHERE student_id = \? AND status = 'approved'`).
		WillReturnRows(relationRow(4, 5, 1, model.RelationApproved, now))
	mock.ExpectRollback()

	svc := newCoachChangeService(db)
	_, err := svc.Request(context.Background(), studentActor(), 5, "schedule conflict")
	assert.ErrorIs(t, err, repository.ErrSameCoach)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCoachChangeRequestRoleGate(t *testing.T) {
	db, mock := newMockDB(t)

	svc := newCoachChangeService(db)
	_, err := svc.Request(context.Background(), &model.User{ID: 2, Role: model.RoleCoach}, 5, "")
	assert.ErrorIs(t, err, repository.ErrInvalidRole)
	assert.NoError(t, mock.ExpectationsWereMet())
}
