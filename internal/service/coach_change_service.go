package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ttcenter/reservation-api/internal/model"
	"github.com/ttcenter/reservation-api/internal/queue"
	"github.com/ttcenter/reservation-api/internal/repository"
)

// CoachChangeService runs the coach-change workflow: a student with an
// approved coach requests a different one, and the current coach, the target
// coach or an admin decides.  Approval re-points the student atomically:
// terminate the old relation, establish an approved relation with the target
// coach, all in one transaction.
type CoachChangeService struct {
	requests  *repository.CoachChangeRepo
	relations *repository.RelationRepo
	users     *repository.UserRepo
	events    *queue.Publisher
}

// NewCoachChangeService wires the coach-change use cases.  events may be nil
// when notifications are disabled.
func NewCoachChangeService(requests *repository.CoachChangeRepo, relations *repository.RelationRepo, users *repository.UserRepo, events *queue.Publisher) *CoachChangeService {
	if requests == nil || relations == nil || users == nil {
		panic("nil repository passed to NewCoachChangeService")
	}
	return &CoachChangeService{requests: requests, relations: relations, users: users, events: events}
}

// Request files a coach-change request for the acting student.  The student
// must currently have an approved coach, the target must be a different
// active coach, and no other request of theirs may still be pending.
func (s *CoachChangeService) Request(ctx context.Context, actor *model.User, targetCoachID uint64, reason string) (*model.CoachChangeRequest, error) {
	if !actor.Role.Can(model.CapCoachChangeReq) {
		return nil, repository.ErrInvalidRole
	}
	if _, err := s.users.GetActiveByIDAndRole(ctx, targetCoachID, model.RoleCoach); err != nil {
		return nil, err
	}

	tx, err := s.requests.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	current, err := s.relations.FindApprovedByStudentTx(ctx, tx, actor.ID)
	if err != nil {
		return nil, err
	}
	if current.CoachID == targetCoachID {
		return nil, repository.ErrSameCoach
	}
	pending, err := s.requests.HasPendingByStudentTx(ctx, tx, actor.ID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, repository.ErrDuplicatePendingRequest
	}

	req := &model.CoachChangeRequest{
		StudentID:      actor.ID,
		CurrentCoachID: current.CoachID,
		TargetCoachID:  targetCoachID,
		Reason:         reason,
		Status:         model.CoachChangePending,
	}
	if err := s.requests.CreateTx(ctx, tx, req); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return req, nil
}

// Decide resolves a pending request.  On approval the student's relation
// with the current coach is terminated and an approved relation with the
// target coach takes its place; a pending application for the same pair, if
// one exists, is upgraded instead of duplicated.  Rejection only closes the
// request.
func (s *CoachChangeService) Decide(ctx context.Context, actor *model.User, requestID uint64, approve bool) (*model.CoachChangeRequest, error) {
	if !actor.Role.Can(model.CapCoachChangeDecide) {
		return nil, repository.ErrInvalidRole
	}

	tx, err := s.requests.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	req, err := s.requests.GetByIDTx(ctx, tx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != model.CoachChangePending {
		return nil, repository.ErrNotPending
	}
	if !req.CanDecide(actor) {
		return nil, repository.ErrForbidden
	}

	now := time.Now().UTC()
	if approve {
		if err := s.reassignTx(ctx, tx, req, now); err != nil {
			return nil, err
		}
	}
	if err := s.requests.MarkDecidedTx(ctx, tx, req.ID, approve, actor.ID, now); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	if approve {
		req.Status = model.CoachChangeApproved
	} else {
		req.Status = model.CoachChangeRejected
	}
	req.DecidedBy = &actor.ID
	req.DecidedAt = &now

	if s.events != nil {
		_ = s.events.Publish(ctx, queue.TypeCoachChangeDecided, queue.CoachChangeDecidedEvent{
			RequestID:      req.ID,
			StudentID:      req.StudentID,
			CurrentCoachID: req.CurrentCoachID,
			TargetCoachID:  req.TargetCoachID,
			Decision:       req.Status,
			DecidedBy:      actor.ID,
			DecidedAt:      now.Format(time.RFC3339),
		})
	}
	return req, nil
}

// reassignTx moves the student from the current coach to the target coach
// inside the decision transaction.
func (s *CoachChangeService) reassignTx(ctx context.Context, tx *sql.Tx, req *model.CoachChangeRequest, now time.Time) error {
	current, err := s.relations.FindActivePairTx(ctx, tx, req.CurrentCoachID, req.StudentID)
	if err == nil && current.Status == model.RelationApproved {
		if err := s.relations.MarkTerminatedTx(ctx, tx, current.ID, now); err != nil {
			return err
		}
	} else if err != nil && !errors.Is(err, repository.ErrRelationNotFound) {
		return err
	}

	target, err := s.relations.FindActivePairTx(ctx, tx, req.TargetCoachID, req.StudentID)
	switch {
	case err == nil && target.Status == model.RelationPending:
		return s.relations.MarkDecidedTx(ctx, tx, target.ID, true, now)
	case err == nil:
		// already approved with the target coach, nothing to create
		return nil
	case errors.Is(err, repository.ErrRelationNotFound):
		rel := &model.Relation{
			CoachID:    req.TargetCoachID,
			StudentID:  req.StudentID,
			Status:     model.RelationApproved,
			AppliedBy:  model.AppliedByStudent,
			AppliedAt:  now,
			ApprovedAt: &now,
		}
		return s.relations.CreateTx(ctx, tx, rel)
	default:
		return err
	}
}

// ListForUser returns the requests visible to the actor.
func (s *CoachChangeService) ListForUser(ctx context.Context, actor *model.User) ([]model.CoachChangeRequest, error) {
	return s.requests.ListForUser(ctx, actor)
}
