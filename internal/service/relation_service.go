// Package service implements the reservation core's use cases.  Each
// mutating method owns a single database transaction: it takes the row locks
// it needs, applies the state change, commits, and only then publishes any
// notification event.  Handlers stay thin and translate errors to HTTP.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/ttcenter/reservation-api/internal/model"
	"github.com/ttcenter/reservation-api/internal/queue"
	"github.com/ttcenter/reservation-api/internal/repository"
)

// RelationService runs the coach/student relation lifecycle: application,
// decision by the counter-party, termination.
type RelationService struct {
	relations *repository.RelationRepo
	users     *repository.UserRepo
	events    *queue.Publisher
}

// NewRelationService wires the relation use cases.  events may be nil when
// notifications are disabled.
func NewRelationService(relations *repository.RelationRepo, users *repository.UserRepo, events *queue.Publisher) *RelationService {
	if relations == nil || users == nil {
		panic("nil repository passed to NewRelationService")
	}
	return &RelationService{relations: relations, users: users, events: events}
}

// Propose submits a relation application from the actor to the counterpart.
// A student applies to a coach and a coach invites a student; either way the
// counterpart must be an active account of the opposite role, and the pair
// must not already have a pending or approved relation.
func (s *RelationService) Propose(ctx context.Context, actor *model.User, counterpartID uint64, notes *string) (*model.Relation, error) {
	if !actor.Role.Can(model.CapRelationPropose) {
		return nil, repository.ErrInvalidRole
	}

	rel := &model.Relation{
		Status:    model.RelationPending,
		Notes:     notes,
		AppliedAt: time.Now().UTC(),
	}
	var counterpartRole model.Role
	if actor.Role == model.RoleStudent {
		rel.StudentID = actor.ID
		rel.CoachID = counterpartID
		rel.AppliedBy = model.AppliedByStudent
		counterpartRole = model.RoleCoach
	} else {
		rel.CoachID = actor.ID
		rel.StudentID = counterpartID
		rel.AppliedBy = model.AppliedByCoach
		counterpartRole = model.RoleStudent
	}
	if _, err := s.users.GetActiveByIDAndRole(ctx, counterpartID, counterpartRole); err != nil {
		return nil, err
	}

	tx, err := s.relations.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	_, err = s.relations.FindActivePairTx(ctx, tx, rel.CoachID, rel.StudentID)
	if err == nil {
		return nil, repository.ErrDuplicateActiveRelation
	}
	if !errors.Is(err, repository.ErrRelationNotFound) {
		return nil, err
	}
	if err := s.relations.CreateTx(ctx, tx, rel); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return rel, nil
}

// Decide approves or rejects a pending application.  Only the counter-party
// of the applicant or an admin may decide.
func (s *RelationService) Decide(ctx context.Context, actor *model.User, relationID uint64, approve bool) (*model.Relation, error) {
	if !actor.Role.Can(model.CapRelationDecide) {
		return nil, repository.ErrInvalidRole
	}

	tx, err := s.relations.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	rel, err := s.relations.GetByIDTx(ctx, tx, relationID)
	if err != nil {
		return nil, err
	}
	if rel.Status != model.RelationPending {
		return nil, repository.ErrNotPending
	}
	if actor.ID != rel.DeciderID() && !actor.Role.IsAdmin() {
		return nil, repository.ErrForbidden
	}
	now := time.Now().UTC()
	if err := s.relations.MarkDecidedTx(ctx, tx, rel.ID, approve, now); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	if approve {
		rel.Status = model.RelationApproved
		rel.ApprovedAt = &now
	} else {
		rel.Status = model.RelationRejected
	}

	decision := model.RelationRejected
	if approve {
		decision = model.RelationApproved
	}
	if s.events != nil {
		_ = s.events.Publish(ctx, queue.TypeRelationDecided, queue.RelationDecidedEvent{
			RelationID: rel.ID,
			CoachID:    rel.CoachID,
			StudentID:  rel.StudentID,
			Decision:   decision,
			DecidedBy:  actor.ID,
			DecidedAt:  now.Format(time.RFC3339),
		})
	}
	return rel, nil
}

// Terminate ends an approved relation.  Either party or an admin may end it;
// existing bookings are untouched and stay cancellable through the normal
// flow.
func (s *RelationService) Terminate(ctx context.Context, actor *model.User, relationID uint64) (*model.Relation, error) {
	if !actor.Role.Can(model.CapRelationTerminate) {
		return nil, repository.ErrInvalidRole
	}

	tx, err := s.relations.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	rel, err := s.relations.GetByIDTx(ctx, tx, relationID)
	if err != nil {
		return nil, err
	}
	if rel.Status != model.RelationApproved {
		return nil, repository.ErrNotApproved
	}
	if !rel.IsParty(actor.ID) && !actor.Role.IsAdmin() {
		return nil, repository.ErrForbidden
	}
	now := time.Now().UTC()
	if err := s.relations.MarkTerminatedTx(ctx, tx, rel.ID, now); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	rel.Status = model.RelationTerminated
	rel.TerminatedAt = &now
	return rel, nil
}

// ListForUser returns the relations visible to the actor.
func (s *RelationService) ListForUser(ctx context.Context, actor *model.User) ([]model.Relation, error) {
	return s.relations.ListForUser(ctx, actor)
}
