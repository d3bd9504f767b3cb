package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ttcenter/reservation-api/internal/model"
)

// RelationService is the slice of the relation use cases the handler needs.
// Satisfied by *service.RelationService.
type RelationService interface {
	Propose(ctx context.Context, actor *model.User, counterpartID uint64, notes *string) (*model.Relation, error)
	Decide(ctx context.Context, actor *model.User, relationID uint64, approve bool) (*model.Relation, error)
	Terminate(ctx context.Context, actor *model.User, relationID uint64) (*model.Relation, error)
	ListForUser(ctx context.Context, actor *model.User) ([]model.Relation, error)
}

// RelationHandler serves the /v1/relations routes.
type RelationHandler struct {
	Svc   RelationService
	Users UserResolver
}

// NewRelationHandler constructs a RelationHandler.
func NewRelationHandler(svc RelationService, users UserResolver) *RelationHandler {
	if svc == nil || users == nil {
		panic("nil dependency passed to NewRelationHandler")
	}
	return &RelationHandler{Svc: svc, Users: users}
}

// List handles GET /v1/relations.
func (h *RelationHandler) List(c echo.Context) error {
	actor, err := actorFrom(c, h.Users)
	if err != nil {
		return writeError(c, err)
	}
	rels, err := h.Svc.ListForUser(c.Request().Context(), actor)
	if err != nil {
		return writeError(c, err)
	}
	views := make([]relationView, 0, len(rels))
	for i := range rels {
		views = append(views, newRelationView(&rels[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"relations": views})
}

// Propose handles POST /v1/relations.  A student names a coach, a coach
// names a student; either way the body carries the counterpart's ID.
func (h *RelationHandler) Propose(c echo.Context) error {
	actor, err := actorFrom(c, h.Users)
	if err != nil {
		return writeError(c, err)
	}
	var body struct {
		CounterpartID uint64  `json:"counterpart_id"`
		Notes         *string `json:"notes"`
	}
	if err := c.Bind(&body); err != nil || body.CounterpartID == 0 {
		return badRequest(c, "counterpart_id is required")
	}
	if body.CounterpartID == actor.ID {
		return badRequest(c, "cannot propose a relation with yourself")
	}
	rel, err := h.Svc.Propose(c.Request().Context(), actor, body.CounterpartID, body.Notes)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, newRelationView(rel))
}

// Approve handles POST /v1/relations/:id/approve.
func (h *RelationHandler) Approve(c echo.Context) error {
	return h.decide(c, true)
}

// Reject handles POST /v1/relations/:id/reject.
func (h *RelationHandler) Reject(c echo.Context) error {
	return h.decide(c, false)
}

func (h *RelationHandler) decide(c echo.Context, approve bool) error {
	actor, err := actorFrom(c, h.Users)
	if err != nil {
		return writeError(c, err)
	}
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid relation id")
	}
	rel, err := h.Svc.Decide(c.Request().Context(), actor, id, approve)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, newRelationView(rel))
}

// Terminate handles POST /v1/relations/:id/terminate.
func (h *RelationHandler) Terminate(c echo.Context) error {
	actor, err := actorFrom(c, h.Users)
	if err != nil {
		return writeError(c, err)
	}
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid relation id")
	}
	rel, err := h.Svc.Terminate(c.Request().Context(), actor, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, newRelationView(rel))
}
