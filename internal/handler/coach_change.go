package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ttcenter/reservation-api/internal/model"
)

// CoachChangeService is the slice of the coach-change use cases the handler
// needs.  Satisfied by *service.CoachChangeService.
type CoachChangeService interface {
	Request(ctx context.Context, actor *model.User, targetCoachID uint64, reason string) (*model.CoachChangeRequest, error)
	Decide(ctx context.Context, actor *model.User, requestID uint64, approve bool) (*model.CoachChangeRequest, error)
	ListForUser(ctx context.Context, actor *model.User) ([]model.CoachChangeRequest, error)
}

// CoachChangeHandler serves the /v1/coach-change-requests routes.
type CoachChangeHandler struct {
	Svc   CoachChangeService
	Users UserResolver
}

// NewCoachChangeHandler constructs a CoachChangeHandler.
func NewCoachChangeHandler(svc CoachChangeService, users UserResolver) *CoachChangeHandler {
	if svc == nil || users == nil {
		panic("nil dependency passed to NewCoachChangeHandler")
	}
	return &CoachChangeHandler{Svc: svc, Users: users}
}

// List handles GET /v1/coach-change-requests.
func (h *CoachChangeHandler) List(c echo.Context) error {
	actor, err := actorFrom(c, h.Users)
	if err != nil {
		return writeError(c, err)
	}
	reqs, err := h.Svc.ListForUser(c.Request().Context(), actor)
	if err != nil {
		return writeError(c, err)
	}
	views := make([]requestView, 0, len(reqs))
	for i := range reqs {
		views = append(views, newRequestView(&reqs[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"requests": views})
}

// Request handles POST /v1/coach-change-requests.
func (h *CoachChangeHandler) Request(c echo.Context) error {
	actor, err := actorFrom(c, h.Users)
	if err != nil {
		return writeError(c, err)
	}
	var body struct {
		TargetCoachID uint64 `json:"target_coach_id"`
		Reason        string `json:"reason"`
	}
	if err := c.Bind(&body); err != nil || body.TargetCoachID == 0 {
		return badRequest(c, "target_coach_id is required")
	}
	req, err := h.Svc.Request(c.Request().Context(), actor, body.TargetCoachID, body.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, newRequestView(req))
}

// Decide handles POST /v1/coach-change-requests/:id/decide.  The body must
// carry an explicit approve flag; silence never approves.
func (h *CoachChangeHandler) Decide(c echo.Context) error {
	actor, err := actorFrom(c, h.Users)
	if err != nil {
		return writeError(c, err)
	}
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid request id")
	}
	var body struct {
		Approve *bool `json:"approve"`
	}
	if err := c.Bind(&body); err != nil || body.Approve == nil {
		return badRequest(c, "approve is required")
	}
	req, err := h.Svc.Decide(c.Request().Context(), actor, id, *body.Approve)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, newRequestView(req))
}
