// Package handler exposes the reservation core over HTTP.  Handlers bind and
// validate requests, resolve the authenticated actor, call the service layer
// through narrow interfaces, and translate domain errors into the wire shape
// {"error": <message>, "code": <REASON_CODE>}.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ttcenter/reservation-api/internal/model"
	"github.com/ttcenter/reservation-api/internal/policy"
	"github.com/ttcenter/reservation-api/internal/repository"
)

// UserResolver turns the JWT subject into a full user record.  Satisfied by
// *repository.UserRepo.
type UserResolver interface {
	GetByID(ctx context.Context, id uint64) (*model.User, error)
}

// errUnauthenticated covers a missing subject or a token whose user no
// longer exists; both surface as 401 rather than 404.
var errUnauthenticated = errors.New("unauthorized")

// errorCodes is the single domain-error to HTTP mapping.  Order matters only
// for readability; the sentinels are disjoint.
var errorCodes = []struct {
	err    error
	status int
	code   string
}{
	{errUnauthenticated, http.StatusUnauthorized, "UNAUTHORIZED"},

	{repository.ErrInvalidTimeRange, http.StatusBadRequest, "INVALID_TIME_RANGE"},
	{repository.ErrSameCoach, http.StatusBadRequest, "SAME_COACH"},

	{repository.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{repository.ErrInvalidRole, http.StatusForbidden, "INVALID_ROLE"},

	{repository.ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
	{repository.ErrRelationNotFound, http.StatusNotFound, "RELATION_NOT_FOUND"},
	{repository.ErrTableNotFound, http.StatusNotFound, "TABLE_NOT_FOUND"},
	{repository.ErrBookingNotFound, http.StatusNotFound, "BOOKING_NOT_FOUND"},
	{repository.ErrRequestNotFound, http.StatusNotFound, "REQUEST_NOT_FOUND"},

	{repository.ErrNotPending, http.StatusConflict, "NOT_PENDING"},
	{repository.ErrNotApproved, http.StatusConflict, "NOT_APPROVED"},
	{repository.ErrRelationNotApproved, http.StatusConflict, "RELATION_NOT_APPROVED"},
	{repository.ErrDuplicateActiveRelation, http.StatusConflict, "DUPLICATE_ACTIVE_RELATION"},
	{repository.ErrDuplicatePendingRequest, http.StatusConflict, "DUPLICATE_PENDING_REQUEST"},
	{repository.ErrResourceUnavailable, http.StatusConflict, "TABLE_UNAVAILABLE"},
	{repository.ErrTimeConflict, http.StatusConflict, "TIME_CONFLICT"},
	{repository.ErrNoActiveCoach, http.StatusConflict, "NO_ACTIVE_COACH"},
	{repository.ErrRateUnavailable, http.StatusConflict, "RATE_UNAVAILABLE"},
}

// writeError renders a domain error.  Policy violations carry their own
// reason code; anything unmapped is a 500 and the detail stays in the log.
func writeError(c echo.Context, err error) error {
	var v *policy.Violation
	if errors.As(err, &v) {
		return c.JSON(http.StatusConflict, echo.Map{"error": v.Message, "code": string(v.Reason)})
	}
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			return c.JSON(e.status, echo.Map{"error": e.err.Error(), "code": e.code})
		}
	}
	c.Logger().Errorf("internal error on %s %s: %v", c.Request().Method, c.Path(), err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error", "code": "INTERNAL"})
}

// actorFrom resolves the authenticated user from the context value set by the
// JWT middleware.  A missing subject or a vanished account both yield
// errUnauthenticated.
func actorFrom(c echo.Context, users UserResolver) (*model.User, error) {
	id, ok := c.Get("user_id").(uint64)
	if !ok || id == 0 {
		return nil, errUnauthenticated
	}
	u, err := users.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, errUnauthenticated
		}
		return nil, err
	}
	return u, nil
}

// pathID parses the :id path parameter.
func pathID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg, "code": "INVALID_BODY"})
}
