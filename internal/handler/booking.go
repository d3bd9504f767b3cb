package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ttcenter/reservation-api/internal/model"
	"github.com/ttcenter/reservation-api/internal/repository"
	"github.com/ttcenter/reservation-api/internal/service"
)

// BookingService is the slice of the booking use cases the handler needs.
// Satisfied by *service.BookingService.
type BookingService interface {
	Create(ctx context.Context, actor *model.User, in service.CreateBookingInput) (*model.Booking, error)
	Confirm(ctx context.Context, actor *model.User, bookingID uint64) (*model.Booking, error)
	Cancel(ctx context.Context, actor *model.User, bookingID uint64, reason string) (*model.Booking, error)
	ListForUser(ctx context.Context, actor *model.User, f repository.ListFilter) ([]repository.BookingDetail, error)
}

// BookingHandler serves the /v1/bookings routes.
type BookingHandler struct {
	Svc   BookingService
	Users UserResolver
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(svc BookingService, users UserResolver) *BookingHandler {
	if svc == nil || users == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Svc: svc, Users: users}
}

// List handles GET /v1/bookings with optional status, from and to query
// filters.  from/to are RFC3339 and filter on the booking start time.
func (h *BookingHandler) List(c echo.Context) error {
	actor, err := actorFrom(c, h.Users)
	if err != nil {
		return writeError(c, err)
	}
	var f repository.ListFilter
	f.Status = c.QueryParam("status")
	if s := c.QueryParam("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return badRequest(c, "from must be RFC3339")
		}
		f.From = &t
	}
	if s := c.QueryParam("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return badRequest(c, "to must be RFC3339")
		}
		f.To = &t
	}
	details, err := h.Svc.ListForUser(c.Request().Context(), actor, f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": details})
}

// Create handles POST /v1/bookings.
func (h *BookingHandler) Create(c echo.Context) error {
	actor, err := actorFrom(c, h.Users)
	if err != nil {
		return writeError(c, err)
	}
	var body struct {
		RelationID uint64  `json:"relation_id"`
		TableID    uint64  `json:"table_id"`
		StartTime  string  `json:"start_time"`
		EndTime    string  `json:"end_time"`
		Notes      *string `json:"notes"`
	}
	if err := c.Bind(&body); err != nil || body.RelationID == 0 || body.TableID == 0 {
		return badRequest(c, "relation_id and table_id are required")
	}
	start, err := time.Parse(time.RFC3339, body.StartTime)
	if err != nil {
		return badRequest(c, "start_time must be RFC3339")
	}
	end, err := time.Parse(time.RFC3339, body.EndTime)
	if err != nil {
		return badRequest(c, "end_time must be RFC3339")
	}

	b, err := h.Svc.Create(c.Request().Context(), actor, service.CreateBookingInput{
		RelationID: body.RelationID,
		TableID:    body.TableID,
		StartTime:  start,
		EndTime:    end,
		Notes:      body.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, newBookingView(b))
}

// Confirm handles POST /v1/bookings/:id/confirm.
func (h *BookingHandler) Confirm(c echo.Context) error {
	actor, err := actorFrom(c, h.Users)
	if err != nil {
		return writeError(c, err)
	}
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid booking id")
	}
	b, err := h.Svc.Confirm(c.Request().Context(), actor, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, newBookingView(b))
}

// Cancel handles POST /v1/bookings/:id/cancel.  The body may carry an
// optional free-text reason.
func (h *BookingHandler) Cancel(c echo.Context) error {
	actor, err := actorFrom(c, h.Users)
	if err != nil {
		return writeError(c, err)
	}
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid booking id")
	}
	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.Bind(&body) // empty body is fine
	b, err := h.Svc.Cancel(c.Request().Context(), actor, id, body.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, newBookingView(b))
}
