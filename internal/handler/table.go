package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ttcenter/reservation-api/internal/model"
)

// TableService is the slice of the booking service the table routes need.
// Satisfied by *service.BookingService.
type TableService interface {
	ListTables(ctx context.Context, campusID *uint64) ([]model.Table, error)
	AvailableTables(ctx context.Context, campusID *uint64, start, end time.Time) ([]model.Table, error)
}

// TableHandler serves the read-only /v1/tables routes.  Both sit behind the
// Redis response cache; a cached availability answer can go stale, which is
// acceptable because booking creation re-checks under lock.
type TableHandler struct {
	Svc TableService
}

// NewTableHandler constructs a TableHandler.
func NewTableHandler(svc TableService) *TableHandler {
	if svc == nil {
		panic("nil TableService passed to NewTableHandler")
	}
	return &TableHandler{Svc: svc}
}

func campusFilter(c echo.Context) (*uint64, bool) {
	s := c.QueryParam("campus_id")
	if s == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return nil, false
	}
	return &id, true
}

// List handles GET /v1/tables.
func (h *TableHandler) List(c echo.Context) error {
	campusID, ok := campusFilter(c)
	if !ok {
		return badRequest(c, "invalid campus_id")
	}
	tables, err := h.Svc.ListTables(c.Request().Context(), campusID)
	if err != nil {
		return writeError(c, err)
	}
	views := make([]tableView, 0, len(tables))
	for i := range tables {
		views = append(views, newTableView(&tables[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"tables": views})
}

// Available handles GET /v1/tables/available?start=...&end=...
func (h *TableHandler) Available(c echo.Context) error {
	campusID, ok := campusFilter(c)
	if !ok {
		return badRequest(c, "invalid campus_id")
	}
	start, err := time.Parse(time.RFC3339, c.QueryParam("start"))
	if err != nil {
		return badRequest(c, "start must be RFC3339")
	}
	end, err := time.Parse(time.RFC3339, c.QueryParam("end"))
	if err != nil {
		return badRequest(c, "end must be RFC3339")
	}
	tables, err := h.Svc.AvailableTables(c.Request().Context(), campusID, start, end)
	if err != nil {
		return writeError(c, err)
	}
	views := make([]tableView, 0, len(tables))
	for i := range tables {
		views = append(views, newTableView(&tables[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"tables": views})
}
