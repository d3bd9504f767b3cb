package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ttcenter/reservation-api/internal/model"
	"github.com/ttcenter/reservation-api/internal/policy"
	"github.com/ttcenter/reservation-api/internal/repository"
	"github.com/ttcenter/reservation-api/internal/service"
)

type bookingSvcMock struct {
	create  func(ctx context.Context, actor *model.User, in service.CreateBookingInput) (*model.Booking, error)
	confirm func(ctx context.Context, actor *model.User, bookingID uint64) (*model.Booking, error)
	cancel  func(ctx context.Context, actor *model.User, bookingID uint64, reason string) (*model.Booking, error)
	list    func(ctx context.Context, actor *model.User, f repository.ListFilter) ([]repository.BookingDetail, error)
}

func (m *bookingSvcMock) Create(ctx context.Context, actor *model.User, in service.CreateBookingInput) (*model.Booking, error) {
	return m.create(ctx, actor, in)
}

func (m *bookingSvcMock) Confirm(ctx context.Context, actor *model.User, bookingID uint64) (*model.Booking, error) {
	return m.confirm(ctx, actor, bookingID)
}

func (m *bookingSvcMock) Cancel(ctx context.Context, actor *model.User, bookingID uint64, reason string) (*model.Booking, error) {
	return m.cancel(ctx, actor, bookingID, reason)
}

func (m *bookingSvcMock) ListForUser(ctx context.Context, actor *model.User, f repository.ListFilter) ([]repository.BookingDetail, error) {
	return m.list(ctx, actor, f)
}

func TestBookingCreate(t *testing.T) {
	start := time.Date(2030, 6, 10, 14, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute)
	h := NewBookingHandler(&bookingSvcMock{
		create: func(_ context.Context, actor *model.User, in service.CreateBookingInput) (*model.Booking, error) {
			assert.Equal(t, uint64(1), actor.ID)
			assert.Equal(t, uint64(5), in.RelationID)
			assert.Equal(t, uint64(3), in.TableID)
			assert.True(t, in.StartTime.Equal(start))
			assert.True(t, in.EndTime.Equal(end))
			return &model.Booking{
				ID: 42, RelationID: 5, TableID: 3,
				StartTime: in.StartTime, EndTime: in.EndTime,
				DurationHours: 1.5, FeeCents: 30000, Status: model.BookingPending,
			}, nil
		},
	}, knownUsers())

	body := `{"relation_id":5,"table_id":3,"start_time":"2030-06-10T14:00:00Z","end_time":"2030-06-10T15:30:00Z"}`
	rec, got := invoke(t, h.Create, http.MethodPost, "/v1/bookings", body, 1, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, float64(42), got["id"])
	assert.Equal(t, "pending", got["status"])
	assert.Equal(t, float64(30000), got["fee_cents"])
}

func TestBookingCreateBadBody(t *testing.T) {
	h := NewBookingHandler(&bookingSvcMock{}, knownUsers())

	rec, body := invoke(t, h.Create, http.MethodPost, "/v1/bookings", `{"table_id":3}`, 1, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_BODY", body["code"])

	rec, body = invoke(t, h.Create, http.MethodPost, "/v1/bookings",
		`{"relation_id":5,"table_id":3,"start_time":"tomorrow","end_time":"2030-06-10T15:30:00Z"}`, 1, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_BODY", body["code"])
}

func TestBookingCreateErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"overlapping booking", repository.ErrTimeConflict, http.StatusConflict, "TIME_CONFLICT"},
		{"relation not approved", repository.ErrRelationNotApproved, http.StatusConflict, "RELATION_NOT_APPROVED"},
		{"table in maintenance", repository.ErrResourceUnavailable, http.StatusConflict, "TABLE_UNAVAILABLE"},
		{"start in the past", repository.ErrInvalidTimeRange, http.StatusBadRequest, "INVALID_TIME_RANGE"},
		{"coach has no rate", repository.ErrRateUnavailable, http.StatusConflict, "RATE_UNAVAILABLE"},
		{"not a party", repository.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"role lacks capability", repository.ErrInvalidRole, http.StatusForbidden, "INVALID_ROLE"},
	}
	body := `{"relation_id":5,"table_id":3,"start_time":"2030-06-10T14:00:00Z","end_time":"2030-06-10T15:30:00Z"}`
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewBookingHandler(&bookingSvcMock{
				create: func(context.Context, *model.User, service.CreateBookingInput) (*model.Booking, error) {
					return nil, tc.err
				},
			}, knownUsers())
			rec, got := invoke(t, h.Create, http.MethodPost, "/v1/bookings", body, 1, nil)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, got["code"])
		})
	}
}

func TestBookingConfirm(t *testing.T) {
	now := time.Now().UTC()
	h := NewBookingHandler(&bookingSvcMock{
		confirm: func(_ context.Context, actor *model.User, bookingID uint64) (*model.Booking, error) {
			assert.Equal(t, uint64(2), actor.ID)
			assert.Equal(t, uint64(42), bookingID)
			return &model.Booking{ID: 42, Status: model.BookingConfirmed, ConfirmedAt: &now}, nil
		},
	}, knownUsers())

	rec, body := invoke(t, h.Confirm, http.MethodPost, "/v1/bookings/42/confirm", "", 2, map[string]string{"id": "42"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "confirmed", body["status"])
	assert.NotEmpty(t, body["confirmed_at"])
}

func TestBookingCancel(t *testing.T) {
	now := time.Now().UTC()
	by := uint64(1)
	h := NewBookingHandler(&bookingSvcMock{
		cancel: func(_ context.Context, actor *model.User, bookingID uint64, reason string) (*model.Booking, error) {
			assert.Equal(t, uint64(1), actor.ID)
			assert.Equal(t, uint64(42), bookingID)
			assert.Equal(t, "sick", reason)
			r := reason
			return &model.Booking{ID: 42, Status: model.BookingCancelled, CancelledAt: &now, CancelledBy: &by, CancelReason: &r}, nil
		},
	}, knownUsers())

	rec, body := invoke(t, h.Cancel, http.MethodPost, "/v1/bookings/42/cancel", `{"reason":"sick"}`, 1, map[string]string{"id": "42"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cancelled", body["status"])
	assert.Equal(t, "sick", body["cancel_reason"])
}

func TestBookingCancelPolicyDenials(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code string
	}{
		{"less than 24h notice", &policy.Violation{Reason: policy.ReasonTooLate, Message: "too late"}, "TOO_LATE_TO_CANCEL"},
		{"monthly quota reached", &policy.Violation{Reason: policy.ReasonMonthlyQuota, Message: "quota"}, "MONTHLY_QUOTA_EXCEEDED"},
		{"already terminal", &policy.Violation{Reason: policy.ReasonAlreadyFinal, Message: "final"}, "ALREADY_FINAL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewBookingHandler(&bookingSvcMock{
				cancel: func(context.Context, *model.User, uint64, string) (*model.Booking, error) {
					return nil, tc.err
				},
			}, knownUsers())
			rec, body := invoke(t, h.Cancel, http.MethodPost, "/v1/bookings/42/cancel", "", 1, map[string]string{"id": "42"})
			assert.Equal(t, http.StatusConflict, rec.Code)
			assert.Equal(t, tc.code, body["code"])
		})
	}
}

func TestBookingListFilters(t *testing.T) {
	var got repository.ListFilter
	h := NewBookingHandler(&bookingSvcMock{
		list: func(_ context.Context, _ *model.User, f repository.ListFilter) ([]repository.BookingDetail, error) {
			got = f
			return []repository.BookingDetail{{ID: 1, Status: model.BookingConfirmed}}, nil
		},
	}, knownUsers())

	rec, body := invoke(t, h.List, http.MethodGet,
		"/v1/bookings?status=confirmed&from=2024-06-01T00:00:00Z&to=2024-06-30T23:59:59Z", "", 1, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "confirmed", got.Status)
	require.NotNil(t, got.From)
	require.NotNil(t, got.To)
	assert.Equal(t, 2024, got.From.Year())
	bookings, ok := body["bookings"].([]any)
	require.True(t, ok)
	assert.Len(t, bookings, 1)
}

func TestBookingListBadDate(t *testing.T) {
	h := NewBookingHandler(&bookingSvcMock{}, knownUsers())
	rec, body := invoke(t, h.List, http.MethodGet, "/v1/bookings?from=yesterday", "", 1, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_BODY", body["code"])
}
