package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ttcenter/reservation-api/internal/model"
	"github.com/ttcenter/reservation-api/internal/repository"
)

type coachChangeSvcMock struct {
	request func(ctx context.Context, actor *model.User, targetCoachID uint64, reason string) (*model.CoachChangeRequest, error)
	decide  func(ctx context.Context, actor *model.User, requestID uint64, approve bool) (*model.CoachChangeRequest, error)
	list    func(ctx context.Context, actor *model.User) ([]model.CoachChangeRequest, error)
}

func (m *coachChangeSvcMock) Request(ctx context.Context, actor *model.User, targetCoachID uint64, reason string) (*model.CoachChangeRequest, error) {
	return m.request(ctx, actor, targetCoachID, reason)
}

func (m *coachChangeSvcMock) Decide(ctx context.Context, actor *model.User, requestID uint64, approve bool) (*model.CoachChangeRequest, error) {
	return m.decide(ctx, actor, requestID, approve)
}

func (m *coachChangeSvcMock) ListForUser(ctx context.Context, actor *model.User) ([]model.CoachChangeRequest, error) {
	return m.list(ctx, actor)
}

func TestCoachChangeRequest(t *testing.T) {
	h := NewCoachChangeHandler(&coachChangeSvcMock{
		request: func(_ context.Context, actor *model.User, targetCoachID uint64, reason string) (*model.CoachChangeRequest, error) {
			assert.Equal(t, uint64(1), actor.ID)
			assert.Equal(t, uint64(5), targetCoachID)
			assert.Equal(t, "schedule conflict", reason)
			return &model.CoachChangeRequest{
				ID: 11, StudentID: 1, CurrentCoachID: 2, TargetCoachID: 5,
				Reason: reason, Status: model.CoachChangePending,
			}, nil
		},
	}, knownUsers())

	body := `{"target_coach_id":5,"reason":"schedule conflict"}`
	rec, got := invoke(t, h.Request, http.MethodPost, "/v1/coach-change-requests", body, 1, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, float64(11), got["id"])
	assert.Equal(t, "pending", got["status"])
	assert.Equal(t, float64(2), got["current_coach_id"])
}

func TestCoachChangeRequestErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"no approved coach", repository.ErrNoActiveCoach, http.StatusConflict, "NO_ACTIVE_COACH"},
		{"same coach", repository.ErrSameCoach, http.StatusBadRequest, "SAME_COACH"},
		{"pending request exists", repository.ErrDuplicatePendingRequest, http.StatusConflict, "DUPLICATE_PENDING_REQUEST"},
		{"target not a coach", repository.ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewCoachChangeHandler(&coachChangeSvcMock{
				request: func(context.Context, *model.User, uint64, string) (*model.CoachChangeRequest, error) {
					return nil, tc.err
				},
			}, knownUsers())
			rec, got := invoke(t, h.Request, http.MethodPost, "/v1/coach-change-requests", `{"target_coach_id":5}`, 1, nil)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, got["code"])
		})
	}
}

func TestCoachChangeDecide(t *testing.T) {
	h := NewCoachChangeHandler(&coachChangeSvcMock{
		decide: func(_ context.Context, actor *model.User, requestID uint64, approve bool) (*model.CoachChangeRequest, error) {
			assert.Equal(t, uint64(2), actor.ID)
			assert.Equal(t, uint64(11), requestID)
			assert.True(t, approve)
			return &model.CoachChangeRequest{ID: 11, Status: model.CoachChangeApproved}, nil
		},
	}, knownUsers())

	rec, got := invoke(t, h.Decide, http.MethodPost, "/v1/coach-change-requests/11/decide",
		`{"approve":true}`, 2, map[string]string{"id": "11"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "approved", got["status"])
}

func TestCoachChangeDecideRequiresFlag(t *testing.T) {
	h := NewCoachChangeHandler(&coachChangeSvcMock{}, knownUsers())

	rec, got := invoke(t, h.Decide, http.MethodPost, "/v1/coach-change-requests/11/decide",
		`{}`, 2, map[string]string{"id": "11"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_BODY", got["code"])
}

func TestCoachChangeDecideErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"already decided", repository.ErrNotPending, http.StatusConflict, "NOT_PENDING"},
		{"uninvolved coach", repository.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"unknown request", repository.ErrRequestNotFound, http.StatusNotFound, "REQUEST_NOT_FOUND"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewCoachChangeHandler(&coachChangeSvcMock{
				decide: func(context.Context, *model.User, uint64, bool) (*model.CoachChangeRequest, error) {
					return nil, tc.err
				},
			}, knownUsers())
			rec, got := invoke(t, h.Decide, http.MethodPost, "/v1/coach-change-requests/11/decide",
				`{"approve":false}`, 2, map[string]string{"id": "11"})
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, got["code"])
		})
	}
}

func TestCoachChangeList(t *testing.T) {
	h := NewCoachChangeHandler(&coachChangeSvcMock{
		list: func(_ context.Context, actor *model.User) ([]model.CoachChangeRequest, error) {
			return []model.CoachChangeRequest{{ID: 1, Status: model.CoachChangePending}}, nil
		},
	}, knownUsers())

	rec, got := invoke(t, h.List, http.MethodGet, "/v1/coach-change-requests", "", 1, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	reqs, ok := got["requests"].([]any)
	require.True(t, ok)
	assert.Len(t, reqs, 1)
}
