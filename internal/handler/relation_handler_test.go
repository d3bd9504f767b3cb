package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ttcenter/reservation-api/internal/model"
	"github.com/ttcenter/reservation-api/internal/repository"
)

// stubUsers satisfies UserResolver and UserReader with an in-memory map.
type stubUsers struct {
	users map[uint64]*model.User
}

func (s *stubUsers) GetByID(_ context.Context, id uint64) (*model.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, repository.ErrUserNotFound
}

func (s *stubUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func knownUsers() *stubUsers {
	return &stubUsers{users: map[uint64]*model.User{
		1: {ID: 1, Email: "student@example.com", Role: model.RoleStudent, RealName: "Student", IsActive: true},
		2: {ID: 2, Email: "coach@example.com", Role: model.RoleCoach, RealName: "Coach", IsActive: true},
		3: {ID: 3, Email: "admin@example.com", Role: model.RoleCampusAdmin, RealName: "Admin", IsActive: true},
	}}
}

// relationSvcMock lets each test pin the service behavior per method.
type relationSvcMock struct {
	propose   func(ctx context.Context, actor *model.User, counterpartID uint64, notes *string) (*model.Relation, error)
	decide    func(ctx context.Context, actor *model.User, relationID uint64, approve bool) (*model.Relation, error)
	terminate func(ctx context.Context, actor *model.User, relationID uint64) (*model.Relation, error)
	list      func(ctx context.Context, actor *model.User) ([]model.Relation, error)
}

func (m *relationSvcMock) Propose(ctx context.Context, actor *model.User, counterpartID uint64, notes *string) (*model.Relation, error) {
	return m.propose(ctx, actor, counterpartID, notes)
}

func (m *relationSvcMock) Decide(ctx context.Context, actor *model.User, relationID uint64, approve bool) (*model.Relation, error) {
	return m.decide(ctx, actor, relationID, approve)
}

func (m *relationSvcMock) Terminate(ctx context.Context, actor *model.User, relationID uint64) (*model.Relation, error) {
	return m.terminate(ctx, actor, relationID)
}

func (m *relationSvcMock) ListForUser(ctx context.Context, actor *model.User) ([]model.Relation, error) {
	return m.list(ctx, actor)
}

// invoke runs a handler against a synthetic authenticated request and
// returns the recorder plus the decoded JSON body.
func invoke(t *testing.T, h echo.HandlerFunc, method, path, body string, userID uint64, params map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != 0 {
		c.Set("user_id", userID)
	}
	for k, v := range params {
		c.SetParamNames(k)
		c.SetParamValues(v)
	}
	require.NoError(t, h(c))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	return rec, decoded
}

func TestRelationPropose(t *testing.T) {
	rel := &model.Relation{ID: 7, CoachID: 2, StudentID: 1, Status: model.RelationPending, AppliedBy: model.AppliedByStudent}
	h := NewRelationHandler(&relationSvcMock{
		propose: func(_ context.Context, actor *model.User, counterpartID uint64, _ *string) (*model.Relation, error) {
			assert.Equal(t, uint64(1), actor.ID)
			assert.Equal(t, uint64(2), counterpartID)
			return rel, nil
		},
	}, knownUsers())

	rec, body := invoke(t, h.Propose, http.MethodPost, "/v1/relations", `{"counterpart_id":2}`, 1, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, float64(7), body["id"])
	assert.Equal(t, "pending", body["status"])
}

func TestRelationProposeValidation(t *testing.T) {
	h := NewRelationHandler(&relationSvcMock{}, knownUsers())

	rec, body := invoke(t, h.Propose, http.MethodPost, "/v1/relations", `{}`, 1, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_BODY", body["code"])

	// self-pairing rejected before the service is called
	rec, body = invoke(t, h.Propose, http.MethodPost, "/v1/relations", `{"counterpart_id":1}`, 1, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_BODY", body["code"])
}

func TestRelationProposeConflicts(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"duplicate active pair", repository.ErrDuplicateActiveRelation, http.StatusConflict, "DUPLICATE_ACTIVE_RELATION"},
		{"counterpart missing", repository.ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
		{"role lacks capability", repository.ErrInvalidRole, http.StatusForbidden, "INVALID_ROLE"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewRelationHandler(&relationSvcMock{
				propose: func(context.Context, *model.User, uint64, *string) (*model.Relation, error) {
					return nil, tc.err
				},
			}, knownUsers())
			rec, body := invoke(t, h.Propose, http.MethodPost, "/v1/relations", `{"counterpart_id":2}`, 1, nil)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, body["code"])
		})
	}
}

func TestRelationApproveAndReject(t *testing.T) {
	var gotApprove bool
	h := NewRelationHandler(&relationSvcMock{
		decide: func(_ context.Context, actor *model.User, relationID uint64, approve bool) (*model.Relation, error) {
			assert.Equal(t, uint64(2), actor.ID)
			assert.Equal(t, uint64(9), relationID)
			gotApprove = approve
			st := model.RelationRejected
			if approve {
				st = model.RelationApproved
			}
			return &model.Relation{ID: relationID, CoachID: 2, StudentID: 1, Status: st}, nil
		},
	}, knownUsers())

	rec, body := invoke(t, h.Approve, http.MethodPost, "/v1/relations/9/approve", "", 2, map[string]string{"id": "9"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, gotApprove)
	assert.Equal(t, "approved", body["status"])

	rec, body = invoke(t, h.Reject, http.MethodPost, "/v1/relations/9/reject", "", 2, map[string]string{"id": "9"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, gotApprove)
	assert.Equal(t, "rejected", body["status"])
}

func TestRelationDecideErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"already decided", repository.ErrNotPending, http.StatusConflict, "NOT_PENDING"},
		{"not the counter-party", repository.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"unknown relation", repository.ErrRelationNotFound, http.StatusNotFound, "RELATION_NOT_FOUND"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewRelationHandler(&relationSvcMock{
				decide: func(context.Context, *model.User, uint64, bool) (*model.Relation, error) {
					return nil, tc.err
				},
			}, knownUsers())
			rec, body := invoke(t, h.Approve, http.MethodPost, "/v1/relations/9/approve", "", 2, map[string]string{"id": "9"})
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, body["code"])
		})
	}
}

func TestRelationTerminate(t *testing.T) {
	h := NewRelationHandler(&relationSvcMock{
		terminate: func(_ context.Context, actor *model.User, relationID uint64) (*model.Relation, error) {
			assert.Equal(t, uint64(12), relationID)
			return &model.Relation{ID: relationID, Status: model.RelationTerminated}, nil
		},
	}, knownUsers())

	rec, body := invoke(t, h.Terminate, http.MethodPost, "/v1/relations/12/terminate", "", 1, map[string]string{"id": "12"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "terminated", body["status"])
}

func TestRelationTerminateNotApproved(t *testing.T) {
	h := NewRelationHandler(&relationSvcMock{
		terminate: func(context.Context, *model.User, uint64) (*model.Relation, error) {
			return nil, repository.ErrNotApproved
		},
	}, knownUsers())

	rec, body := invoke(t, h.Terminate, http.MethodPost, "/v1/relations/12/terminate", "", 1, map[string]string{"id": "12"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "NOT_APPROVED", body["code"])
}

func TestRelationList(t *testing.T) {
	h := NewRelationHandler(&relationSvcMock{
		list: func(_ context.Context, actor *model.User) ([]model.Relation, error) {
			return []model.Relation{
				{ID: 1, CoachID: 2, StudentID: 1, Status: model.RelationApproved},
				{ID: 2, CoachID: 5, StudentID: 1, Status: model.RelationTerminated},
			}, nil
		},
	}, knownUsers())

	rec, body := invoke(t, h.List, http.MethodGet, "/v1/relations", "", 1, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rels, ok := body["relations"].([]any)
	require.True(t, ok)
	assert.Len(t, rels, 2)
}

func TestUnknownSubjectIs401(t *testing.T) {
	h := NewRelationHandler(&relationSvcMock{}, knownUsers())

	// user 99 passed JWT validation but has been removed since
	rec, body := invoke(t, h.List, http.MethodGet, "/v1/relations", "", 99, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", body["code"])
}
