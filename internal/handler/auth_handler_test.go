package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ttcenter/reservation-api/internal/model"
	"github.com/ttcenter/reservation-api/internal/utils"
)

func authUsers(t *testing.T) *stubUsers {
	t.Helper()
	hash, err := utils.HashPassword("open sesame", 4)
	require.NoError(t, err)
	return &stubUsers{users: map[uint64]*model.User{
		1: {ID: 1, Email: "student@example.com", PasswordHash: hash, Role: model.RoleStudent, RealName: "Student", IsActive: true},
		2: {ID: 2, Email: "gone@example.com", PasswordHash: hash, Role: model.RoleCoach, RealName: "Inactive", IsActive: false},
	}}
}

func TestLogin(t *testing.T) {
	h := NewAuthHandler(authUsers(t), "test-secret", 30)

	rec, body := invoke(t, h.Login, http.MethodPost, "/v1/auth/login",
		`{"email":"student@example.com","password":"open sesame"}`, 0, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, body["access_token"])
	assert.NotEmpty(t, body["expires_at"])
	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "student@example.com", user["email"])
	assert.Equal(t, "student", user["role"])
}

func TestLoginRejections(t *testing.T) {
	h := NewAuthHandler(authUsers(t), "test-secret", 30)

	cases := []struct {
		name string
		body string
	}{
		{"wrong password", `{"email":"student@example.com","password":"wrong"}`},
		{"unknown email", `{"email":"nobody@example.com","password":"open sesame"}`},
		{"inactive account", `{"email":"gone@example.com","password":"open sesame"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, body := invoke(t, h.Login, http.MethodPost, "/v1/auth/login", tc.body, 0, nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "INVALID_CREDENTIALS", body["code"])
		})
	}

	rec, body := invoke(t, h.Login, http.MethodPost, "/v1/auth/login", `{"email":"student@example.com"}`, 0, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_BODY", body["code"])
}

func TestMe(t *testing.T) {
	h := NewAuthHandler(authUsers(t), "test-secret", 30)

	rec, body := invoke(t, h.Me, http.MethodGet, "/v1/me", "", 1, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["id"])
	assert.Equal(t, "student", body["role"])

	rec, body = invoke(t, h.Me, http.MethodGet, "/v1/me", "", 0, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", body["code"])
}
