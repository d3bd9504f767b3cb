package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ttcenter/reservation-api/internal/model"
	"github.com/ttcenter/reservation-api/internal/repository"
	"github.com/ttcenter/reservation-api/internal/utils"
)

// UserReader is the slice of the user repository the auth endpoints need.
type UserReader interface {
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// AuthHandler issues access tokens and resolves the caller's own profile.
// Account creation lives in the accounts system; this service only
// authenticates existing users.
type AuthHandler struct {
	Users     UserReader
	JWTSecret string
	TTLMin    int
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(users UserReader, secret string, ttlMin int) *AuthHandler {
	if users == nil {
		panic("nil UserReader passed to NewAuthHandler")
	}
	return &AuthHandler{Users: users, JWTSecret: secret, TTLMin: ttlMin}
}

// Login handles POST /v1/auth/login.  Wrong email and wrong password are
// indistinguishable in the response.
func (h *AuthHandler) Login(c echo.Context) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil || body.Email == "" || body.Password == "" {
		return badRequest(c, "email and password are required")
	}

	u, err := h.Users.GetByEmail(c.Request().Context(), body.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials", "code": "INVALID_CREDENTIALS"})
		}
		return writeError(c, err)
	}
	if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, body.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials", "code": "INVALID_CREDENTIALS"})
	}

	tok, err := utils.NewAccessToken(h.JWTSecret, u.ID, string(u.Role), u.Email, h.TTLMin)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access_token": tok.Token,
		"expires_at":   tok.Exp.Format(time.RFC3339),
		"user":         newUserView(u),
	})
}

// Me handles GET /v1/me.
func (h *AuthHandler) Me(c echo.Context) error {
	actor, err := actorFrom(c, h.Users)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, newUserView(actor))
}
