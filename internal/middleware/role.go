package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ttcenter/reservation-api/internal/model"
)

// RequireRole aborts with 403 unless the authenticated user's role is one of
// the given roles.  It assumes JWTAuth already stored the "role" context
// value.  Route-level role gates are coarse filters only; the services still
// verify that the actor is the relevant party.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			v, ok := c.Get("role").(string)
			role := model.Role(v)
			if !ok || !role.Valid() || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
