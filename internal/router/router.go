// Package router wires handlers, middleware and routes onto the Echo
// instance.  All protected routes live under /v1 behind JWT auth and the
// Redis token-bucket rate limiter; the response cache covers only the
// read-only table listings.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/ttcenter/reservation-api/internal/config"
	"github.com/ttcenter/reservation-api/internal/handler"
	"github.com/ttcenter/reservation-api/internal/middleware"
	"github.com/ttcenter/reservation-api/internal/model"
)

// Handlers bundles everything RegisterRoutes mounts.
type Handlers struct {
	Auth        *handler.AuthHandler
	Relations   *handler.RelationHandler
	Bookings    *handler.BookingHandler
	Tables      *handler.TableHandler
	CoachChange *handler.CoachChangeHandler
}

// RegisterRoutes mounts the full REST surface.  rdb may be nil, which
// disables rate limiting and caching.
func RegisterRoutes(e *echo.Echo, h Handlers, jwtSecret string, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	e.POST("/v1/auth/login", h.Auth.Login, rateLimit)

	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(jwtSecret))
	v1.Use(middleware.RequireRole(model.RoleStudent, model.RoleCoach, model.RoleCampusAdmin, model.RoleSuperAdmin))
	v1.Use(rateLimit)

	v1.GET("/me", h.Auth.Me)

	v1.GET("/relations", h.Relations.List)
	v1.POST("/relations", h.Relations.Propose,
		middleware.RequireRole(model.RoleStudent, model.RoleCoach))
	v1.POST("/relations/:id/approve", h.Relations.Approve)
	v1.POST("/relations/:id/reject", h.Relations.Reject)
	v1.POST("/relations/:id/terminate", h.Relations.Terminate)

	v1.GET("/tables", h.Tables.List, cache)
	v1.GET("/tables/available", h.Tables.Available, cache)

	v1.GET("/bookings", h.Bookings.List)
	v1.POST("/bookings", h.Bookings.Create,
		middleware.RequireRole(model.RoleStudent, model.RoleCoach))
	v1.POST("/bookings/:id/confirm", h.Bookings.Confirm,
		middleware.RequireRole(model.RoleCoach))
	v1.POST("/bookings/:id/cancel", h.Bookings.Cancel,
		middleware.RequireRole(model.RoleStudent, model.RoleCoach))

	v1.GET("/coach-change-requests", h.CoachChange.List)
	v1.POST("/coach-change-requests", h.CoachChange.Request,
		middleware.RequireRole(model.RoleStudent))
	v1.POST("/coach-change-requests/:id/decide", h.CoachChange.Decide,
		middleware.RequireRole(model.RoleCoach, model.RoleCampusAdmin, model.RoleSuperAdmin))
}
