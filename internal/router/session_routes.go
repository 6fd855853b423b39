package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/cinema-seat-booking/internal/config"
	"github.com/iliyamo/cinema-seat-booking/internal/handler"
	"github.com/iliyamo/cinema-seat-booking/internal/middleware"
)

// RegisterSessions registers the UI session endpoints under /v1/sessions.
// Event posting shares the token bucket with direct bookings, keyed by
// session id.
func RegisterSessions(e *echo.Echo, h *handler.SessionHandler, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	g := e.Group("/v1/sessions")
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/events", h.Dispatch, middleware.NewTokenBucket(rlCfg, rdb))
}
