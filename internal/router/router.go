// Package router wires handlers and middleware onto the Echo instance.
package router

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinema-seat-booking/internal/config"
	"github.com/iliyamo/cinema-seat-booking/internal/handler"
	"github.com/iliyamo/cinema-seat-booking/internal/middleware"
)

// RegisterRoutes registers routes that are not part of the versioned API.
// At the moment it only exposes a health check endpoint.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterShows registers the show browsing endpoints.  The listing routes
// go through the Redis response cache, which is dropped after every catalog
// refresh, whether it came from this API or from a UI session.  Detail and
// seat routes are never cached because seat state changes with every
// booking.
func RegisterShows(e *echo.Echo, h *handler.ShowHandler, cacheCfg config.CacheConfig, rdb *redis.Client) {
	cached := middleware.NewRedisCache(cacheCfg, rdb)
	h.Catalog.OnRefresh(func(ctx context.Context, _ error) {
		if err := middleware.InvalidateCache(ctx, cacheCfg, rdb); err != nil {
			logrus.WithError(err).Warn("could not invalidate show cache")
		}
	})

	e.GET("/readyz", h.Ready)
	e.GET("/v1/shows", h.ListShows, cached)
	e.GET("/v1/genres", h.ListGenres, cached)
	e.POST("/v1/shows/refresh", h.Refresh)
	e.GET("/v1/shows/:id", h.GetShow)
	e.GET("/v1/shows/:id/seats", h.GetSeats)
}
