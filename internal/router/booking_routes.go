package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/cinema-seat-booking/internal/config"
	"github.com/iliyamo/cinema-seat-booking/internal/handler"
	"github.com/iliyamo/cinema-seat-booking/internal/middleware"
)

// RegisterBookings registers direct booking confirmation and the booking
// history.  Confirmation is rate limited per client.
func RegisterBookings(e *echo.Echo, h *handler.BookingHandler, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	e.POST("/v1/shows/:id/bookings", h.CreateBooking, middleware.NewTokenBucket(rlCfg, rdb))
	e.GET("/v1/bookings", h.ListBookings)
}
