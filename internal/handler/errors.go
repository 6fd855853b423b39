// Package handler exposes the HTTP API of the booking service.  Handlers are
// thin: they parse the request, call the catalog, booking store or UI
// session and translate sentinel errors into status codes.
package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinema-seat-booking/internal/booking"
	"github.com/iliyamo/cinema-seat-booking/internal/catalog"
	"github.com/iliyamo/cinema-seat-booking/internal/model"
	"github.com/iliyamo/cinema-seat-booking/internal/ui"
)

// statusFor maps domain errors to an HTTP status and a client message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, booking.ErrNoShowSelected):
		return http.StatusBadRequest, ui.MsgSelectShow
	case errors.Is(err, booking.ErrNoSeatsSelected):
		return http.StatusBadRequest, ui.MsgSelectSeats
	case errors.Is(err, model.ErrInvalidSeat):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, ui.ErrUnhandledEvent):
		return http.StatusBadRequest, "unhandled event"
	case errors.Is(err, booking.ErrSeatUnavailable):
		return http.StatusConflict, err.Error()
	case errors.Is(err, catalog.ErrShowNotFound):
		return http.StatusNotFound, "show not found"
	case errors.Is(err, ui.ErrSessionNotFound):
		return http.StatusNotFound, "session not found"
	case errors.Is(err, catalog.ErrFetchFailed):
		return http.StatusBadGateway, ui.MsgLoadFailed
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func writeError(c echo.Context, err error) error {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		logrus.WithError(err).WithField("path", c.Path()).Error("request failed")
	}
	return c.JSON(status, echo.Map{"error": msg})
}
