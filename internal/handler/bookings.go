package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-seat-booking/internal/booking"
	"github.com/iliyamo/cinema-seat-booking/internal/catalog"
	"github.com/iliyamo/cinema-seat-booking/internal/model"
)

// BookingHandler confirms bookings without a UI session and lists the
// booking history.
type BookingHandler struct {
	Catalog *catalog.Catalog
	Store   *booking.Store
}

// NewBookingHandler constructs a BookingHandler.  Both dependencies must be
// non-nil.
func NewBookingHandler(cat *catalog.Catalog, store *booking.Store) *BookingHandler {
	if cat == nil || store == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Catalog: cat, Store: store}
}

type createBookingRequest struct {
	Seats       []string `json:"seats"`        // labels such as "A1"
	SeatIndices []int    `json:"seat_indices"` // raw grid indices
}

// CreateBooking handles POST /v1/shows/:id/bookings.  The show must be in
// the current catalog.  Seats may be given as labels, indices or both and
// are de-duplicated.  It answers 201 with the new booking record.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	show, err := h.Catalog.Find(c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	var body createBookingRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	seats := make([]int, 0, len(body.Seats)+len(body.SeatIndices))
	for _, label := range body.Seats {
		idx, err := model.ParseSeat(label)
		if err != nil {
			return writeError(c, err)
		}
		seats = append(seats, idx)
	}
	for _, idx := range body.SeatIndices {
		if !model.ValidSeat(idx) {
			return writeError(c, fmt.Errorf("%w: index=%d", model.ErrInvalidSeat, idx))
		}
		seats = append(seats, idx)
	}

	rec, err := h.Store.Confirm(c.Request().Context(), string(show.ID), show.Name, seats)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": rec})
}

// ListBookings handles GET /v1/bookings and returns every booking, newest
// first.
func (h *BookingHandler) ListBookings(c echo.Context) error {
	items := h.Store.Bookings()
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}
