package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-seat-booking/internal/booking"
	"github.com/iliyamo/cinema-seat-booking/internal/catalog"
	"github.com/iliyamo/cinema-seat-booking/internal/ui"
)

// ShowHandler serves the show grid, genre list and per-show seat maps.
type ShowHandler struct {
	Catalog *catalog.Catalog
	Store   *booking.Store
}

// NewShowHandler constructs a ShowHandler and panics on missing
// dependencies.
func NewShowHandler(cat *catalog.Catalog, store *booking.Store) *ShowHandler {
	if cat == nil || store == nil {
		panic("nil dependency passed to NewShowHandler")
	}
	return &ShowHandler{Catalog: cat, Store: store}
}

// loadFailed marks the response as not cacheable when the last refresh
// failed and reports whether it did.
func (h *ShowHandler) loadFailed(c echo.Context) bool {
	if h.Catalog.LastError() == nil {
		return false
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return true
}

// ListShows handles GET /v1/shows?q=&genre=.  It returns the filtered grid
// cards under "items".  When the last refresh failed the list is empty,
// "error" carries the user-facing message and the response is not cached.
func (h *ShowHandler) ListShows(c echo.Context) error {
	shows := h.Catalog.Filter(c.QueryParam("q"), c.QueryParam("genre"))
	resp := echo.Map{"items": ui.NewCards(shows)}
	if h.loadFailed(c) {
		resp["error"] = ui.MsgLoadFailed
	}
	return c.JSON(http.StatusOK, resp)
}

// ListGenres handles GET /v1/genres.
func (h *ShowHandler) ListGenres(c echo.Context) error {
	h.loadFailed(c)
	return c.JSON(http.StatusOK, echo.Map{"items": h.Catalog.Genres()})
}

// Refresh handles POST /v1/shows/refresh.  It re-fetches the feed; cached
// listings are dropped by the catalog's refresh hook.  A failed fetch
// answers 502 and leaves the grid empty.
func (h *ShowHandler) Refresh(c echo.Context) error {
	if err := h.Catalog.Refresh(c.Request().Context()); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(h.Catalog.Shows())})
}

// GetShow handles GET /v1/shows/:id and returns the modal view of a show:
// title, meta line, short summary, trailer and the seat grid.
func (h *ShowHandler) GetShow(c echo.Context) error {
	show, err := h.Catalog.Find(c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	id := string(show.ID)
	m := ui.NewModal(show,
		func(i int) bool { return h.Store.IsOccupied(id, i) },
		func(int) bool { return false },
	)
	return c.JSON(http.StatusOK, echo.Map{"item": m})
}

// GetSeats handles GET /v1/shows/:id/seats.  Seats of unknown shows are
// still reported, since bookings outlive catalog refreshes.
func (h *ShowHandler) GetSeats(c echo.Context) error {
	id := c.Param("id")
	occupied := h.Store.Occupied(id)
	set := make(map[int]bool, len(occupied))
	for _, i := range occupied {
		set[i] = true
	}
	seats, _ := ui.NewSeatGrid(func(i int) bool { return set[i] }, func(int) bool { return false })
	return c.JSON(http.StatusOK, echo.Map{
		"show_id":  id,
		"occupied": occupied,
		"seats":    seats,
	})
}
