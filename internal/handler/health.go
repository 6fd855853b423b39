package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-seat-booking/internal/ui"
)

// Health answers liveness probes with a plain "ok".
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Ready handles GET /readyz.  The service is ready once the last catalog
// refresh succeeded; otherwise it answers 503 with the load error message.
func (h *ShowHandler) Ready(c echo.Context) error {
	resp := echo.Map{
		"shows":    len(h.Catalog.Shows()),
		"bookings": len(h.Store.Bookings()),
	}
	if h.Catalog.LastError() != nil {
		resp["status"] = "unavailable"
		resp["error"] = ui.MsgLoadFailed
		return c.JSON(http.StatusServiceUnavailable, resp)
	}
	resp["status"] = "ok"
	return c.JSON(http.StatusOK, resp)
}
