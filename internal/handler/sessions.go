package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinema-seat-booking/internal/ui"
)

// SessionHandler drives UI sessions over HTTP: a client creates a session,
// posts the DOM events it observes and renders the returned view.
type SessionHandler struct {
	Sessions *ui.Sessions
}

// NewSessionHandler constructs a SessionHandler.
func NewSessionHandler(sessions *ui.Sessions) *SessionHandler {
	if sessions == nil {
		panic("nil sessions passed to NewSessionHandler")
	}
	return &SessionHandler{Sessions: sessions}
}

// Create handles POST /v1/sessions.
func (h *SessionHandler) Create(c echo.Context) error {
	id, ctrl := h.Sessions.Create()
	logrus.WithField("session_id", id).Debug("session created")
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "view": ctrl.View()})
}

// Get handles GET /v1/sessions/:id.
func (h *SessionHandler) Get(c echo.Context) error {
	id := c.Param("id")
	ctrl, err := h.Sessions.Get(id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "view": ctrl.View()})
}

// Delete handles DELETE /v1/sessions/:id.
func (h *SessionHandler) Delete(c echo.Context) error {
	if err := h.Sessions.Delete(c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Dispatch handles POST /v1/sessions/:id/events.  The body is a ui.Event.
// The view is returned even when the event fails so the client can redraw.
func (h *SessionHandler) Dispatch(c echo.Context) error {
	id := c.Param("id")
	ctrl, err := h.Sessions.Get(id)
	if err != nil {
		return writeError(c, err)
	}
	var ev ui.Event
	if err := c.Bind(&ev); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event"})
	}
	view, err := ctrl.Dispatch(c.Request().Context(), ev)
	if err != nil {
		status, msg := statusFor(err)
		if status >= http.StatusInternalServerError {
			logrus.WithError(err).WithField("session_id", id).Error("event failed")
		}
		return c.JSON(status, echo.Map{"error": msg, "view": view})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "view": view})
}
