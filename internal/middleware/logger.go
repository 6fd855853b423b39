package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// RequestLogger writes one logrus entry per request.  Server errors log at
// error level, client errors at warn, the rest at info.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			entry := logrus.WithFields(logrus.Fields{
				"method":  c.Request().Method,
				"path":    c.Path(),
				"uri":     c.Request().RequestURI,
				"status":  status,
				"latency": time.Since(start).String(),
				"remote":  c.RealIP(),
				"bytes":   c.Response().Size,
				"cache":   c.Response().Header().Get("X-Cache"),
			})
			switch {
			case status >= 500:
				entry.WithError(err).Error("request")
			case status >= 400:
				entry.Warn("request")
			default:
				entry.Info("request")
			}
			return nil
		}
	}
}
