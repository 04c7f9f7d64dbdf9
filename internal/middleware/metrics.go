package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pliva-retreat/booking-api/internal/metrics"
)

// Metrics records request count and latency by route pattern.  Requests
// that matched no route are grouped under "unmatched".
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			commitError(c, err)

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			metrics.ObserveHTTP(path, c.Request().Method, c.Response().Status, time.Since(start))
			return nil
		}
	}
}
