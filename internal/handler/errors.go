package handler

import (
	"context"
	"database/sql/driver"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/pliva-retreat/booking-api/internal/middleware"
	"github.com/pliva-retreat/booking-api/internal/repository"
	"github.com/pliva-retreat/booking-api/internal/reservation"
	"github.com/pliva-retreat/booking-api/internal/service"
)

// domainErrors lists the errors a client may see verbatim.  The message
// sent is always the sentinel's own text, never that of a wrapper.
var domainErrors = []struct {
	err    error
	status int
}{
	{reservation.ErrNotFound, http.StatusNotFound},
	{reservation.ErrBookingNotFound, http.StatusNotFound},
	{reservation.ErrConflict, http.StatusConflict},
	{reservation.ErrAlreadyCancelled, http.StatusConflict},
	{service.ErrAlreadyExists, http.StatusConflict},
	{reservation.ErrInvalidRange, http.StatusBadRequest},
	{reservation.ErrInvalidGuests, http.StatusBadRequest},
	{reservation.ErrCapacityExceeded, http.StatusBadRequest},
	{service.ErrUnauthorized, http.StatusUnauthorized},
	{reservation.ErrForbidden, http.StatusForbidden},
}

// statusFor maps a service or store error to an HTTP status and the message
// shown to the client.  Unknown errors are reported as a bare 500 so that
// internal details never reach the response.
func statusFor(err error) (int, string) {
	for _, d := range domainErrors {
		if errors.Is(err, d.err) {
			return d.status, d.err.Error()
		}
	}
	switch {
	case errors.Is(err, repository.ErrStoreUnavailable),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "service unavailable"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// fail writes err as {"error": ...}.  Server side failures are logged
// with the request id since the client only sees a generic message.
func fail(c echo.Context, log *zap.Logger, err error) error {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError && log != nil {
		log.Error("request failed",
			zap.String("rid", middleware.RequestIDOf(c)),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	return c.JSON(status, echo.Map{"error": msg})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}
