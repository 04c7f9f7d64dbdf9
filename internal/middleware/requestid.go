package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// CtxRequestID is the context key holding the request id.
const CtxRequestID = "request_id"

// RequestID echoes an incoming X-Request-ID or assigns a fresh UUID, and
// exposes it to handlers and the access log.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Request().Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, rid)
			c.Set(CtxRequestID, rid)
			return next(c)
		}
	}
}

// RequestIDOf returns the id assigned by RequestID, or "".
func RequestIDOf(c echo.Context) string { return ctxString(c, CtxRequestID) }
