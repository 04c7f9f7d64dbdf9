package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/pliva-retreat/booking-api/internal/handler"
	"github.com/pliva-retreat/booking-api/internal/metrics"
	"github.com/pliva-retreat/booking-api/internal/middleware"
)

// RegisterRoutes registers the operational endpoints: banner, liveness,
// diagnostics and the Prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/", handler.Root)
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	e.GET("/v1/diagnostics", h.Diagnostics)
}

// RegisterAuth registers all authentication-related routes.  Session
// operations live under /v1/auth and need no access token; /v1/me does.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout takes the refresh token in the body.  A valid access token,
	// when present, lets it revoke every session of the user instead.
	g.POST("/logout", a.Logout, middleware.OptionalJWT(jwtSecret))

	e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterPublic registers unauthenticated browse endpoints.  The
// offering list goes through the response cache; availability does not,
// since it changes with every booking.
func RegisterPublic(e *echo.Echo, o *handler.OfferingHandler, b *handler.BookingHandler, respCache echo.MiddlewareFunc) {
	if respCache == nil {
		e.GET("/v1/offerings", o.List)
	} else {
		e.GET("/v1/offerings", o.List, respCache)
	}
	e.POST("/v1/availability", b.Availability)
}

// RegisterBookings registers the booking endpoints.  All of them require a
// valid JWT; bookings are always filed under the token's email.
func RegisterBookings(e *echo.Echo, h *handler.BookingHandler, jwtSecret string) {
	g := e.Group("/v1/bookings", middleware.JWTAuth(jwtSecret))
	g.POST("", h.Create)
	g.GET("", h.List)
	g.DELETE("/:id", h.Cancel)
}
