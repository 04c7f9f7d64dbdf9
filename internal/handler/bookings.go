package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/pliva-retreat/booking-api/internal/calendar"
	"github.com/pliva-retreat/booking-api/internal/middleware"
	"github.com/pliva-retreat/booking-api/internal/model"
	"github.com/pliva-retreat/booking-api/internal/reservation"
	"github.com/pliva-retreat/booking-api/internal/service"
)

// BookingHandler serves availability and the booking endpoints.
type BookingHandler struct {
	Bookings *service.Bookings
	Timeout  time.Duration
	Log      *zap.Logger
}

func NewBookingHandler(bookings *service.Bookings, timeout time.Duration, log *zap.Logger) *BookingHandler {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &BookingHandler{Bookings: bookings, Timeout: timeout, Log: log}
}

// maxNights caps the span of one availability query or booking.
const maxNights = 366

// Bounds of the MySQL DATE type.
var (
	minDate = calendar.NewDate(1000, time.January, 1)
	maxDate = calendar.NewDate(9999, time.December, 31)
)

// checkRange rejects dates the store cannot hold and spans longer than
// maxNights.  Order and emptiness are left to the engine.
func checkRange(r calendar.Range) (string, bool) {
	for _, d := range []calendar.Date{r.Start, r.End} {
		if d.Before(minDate) || d.After(maxDate) {
			return "dates must be between 1000-01-01 and 9999-12-31", false
		}
	}
	if r.Nights() > maxNights {
		return fmt.Sprintf("date range exceeds %d nights", maxNights), false
	}
	return "", true
}

// ----- DTOs -----

type availabilityReq struct {
	OfferingID string        `json:"offering_id" validate:"required"`
	StartDate  calendar.Date `json:"start_date" validate:"required"`
	EndDate    calendar.Date `json:"end_date" validate:"required"`
}

type dayDTO struct {
	Date      calendar.Date `json:"date"`
	Available bool          `json:"available"`
}

// Guests and the date order are checked by the engine so its error
// precedence holds over HTTP too.
type createBookingReq struct {
	OfferingID string        `json:"offering_id" validate:"required"`
	StartDate  calendar.Date `json:"start_date" validate:"required"`
	EndDate    calendar.Date `json:"end_date" validate:"required"`
	Guests     int           `json:"guests"`
	Note       *string       `json:"note" validate:"omitempty,max=1000"`
}

// BookingDTO is a booking as exposed by the API.
type BookingDTO struct {
	ID         string              `json:"id"`
	UserEmail  string              `json:"user_email"`
	OfferingID string              `json:"offering_id"`
	StartDate  calendar.Date       `json:"start_date"`
	EndDate    calendar.Date       `json:"end_date"`
	Nights     int                 `json:"nights"`
	Guests     int                 `json:"guests"`
	TotalPrice float64             `json:"total_price"`
	Status     model.BookingStatus `json:"status"`
	Note       *string             `json:"note"`
	CreatedAt  time.Time           `json:"created_at"`
}

func toBookingDTO(b model.Booking) BookingDTO {
	return BookingDTO{
		ID:         b.ID,
		UserEmail:  b.UserEmail,
		OfferingID: b.OfferingID,
		StartDate:  b.StartDate,
		EndDate:    b.EndDate,
		Nights:     b.Range().Nights(),
		Guests:     b.Guests,
		TotalPrice: model.CentsToAmount(b.TotalPriceCents),
		Status:     b.Status,
		Note:       b.Note,
		CreatedAt:  b.CreatedAt,
	}
}

// Availability handles POST /v1/availability.
func (h *BookingHandler) Availability(c echo.Context) error {
	var req availabilityReq
	if msg, ok := bindAndValidate(c, &req); !ok {
		return badRequest(c, msg)
	}

	rng := calendar.NewRange(req.StartDate, req.EndDate)
	if msg, ok := checkRange(rng); !ok {
		return badRequest(c, msg)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	days, err := h.Bookings.Availability(ctx, strings.TrimSpace(req.OfferingID), rng)
	if err != nil {
		return fail(c, h.Log, err)
	}
	out := make([]dayDTO, 0, len(days))
	for _, d := range days {
		out = append(out, dayDTO{Date: d.Date, Available: d.Available})
	}
	return c.JSON(http.StatusOK, echo.Map{"days": out})
}

// Create handles POST /v1/bookings.  The booking is filed under the email
// of the access token, never one taken from the body.
func (h *BookingHandler) Create(c echo.Context) error {
	var req createBookingReq
	if msg, ok := bindAndValidate(c, &req); !ok {
		return badRequest(c, msg)
	}
	email := middleware.Email(c)
	if email == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	rng := calendar.NewRange(req.StartDate, req.EndDate)
	if msg, ok := checkRange(rng); !ok {
		return badRequest(c, msg)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	b, err := h.Bookings.Create(ctx, reservation.AdmitRequest{
		UserEmail:  email,
		OfferingID: strings.TrimSpace(req.OfferingID),
		Range:      rng,
		Guests:     req.Guests,
		Note:       req.Note,
	})
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"ok":          true,
		"booking_id":  b.ID,
		"total_price": model.CentsToAmount(b.TotalPriceCents),
		"booking":     toBookingDTO(b),
	})
}

// List handles GET /v1/bookings for the authenticated user, newest first.
func (h *BookingHandler) List(c echo.Context) error {
	email := middleware.Email(c)
	if email == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	items, err := h.Bookings.List(ctx, email)
	if err != nil {
		return fail(c, h.Log, err)
	}
	out := make([]BookingDTO, 0, len(items))
	for _, b := range items {
		out = append(out, toBookingDTO(b))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Cancel handles DELETE /v1/bookings/:id.
func (h *BookingHandler) Cancel(c echo.Context) error {
	email := middleware.Email(c)
	if email == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return badRequest(c, "booking id required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	b, err := h.Bookings.Cancel(ctx, email, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toBookingDTO(b))
}
