package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/pliva-retreat/booking-api/internal/calendar"
	"github.com/pliva-retreat/booking-api/internal/metrics"
	"github.com/pliva-retreat/booking-api/internal/model"
	"github.com/pliva-retreat/booking-api/internal/queue"
	"github.com/pliva-retreat/booking-api/internal/reservation"
)

const publishTimeout = 3 * time.Second

// Bookings wraps the reservation engine with the side effects of an
// admission: metrics and the booking.confirmed event.
type Bookings struct {
	engine *reservation.Engine
	pub    Publisher
	log    *zap.Logger
}

// NewBookings returns a Bookings service.  A nil publisher disables events.
func NewBookings(engine *reservation.Engine, pub Publisher, log *zap.Logger) *Bookings {
	if pub == nil {
		pub = NopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Bookings{engine: engine, pub: pub, log: log}
}

// Availability reports per-day availability of an offering.
func (s *Bookings) Availability(ctx context.Context, offeringID string, rng calendar.Range) ([]reservation.DayAvailability, error) {
	return s.engine.Availability(ctx, offeringID, rng)
}

// Create admits a booking, counts the outcome and publishes the event.  A
// failed publish is logged and does not fail the booking.
func (s *Bookings) Create(ctx context.Context, req reservation.AdmitRequest) (model.Booking, error) {
	b, err := s.engine.Admit(ctx, req)
	label := req.OfferingID
	if errors.Is(err, reservation.ErrNotFound) {
		label = "unknown"
	}
	metrics.RecordAdmission(label, outcome(err))
	if err != nil {
		return model.Booking{}, err
	}

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	perr := s.pub.PublishBookingConfirmed(pctx, queue.NewBookingConfirmedEvent(b))
	metrics.RecordPublish(perr)
	if perr != nil {
		s.log.Warn("publish booking.confirmed failed", zap.String("booking_id", b.ID), zap.Error(perr))
	}
	return b, nil
}

// List returns the user's bookings, newest first.
func (s *Bookings) List(ctx context.Context, email string) ([]model.Booking, error) {
	return s.engine.ListBookings(ctx, email)
}

// Cancel cancels a booking owned by email.
func (s *Bookings) Cancel(ctx context.Context, email, bookingID string) (model.Booking, error) {
	return s.engine.Cancel(ctx, email, bookingID)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeAdmitted
	case errors.Is(err, reservation.ErrConflict):
		return metrics.OutcomeConflict
	case errors.Is(err, reservation.ErrNotFound),
		errors.Is(err, reservation.ErrInvalidRange),
		errors.Is(err, reservation.ErrInvalidGuests),
		errors.Is(err, reservation.ErrCapacityExceeded):
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeError
	}
}
