// Package reservation decides which nights of an offering are free and
// admits new bookings.  It holds no state of its own; every decision is
// computed from the bookings returned by the Store.
package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pliva-retreat/booking-api/internal/calendar"
	"github.com/pliva-retreat/booking-api/internal/model"
)

// DayAvailability is one entry of an availability answer.
type DayAvailability struct {
	Date      calendar.Date
	Available bool
}

// AdmitRequest carries everything needed to admit a booking.
type AdmitRequest struct {
	UserEmail  string
	OfferingID string
	Range      calendar.Range
	Guests     int
	Note       *string
}

// Engine implements availability and admission on top of a Store.
type Engine struct {
	store Store
	log   *zap.Logger
	now   func() time.Time
	newID func() string
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for admission decisions.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithClock overrides the clock used for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine returns an Engine backed by store.
func NewEngine(store Store, opts ...Option) *Engine {
	if store == nil {
		panic("nil store passed to NewEngine")
	}
	e := &Engine{
		store: store,
		log:   zap.NewNop(),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Availability reports, for every day of rng in ascending order, whether
// the offering is free that night.  An unknown offering has no bookings and
// is therefore reported as fully available.  An empty range yields an empty
// slice.
func (e *Engine) Availability(ctx context.Context, offeringID string, rng calendar.Range) ([]DayAvailability, error) {
	out := make([]DayAvailability, 0, rng.Nights())
	if rng.Empty() {
		return out, nil
	}
	bookings, err := e.store.OverlappingBookings(ctx, offeringID, rng)
	if err != nil {
		return nil, fmt.Errorf("load overlapping bookings: %w", err)
	}
	blocked := make(map[calendar.Date]struct{})
	for _, b := range bookings {
		if !b.Blocking() {
			continue
		}
		// Only the part inside rng can affect the answer.
		for day := range b.Range().Intersect(rng).Days() {
			blocked[day] = struct{}{}
		}
	}
	for day := range rng.Days() {
		_, taken := blocked[day]
		out = append(out, DayAvailability{Date: day, Available: !taken})
	}
	return out, nil
}

// Admit validates, prices and persists a booking.  The whole
// check-then-insert runs under the offering's lock so two overlapping
// requests can never both succeed.  Checks run in this order: offering
// exists (ErrNotFound), no overlapping booking (ErrConflict), at least one
// night (ErrInvalidRange), guest count within capacity (ErrInvalidGuests,
// ErrCapacityExceeded).
func (e *Engine) Admit(ctx context.Context, req AdmitRequest) (model.Booking, error) {
	var admitted model.Booking
	err := e.store.WithOfferingLock(ctx, req.OfferingID, func(s Store) error {
		off, err := s.GetOffering(ctx, req.OfferingID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("load offering: %w", err)
		}

		conflicts, err := s.OverlappingBookings(ctx, req.OfferingID, req.Range)
		if err != nil {
			return fmt.Errorf("check conflicts: %w", err)
		}
		for _, b := range conflicts {
			if b.Blocking() {
				return ErrConflict
			}
		}

		nights := req.Range.Start.DaysUntil(req.Range.End)
		if nights <= 0 {
			return ErrInvalidRange
		}
		if req.Guests < 1 {
			return ErrInvalidGuests
		}
		if req.Guests > off.MaxGuests {
			return ErrCapacityExceeded
		}

		now := e.now().UTC()
		b := model.Booking{
			ID:              e.newID(),
			UserEmail:       req.UserEmail,
			OfferingID:      off.ID,
			StartDate:       req.Range.Start,
			EndDate:         req.Range.End,
			Guests:          req.Guests,
			TotalPriceCents: off.PricePerNightCents * int64(nights),
			Status:          model.BookingConfirmed,
			Note:            req.Note,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.InsertBooking(ctx, &b); err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}
		admitted = b
		return nil
	})
	if err != nil {
		e.log.Info("booking rejected",
			zap.String("offering_id", req.OfferingID),
			zap.Stringer("range", req.Range),
			zap.Error(err))
		return model.Booking{}, err
	}
	e.log.Info("booking admitted",
		zap.String("booking_id", admitted.ID),
		zap.String("offering_id", admitted.OfferingID),
		zap.Stringer("range", req.Range),
		zap.Int64("total_price_cents", admitted.TotalPriceCents))
	return admitted, nil
}

// ListBookings returns the bookings made under email, newest first.
func (e *Engine) ListBookings(ctx context.Context, email string) ([]model.Booking, error) {
	bookings, err := e.store.ListBookingsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

// Cancel moves a booking owned by email to the cancelled state, freeing
// its nights.  The status change runs under the offering's lock so it is
// ordered with concurrent admissions.
func (e *Engine) Cancel(ctx context.Context, email, bookingID string) (model.Booking, error) {
	b, err := e.store.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			return model.Booking{}, ErrBookingNotFound
		}
		return model.Booking{}, fmt.Errorf("load booking: %w", err)
	}
	if b.UserEmail != email {
		return model.Booking{}, ErrForbidden
	}
	err = e.store.WithOfferingLock(ctx, b.OfferingID, func(s Store) error {
		cur, err := s.GetBooking(ctx, bookingID)
		if err != nil {
			return fmt.Errorf("reload booking: %w", err)
		}
		if cur.Status == model.BookingCancelled {
			return ErrAlreadyCancelled
		}
		if err := s.UpdateBookingStatus(ctx, bookingID, model.BookingCancelled); err != nil {
			return fmt.Errorf("cancel booking: %w", err)
		}
		b = cur
		return nil
	})
	if err != nil {
		return model.Booking{}, err
	}
	b.Status = model.BookingCancelled
	b.UpdatedAt = e.now().UTC()
	e.log.Info("booking cancelled", zap.String("booking_id", b.ID), zap.String("offering_id", b.OfferingID))
	return b, nil
}
