package reservation

import (
	"context"

	"github.com/pliva-retreat/booking-api/internal/calendar"
	"github.com/pliva-retreat/booking-api/internal/model"
)

// Store is the persistence the engine works against.  The MySQL repository
// and the in-memory store both implement it.
type Store interface {
	// GetOffering returns ErrNotFound when no offering has the id.
	GetOffering(ctx context.Context, id string) (model.Offering, error)

	// OverlappingBookings returns the non-cancelled bookings of the offering
	// whose range overlaps rng under the half-open test
	// (start < rng.End AND end > rng.Start).
	OverlappingBookings(ctx context.Context, offeringID string, rng calendar.Range) ([]model.Booking, error)

	// InsertBooking persists a new booking.  The ID is assigned by the caller.
	InsertBooking(ctx context.Context, b *model.Booking) error

	// GetBooking returns ErrBookingNotFound when no booking has the id.
	GetBooking(ctx context.Context, id string) (model.Booking, error)

	// UpdateBookingStatus sets the status of an existing booking.
	UpdateBookingStatus(ctx context.Context, id string, status model.BookingStatus) error

	// ListBookingsByEmail returns the user's bookings, newest first.
	ListBookingsByEmail(ctx context.Context, email string) ([]model.Booking, error)

	// WithOfferingLock runs fn while holding an exclusive lock scoped to the
	// offering.  Calls for the same offering are serialized; fn receives a
	// Store bound to the lock (a transaction for SQL stores) and must use
	// it instead of the outer store.  An error from fn aborts the work.
	WithOfferingLock(ctx context.Context, offeringID string, fn func(Store) error) error
}
