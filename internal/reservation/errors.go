package reservation

import "errors"

// Domain errors returned by the engine.  Handlers translate them into HTTP
// responses; none of them are retried.
var (
	// ErrNotFound means the requested offering does not exist.  Store
	// implementations also return it from GetOffering.
	ErrNotFound = errors.New("offering not found")

	// ErrConflict means a non-cancelled booking already holds at least one
	// of the requested nights.
	ErrConflict = errors.New("selected dates are no longer available")

	// ErrInvalidRange means the end date is not after the start date.
	ErrInvalidRange = errors.New("end date must be after start date")

	// ErrInvalidGuests means fewer than one guest was requested.
	ErrInvalidGuests = errors.New("guests must be at least 1")

	// ErrCapacityExceeded means more guests were requested than the
	// offering sleeps.
	ErrCapacityExceeded = errors.New("guests exceed offering capacity")

	// ErrBookingNotFound means no booking has the given id.  Store
	// implementations also return it from GetBooking.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrForbidden means the booking belongs to someone else.
	ErrForbidden = errors.New("forbidden")

	// ErrAlreadyCancelled means the booking was cancelled before.
	ErrAlreadyCancelled = errors.New("booking already cancelled")
)
