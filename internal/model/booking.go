package model

import (
	"time"

	"github.com/pliva-retreat/booking-api/internal/calendar"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled:
		return true
	}
	return false
}

// Booking reserves one offering for the nights [StartDate, EndDate).
// UserEmail and OfferingID are lookup values only; nothing enforces that
// the referenced user or offering still exists.
//
// Fields:
//  ID              – opaque record identifier (UUID).
//  UserEmail       – email of the guest who booked.
//  OfferingID      – offering being reserved.
//  StartDate       – check-in day (first reserved night).
//  EndDate         – checkout day (not reserved).
//  Guests          – number of guests, at least one.
//  TotalPriceCents – nightly price times nights, in cents.
//  Status          – pending, confirmed or cancelled.
//  Note            – optional free-text note from the guest.
//  CreatedAt       – creation timestamp, used for ordering.
//  UpdatedAt       – last status change.
type Booking struct {
	ID              string        // bookings.id
	UserEmail       string        // bookings.user_email
	OfferingID      string        // bookings.offering_id
	StartDate       calendar.Date // bookings.start_date
	EndDate         calendar.Date // bookings.end_date
	Guests          int           // bookings.guests
	TotalPriceCents int64         // bookings.total_price_cents
	Status          BookingStatus // bookings.status
	Note            *string       // bookings.note (nullable)
	CreatedAt       time.Time     // bookings.created_at
	UpdatedAt       time.Time     // bookings.updated_at
}

// Range returns the booked nights as a half-open range.
func (b Booking) Range() calendar.Range {
	return calendar.NewRange(b.StartDate, b.EndDate)
}

// Blocking reports whether the booking holds its dates.  Cancelled
// bookings never block other bookings.
func (b Booking) Blocking() bool { return b.Status != BookingCancelled }
