// Package queue defines the booking event payload exchanged over RabbitMQ
// and the consumer that records those events in the booking log.
package queue

import (
	"fmt"
	"time"

	"github.com/pliva-retreat/booking-api/internal/model"
)

// BookingConfirmedEvent is published after a booking is admitted.  It
// carries enough detail for downstream consumers to log or notify without
// querying the database.
type BookingConfirmedEvent struct {
	BookingID       string `json:"booking_id"`
	UserEmail       string `json:"user_email"`
	OfferingID      string `json:"offering_id"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	Nights          int    `json:"nights"`
	Guests          int    `json:"guests"`
	TotalPriceCents int64  `json:"total_price_cents"`
	ConfirmedAt     string `json:"confirmed_at"`
}

// NewBookingConfirmedEvent builds the event for an admitted booking.
func NewBookingConfirmedEvent(b model.Booking) BookingConfirmedEvent {
	return BookingConfirmedEvent{
		BookingID:       b.ID,
		UserEmail:       b.UserEmail,
		OfferingID:      b.OfferingID,
		StartDate:       b.StartDate.String(),
		EndDate:         b.EndDate.String(),
		Nights:          b.Range().Nights(),
		Guests:          b.Guests,
		TotalPriceCents: b.TotalPriceCents,
		ConfirmedAt:     b.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// LogLine renders the event as the single line written to the booking log.
func (ev BookingConfirmedEvent) LogLine() string {
	return fmt.Sprintf("[%s] Booking confirmed | booking_id=%s | user=%s | offering=%s | dates=%s..%s | nights=%d | guests=%d | total=%d cents\n",
		ev.ConfirmedAt, ev.BookingID, ev.UserEmail, ev.OfferingID, ev.StartDate, ev.EndDate, ev.Nights, ev.Guests, ev.TotalPriceCents)
}
