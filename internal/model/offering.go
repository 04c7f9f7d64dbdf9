package model

import "time"

// Offering is a bookable inventory unit such as the camper van or the
// cabin.  Offerings are seeded once and are read-only afterwards; their ID
// is a stable human readable string, not a generated key.
//
// Fields:
//  ID                 – stable identifier ("van", "cabin").
//  Title              – display title.
//  Description        – display description.
//  PricePerNightCents – non-negative nightly price in cents.
//  MaxGuests          – positive guest capacity.
//  Amenities          – amenity labels, order preserved.
//  Photos             – photo references, order preserved.
//  CreatedAt          – when the offering was seeded.
type Offering struct {
	ID                 string    // offerings.id
	Title              string    // offerings.title
	Description        string    // offerings.description
	PricePerNightCents int64     // offerings.price_per_night_cents
	MaxGuests          int       // offerings.max_guests
	Amenities          []string  // offerings.amenities (JSON array)
	Photos             []string  // offerings.photos (JSON array)
	CreatedAt          time.Time // offerings.created_at
}

// CentsToAmount converts a price in cents to a decimal amount (165.0 for
// 16500).
func CentsToAmount(cents int64) float64 { return float64(cents) / 100 }
