package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pliva-retreat/booking-api/internal/model"
	"github.com/pliva-retreat/booking-api/internal/reservation"
)

// OfferingRepo reads and seeds the `offerings` table.  Amenities and photos
// are kept as JSON arrays so their order survives a round trip.
type OfferingRepo struct {
	db *sql.DB
}

// NewOfferingRepo returns an OfferingRepo bound to db.
func NewOfferingRepo(db *sql.DB) *OfferingRepo { return &OfferingRepo{db: db} }

const offeringColumns = `id, title, description, price_per_night_cents, max_guests, amenities, photos, created_at`

// ListOfferings returns every offering ordered by id.
func (r *OfferingRepo) ListOfferings(ctx context.Context) ([]model.Offering, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+offeringColumns+` FROM offerings ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list offerings: %w", err)
	}
	defer rows.Close()
	out := make([]model.Offering, 0)
	for rows.Next() {
		o, err := scanOffering(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list offerings: %w", err)
	}
	return out, nil
}

// CountOfferings returns the number of seeded offerings.
func (r *OfferingRepo) CountOfferings(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM offerings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count offerings: %w", err)
	}
	return n, nil
}

// InsertOffering stores a new offering.  Nil amenity or photo lists are
// stored as empty arrays.
func (r *OfferingRepo) InsertOffering(ctx context.Context, o *model.Offering) error {
	amenities, err := jsonList(o.Amenities)
	if err != nil {
		return err
	}
	photos, err := jsonList(o.Photos)
	if err != nil {
		return err
	}
	const q = `INSERT INTO offerings (id, title, description, price_per_night_cents, max_guests, amenities, photos, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, o.ID, o.Title, o.Description, o.PricePerNightCents,
		o.MaxGuests, amenities, photos, o.CreatedAt); err != nil {
		return fmt.Errorf("insert offering %s: %w", o.ID, err)
	}
	return nil
}

// GetOffering returns the offering with the given id or
// reservation.ErrNotFound.
func (r *OfferingRepo) GetOffering(ctx context.Context, id string) (model.Offering, error) {
	return getOffering(ctx, r.db, id)
}

func getOffering(ctx context.Context, q querier, id string) (model.Offering, error) {
	row := q.QueryRowContext(ctx, `SELECT `+offeringColumns+` FROM offerings WHERE id = ?`, id)
	o, err := scanOffering(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Offering{}, reservation.ErrNotFound
	}
	return o, err
}

func scanOffering(row scanner) (model.Offering, error) {
	var (
		o                 model.Offering
		amenities, photos []byte
	)
	if err := row.Scan(&o.ID, &o.Title, &o.Description, &o.PricePerNightCents, &o.MaxGuests,
		&amenities, &photos, &o.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Offering{}, err
		}
		return model.Offering{}, fmt.Errorf("scan offering: %w", err)
	}
	if err := decodeList(amenities, &o.Amenities); err != nil {
		return model.Offering{}, fmt.Errorf("decode amenities of %s: %w", o.ID, err)
	}
	if err := decodeList(photos, &o.Photos); err != nil {
		return model.Offering{}, fmt.Errorf("decode photos of %s: %w", o.ID, err)
	}
	return o, nil
}

func jsonList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeList(raw []byte, dst *[]string) error {
	*dst = []string{}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
