package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pliva-retreat/booking-api/internal/calendar"
	"github.com/pliva-retreat/booking-api/internal/model"
	"github.com/pliva-retreat/booking-api/internal/reservation"
)

// BookingRepo provides access to the `bookings` table and implements
// reservation.Store.  Dates are DATE columns; timestamps are stored in UTC.
// A BookingRepo returned to a WithOfferingLock callback runs every
// statement inside that call's transaction.
type BookingRepo struct {
	db *sql.DB
	q  querier
	tx bool
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db, q: db} }

var _ reservation.Store = (*BookingRepo)(nil)

const bookingColumns = `id, user_email, offering_id, start_date, end_date, guests, total_price_cents, status, note, created_at, updated_at`

// GetOffering loads an offering through the repo's querier so that, inside
// WithOfferingLock, it reads within the locking transaction.
func (r *BookingRepo) GetOffering(ctx context.Context, id string) (model.Offering, error) {
	return getOffering(ctx, r.q, id)
}

// OverlappingBookings returns non-cancelled bookings of the offering that
// overlap rng.  The predicate is the half-open test
// start_date < rng.End AND end_date > rng.Start.
func (r *BookingRepo) OverlappingBookings(ctx context.Context, offeringID string, rng calendar.Range) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + `
	           FROM bookings
	           WHERE offering_id = ? AND start_date < ? AND end_date > ? AND status <> 'cancelled'
	           ORDER BY start_date`
	return r.queryBookings(ctx, q, offeringID, rng.End, rng.Start)
}

// InsertBooking inserts b.  b.ID, CreatedAt and UpdatedAt must be set by
// the caller.
func (r *BookingRepo) InsertBooking(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings (` + bookingColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.q.ExecContext(ctx, q,
		b.ID, b.UserEmail, b.OfferingID, b.StartDate, b.EndDate, b.Guests, b.TotalPriceCents,
		string(b.Status), nullString(b.Note), b.CreatedAt.UTC(), b.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

// GetBooking returns a single booking or reservation.ErrBookingNotFound.
func (r *BookingRepo) GetBooking(ctx context.Context, id string) (model.Booking, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, reservation.ErrBookingNotFound
	}
	return b, err
}

// UpdateBookingStatus changes a booking's status and bumps updated_at.
func (r *BookingRepo) UpdateBookingStatus(ctx context.Context, id string, status model.BookingStatus) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE bookings SET status = ?, updated_at = UTC_TIMESTAMP(6) WHERE id = ?`,
		string(status), id)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	if n == 0 {
		return reservation.ErrBookingNotFound
	}
	return nil
}

// ListBookingsByEmail returns all bookings made under email ordered by
// creation time descending (newest first).
func (r *BookingRepo) ListBookingsByEmail(ctx context.Context, email string) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE user_email = ? ORDER BY created_at DESC`
	return r.queryBookings(ctx, q, email)
}

// WithOfferingLock opens a transaction and takes a row lock on the
// offering (SELECT ... FOR UPDATE) before calling fn.  Concurrent
// admissions for the same offering queue on that lock, so the conflict
// check and the insert in fn observe a consistent set of bookings.  The
// transaction commits when fn returns nil and rolls back otherwise.
// Nested calls reuse the surrounding transaction.
func (r *BookingRepo) WithOfferingLock(ctx context.Context, offeringID string, fn func(reservation.Store) error) error {
	if r.tx {
		return fn(r)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %v", ErrStoreUnavailable, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var locked string
	err = tx.QueryRowContext(ctx, `SELECT id FROM offerings WHERE id = ? FOR UPDATE`, offeringID).Scan(&locked)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("lock offering %s: %w", offeringID, err)
	}

	if err := fn(&BookingRepo{db: r.db, q: tx, tx: true}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return nil
}

func (r *BookingRepo) queryBookings(ctx context.Context, q string, args ...any) ([]model.Booking, error) {
	rows, err := r.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()
	out := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	return out, nil
}

func scanBooking(row scanner) (model.Booking, error) {
	var (
		b      model.Booking
		status string
		note   sql.NullString
	)
	err := row.Scan(&b.ID, &b.UserEmail, &b.OfferingID, &b.StartDate, &b.EndDate, &b.Guests,
		&b.TotalPriceCents, &status, &note, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Booking{}, err
		}
		return model.Booking{}, fmt.Errorf("scan booking: %w", err)
	}
	b.Status = model.BookingStatus(status)
	if !b.Status.Valid() {
		return model.Booking{}, fmt.Errorf("scan booking %s: unknown status %q", b.ID, status)
	}
	b.Note = stringPtr(note)
	return b, nil
}
