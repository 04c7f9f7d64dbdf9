package reservation_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pliva-retreat/booking-api/internal/calendar"
	"github.com/pliva-retreat/booking-api/internal/model"
	"github.com/pliva-retreat/booking-api/internal/repository"
	"github.com/pliva-retreat/booking-api/internal/reservation"
)

func d(s string) calendar.Date {
	v, err := calendar.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return v
}

func rng(start, end string) calendar.Range { return calendar.NewRange(d(start), d(end)) }

func newEngine(t *testing.T, opts ...reservation.Option) (*reservation.Engine, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.InsertOffering(ctx, &model.Offering{ID: "van", PricePerNightCents: 5500, MaxGuests: 2}))
	require.NoError(t, store.InsertOffering(ctx, &model.Offering{ID: "cabin", PricePerNightCents: 6500, MaxGuests: 3}))
	return reservation.NewEngine(store, opts...), store
}

func admit(e *reservation.Engine, offering string, r calendar.Range) (model.Booking, error) {
	return e.Admit(context.Background(), reservation.AdmitRequest{
		UserEmail: "ana@example.com", OfferingID: offering, Range: r, Guests: 1,
	})
}

func TestAdmitVanScenario(t *testing.T) {
	e, _ := newEngine(t)

	b, err := admit(e, "van", rng("2024-06-01", "2024-06-04"))
	require.NoError(t, err)
	assert.Equal(t, 165.0, model.CentsToAmount(b.TotalPriceCents))
	assert.Equal(t, model.BookingConfirmed, b.Status)
	assert.NotEmpty(t, b.ID)

	_, err = admit(e, "van", rng("2024-06-03", "2024-06-05"))
	assert.ErrorIs(t, err, reservation.ErrConflict)

	b2, err := admit(e, "van", rng("2024-06-04", "2024-06-06"))
	require.NoError(t, err, "touching at the checkout day is not an overlap")
	assert.Equal(t, int64(11000), b2.TotalPriceCents)
}

func TestAdmitConflictTable(t *testing.T) {
	cases := []struct {
		name       string
		start, end string
		conflict   bool
	}{
		{"identical", "2024-06-10", "2024-06-13", true},
		{"inside", "2024-06-11", "2024-06-12", true},
		{"covering", "2024-06-09", "2024-06-14", true},
		{"overlaps start", "2024-06-08", "2024-06-11", true},
		{"overlaps end", "2024-06-12", "2024-06-15", true},
		{"ends at start", "2024-06-07", "2024-06-10", false},
		{"starts at end", "2024-06-13", "2024-06-15", false},
		{"far away", "2024-07-01", "2024-07-02", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e, _ := newEngine(t)
			_, err := admit(e, "van", rng("2024-06-10", "2024-06-13"))
			require.NoError(t, err)

			_, err = admit(e, "van", rng(tc.start, tc.end))
			if tc.conflict {
				assert.ErrorIs(t, err, reservation.ErrConflict)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAdmitOfferingsAreIndependent(t *testing.T) {
	e, _ := newEngine(t)
	_, err := admit(e, "van", rng("2024-06-01", "2024-06-04"))
	require.NoError(t, err)
	_, err = admit(e, "cabin", rng("2024-06-01", "2024-06-04"))
	assert.NoError(t, err)
}

func TestAdmitValidation(t *testing.T) {
	e, _ := newEngine(t)
	ctx := context.Background()

	_, err := admit(e, "boat", rng("2024-06-01", "2024-06-02"))
	assert.ErrorIs(t, err, reservation.ErrNotFound)

	_, err = admit(e, "van", rng("2024-06-02", "2024-06-02"))
	assert.ErrorIs(t, err, reservation.ErrInvalidRange)
	_, err = admit(e, "van", rng("2024-06-05", "2024-06-02"))
	assert.ErrorIs(t, err, reservation.ErrInvalidRange)

	_, err = e.Admit(ctx, reservation.AdmitRequest{OfferingID: "van", Range: rng("2024-06-01", "2024-06-02"), Guests: 0})
	assert.ErrorIs(t, err, reservation.ErrInvalidGuests)
	_, err = e.Admit(ctx, reservation.AdmitRequest{OfferingID: "van", Range: rng("2024-06-01", "2024-06-02"), Guests: 3})
	assert.ErrorIs(t, err, reservation.ErrCapacityExceeded)
	_, err = e.Admit(ctx, reservation.AdmitRequest{OfferingID: "cabin", Range: rng("2024-06-01", "2024-06-02"), Guests: 3})
	assert.NoError(t, err)
}

func TestAdmitConflictCheckedBeforeRange(t *testing.T) {
	e, _ := newEngine(t)
	_, err := admit(e, "van", rng("2024-06-01", "2024-06-04"))
	require.NoError(t, err)

	// A degenerate range whose start falls inside a booking still satisfies
	// the overlap predicate, so the conflict is reported first.
	_, err = admit(e, "van", rng("2024-06-02", "2024-06-02"))
	assert.ErrorIs(t, err, reservation.ErrConflict)
	_, err = admit(e, "van", rng("2024-06-03", "2024-06-02"))
	assert.ErrorIs(t, err, reservation.ErrConflict)

	// On free dates the same ranges fail the range check.
	_, err = admit(e, "van", rng("2024-07-02", "2024-07-02"))
	assert.ErrorIs(t, err, reservation.ErrInvalidRange)
	_, err = admit(e, "van", rng("2024-07-05", "2024-07-02"))
	assert.ErrorIs(t, err, reservation.ErrInvalidRange)
}

func TestCancelledBookingDoesNotBlock(t *testing.T) {
	e, store := newEngine(t)
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, store.InsertBooking(ctx, &model.Booking{
		ID: "old", UserEmail: "x@example.com", OfferingID: "van",
		StartDate: d("2024-06-01"), EndDate: d("2024-06-04"),
		Guests: 1, Status: model.BookingCancelled, CreatedAt: now, UpdatedAt: now,
	}))

	_, err := admit(e, "van", rng("2024-06-02", "2024-06-03"))
	assert.NoError(t, err)

	days, err := e.Availability(ctx, "van", rng("2024-06-01", "2024-06-04"))
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true}, availableFlags(days))
}

func TestAvailability(t *testing.T) {
	e, _ := newEngine(t)
	ctx := context.Background()
	_, err := admit(e, "van", rng("2024-06-03", "2024-06-05"))
	require.NoError(t, err)

	days, err := e.Availability(ctx, "van", rng("2024-06-01", "2024-06-07"))
	require.NoError(t, err)
	require.Len(t, days, 6)
	assert.Equal(t, d("2024-06-01"), days[0].Date)
	assert.Equal(t, d("2024-06-06"), days[5].Date)
	assert.Equal(t, []bool{true, true, false, false, true, true}, availableFlags(days))

	// Days of a booking that extend past the query range are not reported.
	days, err = e.Availability(ctx, "van", rng("2024-06-04", "2024-06-05"))
	require.NoError(t, err)
	assert.Equal(t, []bool{false}, availableFlags(days))
}

func TestAvailabilityEdgeCases(t *testing.T) {
	e, _ := newEngine(t)
	ctx := context.Background()

	days, err := e.Availability(ctx, "van", rng("2024-06-05", "2024-06-01"))
	require.NoError(t, err)
	assert.Empty(t, days)

	days, err = e.Availability(ctx, "boat", rng("2024-06-01", "2024-06-03"))
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true}, availableFlags(days), "unknown offerings report free days")
}

func TestAvailabilityIgnoresBookedDaysOutsideQuery(t *testing.T) {
	e, store := newEngine(t)
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, store.InsertBooking(ctx, &model.Booking{
		ID: "long", UserEmail: "x@example.com", OfferingID: "van",
		StartDate: d("1000-01-01"), EndDate: d("9999-12-31"),
		Guests: 1, Status: model.BookingConfirmed, CreatedAt: now, UpdatedAt: now,
	}))

	start := time.Now()
	days, err := e.Availability(ctx, "van", rng("2024-06-01", "2024-06-03"))
	elapsed := time.Since(start)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false}, availableFlags(days))
	assert.Less(t, elapsed, 500*time.Millisecond, "work must scale with the query, not the booking")
}

func TestConcurrentOverlappingAdmissions(t *testing.T) {
	e, store := newEngine(t)
	const workers = 16

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		admitted  int
		conflicts int
	)
	start := make(chan struct{})
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			// Every request overlaps 2024-06-10.
			r := calendar.NewRange(d("2024-06-09").AddDays(i%2), d("2024-06-11").AddDays(i%3))
			_, err := admit(e, "van", r)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				admitted++
			case errors.Is(err, reservation.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, admitted)
	assert.Equal(t, workers-1, conflicts)
	got, err := store.ListBookingsByEmail(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestListAndCancel(t *testing.T) {
	clock := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	e, _ := newEngine(t, reservation.WithClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}))
	ctx := context.Background()

	first, err := admit(e, "van", rng("2024-06-01", "2024-06-04"))
	require.NoError(t, err)
	second, err := admit(e, "cabin", rng("2024-06-01", "2024-06-04"))
	require.NoError(t, err)

	list, err := e.ListBookings(ctx, "ana@example.com")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")
	assert.Equal(t, first.ID, list[1].ID)

	empty, err := e.ListBookings(ctx, "ANA@example.com")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = e.Cancel(ctx, "bo@example.com", first.ID)
	assert.ErrorIs(t, err, reservation.ErrForbidden)
	_, err = e.Cancel(ctx, "ana@example.com", "nope")
	assert.ErrorIs(t, err, reservation.ErrBookingNotFound)

	cancelled, err := e.Cancel(ctx, "ana@example.com", first.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, cancelled.Status)
	_, err = e.Cancel(ctx, "ana@example.com", first.ID)
	assert.ErrorIs(t, err, reservation.ErrAlreadyCancelled)

	// The freed nights can be booked again.
	_, err = admit(e, "van", rng("2024-06-02", "2024-06-03"))
	assert.NoError(t, err)
}

func availableFlags(days []reservation.DayAvailability) []bool {
	out := make([]bool, len(days))
	for i, day := range days {
		out[i] = day.Available
	}
	return out
}
