package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pliva-retreat/booking-api/internal/cache"
	"github.com/pliva-retreat/booking-api/internal/calendar"
	"github.com/pliva-retreat/booking-api/internal/model"
	"github.com/pliva-retreat/booking-api/internal/queue"
	"github.com/pliva-retreat/booking-api/internal/repository"
	"github.com/pliva-retreat/booking-api/internal/reservation"
)

func TestBootstrapIsIdempotent(t *testing.T) {
	store := repository.NewMemoryStore()
	cat := NewCatalog(store, nil, time.Minute, nil)
	ctx := context.Background()

	n, err := cat.Bootstrap(ctx, DefaultOfferings())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = cat.Bootstrap(ctx, DefaultOfferings())
	require.NoError(t, err)
	assert.Zero(t, n)

	list, err := cat.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "cabin", list[0].ID)
	assert.Equal(t, "van", list[1].ID)
	assert.Equal(t, int64(5500), list[1].PricePerNightCents)
	assert.Equal(t, 2, list[1].MaxGuests)
	assert.Equal(t, 3, list[0].MaxGuests)
	assert.False(t, list[0].CreatedAt.IsZero())
}

func TestCatalogListUsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := repository.NewMemoryStore()
	cat := NewCatalog(store, cache.New(rdb, "test"), time.Minute, nil)
	ctx := context.Background()
	_, err := cat.Bootstrap(ctx, DefaultOfferings())
	require.NoError(t, err)

	first, err := cat.List(ctx)
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:"+catalogCacheKey))

	// A write behind the cache's back is not visible until the entry expires.
	require.NoError(t, store.InsertOffering(ctx, &model.Offering{ID: "tent", MaxGuests: 1}))
	cached, err := cat.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	mr.FastForward(2 * time.Minute)
	fresh, err := cat.List(ctx)
	require.NoError(t, err)
	assert.Len(t, fresh, 3)
}

type recordingPublisher struct {
	events []queue.BookingConfirmedEvent
	err    error
}

func (p *recordingPublisher) PublishBookingConfirmed(_ context.Context, ev queue.BookingConfirmedEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

func TestBookingsCreatePublishesEvent(t *testing.T) {
	store := repository.NewMemoryStore()
	_, err := NewCatalog(store, nil, time.Minute, nil).Bootstrap(context.Background(), DefaultOfferings())
	require.NoError(t, err)
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := NewBookings(reservation.NewEngine(store), pub, nil)

	rng := calendar.NewRange(calendar.NewDate(2024, time.June, 1), calendar.NewDate(2024, time.June, 4))
	b, err := svc.Create(context.Background(), reservation.AdmitRequest{
		UserEmail: "ana@example.com", OfferingID: "van", Range: rng, Guests: 2,
	})
	require.NoError(t, err, "a failed publish must not fail the booking")
	assert.Equal(t, int64(16500), b.TotalPriceCents)
	require.Len(t, pub.events, 1)
	assert.Equal(t, b.ID, pub.events[0].BookingID)
	assert.Equal(t, 3, pub.events[0].Nights)

	_, err = svc.Create(context.Background(), reservation.AdmitRequest{
		UserEmail: "bo@example.com", OfferingID: "van", Range: rng, Guests: 1,
	})
	assert.ErrorIs(t, err, reservation.ErrConflict)
	assert.Len(t, pub.events, 1)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "admitted", outcome(nil))
	assert.Equal(t, "conflict", outcome(reservation.ErrConflict))
	assert.Equal(t, "rejected", outcome(reservation.ErrCapacityExceeded))
	assert.Equal(t, "error", outcome(errors.New("db down")))
}
