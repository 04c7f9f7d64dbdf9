package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pliva-retreat/booking-api/internal/cache"
	"github.com/pliva-retreat/booking-api/internal/model"
)

// OfferingStore reads and seeds offerings.
type OfferingStore interface {
	ListOfferings(ctx context.Context) ([]model.Offering, error)
	CountOfferings(ctx context.Context) (int, error)
	InsertOffering(ctx context.Context, o *model.Offering) error
}

const catalogCacheKey = "offerings:all"

// DefaultOfferings is the inventory seeded into an empty store.
func DefaultOfferings() []model.Offering {
	return []model.Offering{
		{
			ID:                 "van",
			Title:              "Fully Equipped Camper Van",
			Description:        "Cozy van with kitchenette, comfy bed, and everything you need to chase sunsets by the Pliva river.",
			PricePerNightCents: 5500,
			MaxGuests:          2,
			Amenities:          []string{"Kitchenette", "Bed linens", "Portable shower", "Heater", "Solar power"},
			Photos:             []string{"/images/van-1.jpg", "/images/van-2.jpg"},
		},
		{
			ID:                 "cabin",
			Title:              "Renovated Container Cabin",
			Description:        "Minimalist, warm cabin tucked in nature near the river and mountains.",
			PricePerNightCents: 6500,
			MaxGuests:          3,
			Amenities:          []string{"Queen bed", "Fire pit", "River access", "Mountain view", "Wi-Fi"},
			Photos:             []string{"/images/cabin-1.jpg", "/images/cabin-2.jpg"},
		},
	}
}

// Catalog serves the offering list, read through the redis cache when one
// is configured.
type Catalog struct {
	store OfferingStore
	cache *cache.Cache
	ttl   time.Duration
	log   *zap.Logger
}

// NewCatalog returns a Catalog.  c may be nil to disable caching.
func NewCatalog(store OfferingStore, c *cache.Cache, ttl time.Duration, log *zap.Logger) *Catalog {
	if log == nil {
		log = zap.NewNop()
	}
	return &Catalog{store: store, cache: c, ttl: ttl, log: log}
}

// Bootstrap seeds the given offerings when the store holds none.  It is
// meant to run once at start-up; running it again is a no-op.
func (c *Catalog) Bootstrap(ctx context.Context, seed []model.Offering) (int, error) {
	n, err := c.store.CountOfferings(ctx)
	if err != nil {
		return 0, fmt.Errorf("count offerings: %w", err)
	}
	if n > 0 {
		c.log.Debug("offerings already present", zap.Int("count", n))
		return 0, nil
	}
	now := time.Now().UTC()
	for i := range seed {
		o := seed[i]
		if o.CreatedAt.IsZero() {
			o.CreatedAt = now
		}
		if err := c.store.InsertOffering(ctx, &o); err != nil {
			return i, fmt.Errorf("seed offering %s: %w", o.ID, err)
		}
	}
	if err := c.cache.Delete(ctx, catalogCacheKey); err != nil {
		c.log.Warn("drop cached catalog", zap.Error(err))
	}
	c.log.Info("offerings seeded", zap.Int("count", len(seed)))
	return len(seed), nil
}

// List returns every offering ordered by id.
func (c *Catalog) List(ctx context.Context) ([]model.Offering, error) {
	return cache.GetOrLoadJSON(ctx, c.cache, catalogCacheKey, c.ttl, c.store.ListOfferings)
}
