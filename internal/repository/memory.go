package repository

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pliva-retreat/booking-api/internal/calendar"
	"github.com/pliva-retreat/booking-api/internal/model"
	"github.com/pliva-retreat/booking-api/internal/reservation"
)

// MemoryStore keeps every collection in process memory.  It backs the
// server when STORE_DRIVER=memory and the engine and handler tests.  All
// methods are safe for concurrent use; values are copied in and out so
// callers never share slices with the store.
type MemoryStore struct {
	mu        sync.RWMutex
	users     map[string]model.User // by id
	emails    map[string]string     // email -> user id
	tokens    map[string]model.RefreshToken
	offerings map[string]model.Offering
	bookings  map[string]model.Booking

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex

	now func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[string]model.User),
		emails:    make(map[string]string),
		tokens:    make(map[string]model.RefreshToken),
		offerings: make(map[string]model.Offering),
		bookings:  make(map[string]model.Booking),
		locks:     make(map[string]*sync.Mutex),
		now:       time.Now,
	}
}

var _ reservation.Store = (*MemoryStore)(nil)

// users

func (m *MemoryStore) CreateUser(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.emails[u.Email]; ok {
		return ErrEmailExists
	}
	m.users[u.ID] = cloneUser(*u)
	m.emails[u.Email] = u.ID
	return nil
}

func (m *MemoryStore) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.emails[email]
	if !ok {
		return model.User{}, ErrUserNotFound
	}
	return cloneUser(m.users[id]), nil
}

func (m *MemoryStore) GetUserByID(_ context.Context, id string) (model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return model.User{}, ErrUserNotFound
	}
	return cloneUser(u), nil
}

// refresh tokens

func (m *MemoryStore) StoreRefresh(_ context.Context, userID, tokenHash string, exp time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[tokenHash] = model.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: exp.UTC(),
		CreatedAt: m.now().UTC(),
	}
	return nil
}

func (m *MemoryStore) ValidateRefresh(_ context.Context, tokenHash string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tokens[tokenHash]
	if !ok || t.RevokedAt != nil || !m.now().UTC().Before(t.ExpiresAt) {
		return "", ErrTokenInvalid
	}
	return t.UserID, nil
}

func (m *MemoryStore) RevokeByHash(_ context.Context, tokenHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tokens[tokenHash]; ok && t.RevokedAt == nil {
		now := m.now().UTC()
		t.RevokedAt = &now
		m.tokens[tokenHash] = t
	}
	return nil
}

func (m *MemoryStore) RevokeAllForUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now().UTC()
	for h, t := range m.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			t.RevokedAt = &now
			m.tokens[h] = t
		}
	}
	return nil
}

// offerings

func (m *MemoryStore) ListOfferings(_ context.Context) ([]model.Offering, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Offering, 0, len(m.offerings))
	for _, o := range m.offerings {
		out = append(out, cloneOffering(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) CountOfferings(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.offerings), nil
}

func (m *MemoryStore) InsertOffering(_ context.Context, o *model.Offering) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offerings[o.ID] = cloneOffering(*o)
	return nil
}

func (m *MemoryStore) GetOffering(_ context.Context, id string) (model.Offering, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.offerings[id]
	if !ok {
		return model.Offering{}, reservation.ErrNotFound
	}
	return cloneOffering(o), nil
}

// bookings

func (m *MemoryStore) OverlappingBookings(_ context.Context, offeringID string, rng calendar.Range) ([]model.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Booking, 0)
	for _, b := range m.bookings {
		if b.OfferingID == offeringID && b.Blocking() && b.Range().Overlaps(rng) {
			out = append(out, cloneBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (m *MemoryStore) InsertBooking(_ context.Context, b *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[b.ID] = cloneBooking(*b)
	return nil
}

func (m *MemoryStore) GetBooking(_ context.Context, id string) (model.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bookings[id]
	if !ok {
		return model.Booking{}, reservation.ErrBookingNotFound
	}
	return cloneBooking(b), nil
}

func (m *MemoryStore) UpdateBookingStatus(_ context.Context, id string, status model.BookingStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return reservation.ErrBookingNotFound
	}
	b.Status = status
	b.UpdatedAt = m.now().UTC()
	m.bookings[id] = b
	return nil
}

func (m *MemoryStore) ListBookingsByEmail(_ context.Context, email string) ([]model.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Booking, 0)
	for _, b := range m.bookings {
		if b.UserEmail == email {
			out = append(out, cloneBooking(b))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// WithOfferingLock holds a mutex dedicated to offeringID while fn runs.
// The lock is not reentrant: fn must not call WithOfferingLock for the
// same offering.
func (m *MemoryStore) WithOfferingLock(ctx context.Context, offeringID string, fn func(reservation.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l := m.offeringLock(offeringID)
	l.Lock()
	defer l.Unlock()
	return fn(m)
}

func (m *MemoryStore) offeringLock(id string) *sync.Mutex {
	m.lockMu.Lock()
	defer m.lockMu.Unlock()
	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	return l
}

// diagnostics

func (m *MemoryStore) Ping(ctx context.Context) error { return ctx.Err() }

func (m *MemoryStore) Name(context.Context) (string, error) { return "memory", nil }

func (m *MemoryStore) CollectionNames(_ context.Context, limit int) ([]string, error) {
	names := []string{"bookings", "offerings", "refresh_tokens", "users"}
	if limit < len(names) {
		names = names[:max(limit, 0)]
	}
	return names, nil
}

func cloneUser(u model.User) model.User {
	if u.AvatarURL != nil {
		a := *u.AvatarURL
		u.AvatarURL = &a
	}
	return u
}

func cloneOffering(o model.Offering) model.Offering {
	o.Amenities = slices.Clone(o.Amenities)
	o.Photos = slices.Clone(o.Photos)
	return o
}

func cloneBooking(b model.Booking) model.Booking {
	if b.Note != nil {
		n := *b.Note
		b.Note = &n
	}
	return b
}
