// Package repository implements persistence for users, refresh tokens,
// offerings and bookings.  Two implementations share the same sentinel
// errors: the MySQL repositories (one type per table) and MemoryStore, a
// single in-process store used for local runs and tests.  Higher layers
// compare against these values with errors.Is.
package repository

import "errors"

// ErrEmailExists is returned when a user with the same email (exact,
// case-sensitive match) is already registered.
var ErrEmailExists = errors.New("email already exists")

// ErrUserNotFound is returned when no user matches the lookup key.
var ErrUserNotFound = errors.New("user not found")

// ErrTokenInvalid is returned for refresh tokens that are unknown,
// revoked or expired.
var ErrTokenInvalid = errors.New("invalid refresh token")

// ErrStoreUnavailable wraps failures to reach the backing store at all, as
// opposed to errors reported by it.  Handlers answer 503 for it.
var ErrStoreUnavailable = errors.New("store unavailable")
