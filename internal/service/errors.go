// Package service holds the application services that sit between the HTTP
// handlers and the stores: authentication, the offering catalog and
// booking orchestration.
package service

import "errors"

var (
	// ErrAlreadyExists is returned by Register for an email that is already
	// registered (exact, case-sensitive match).
	ErrAlreadyExists = errors.New("email already registered")

	// ErrUnauthorized covers unknown emails, wrong passwords and invalid
	// refresh tokens.  The message does not say which.
	ErrUnauthorized = errors.New("invalid credentials")
)
