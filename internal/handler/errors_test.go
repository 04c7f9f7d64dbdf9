package handler

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pliva-retreat/booking-api/internal/repository"
	"github.com/pliva-retreat/booking-api/internal/reservation"
	"github.com/pliva-retreat/booking-api/internal/service"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{reservation.ErrNotFound, http.StatusNotFound, "offering not found"},
		{reservation.ErrBookingNotFound, http.StatusNotFound, "booking not found"},
		{fmt.Errorf("admit: %w", reservation.ErrConflict), http.StatusConflict, "selected dates are no longer available"},
		{reservation.ErrAlreadyCancelled, http.StatusConflict, "booking already cancelled"},
		{service.ErrAlreadyExists, http.StatusConflict, "email already registered"},
		{reservation.ErrInvalidRange, http.StatusBadRequest, "end date must be after start date"},
		{reservation.ErrInvalidGuests, http.StatusBadRequest, "guests must be at least 1"},
		{reservation.ErrCapacityExceeded, http.StatusBadRequest, "guests exceed offering capacity"},
		{service.ErrUnauthorized, http.StatusUnauthorized, "invalid credentials"},
		{reservation.ErrForbidden, http.StatusForbidden, "forbidden"},
		{fmt.Errorf("cancel b-1: %w", reservation.ErrForbidden), http.StatusForbidden, "forbidden"},
		{fmt.Errorf("load offering boat: %w", reservation.ErrNotFound), http.StatusNotFound, "offering not found"},
		{fmt.Errorf("login: %w", service.ErrUnauthorized), http.StatusUnauthorized, "invalid credentials"},
		{fmt.Errorf("admit: %w", fmt.Errorf("check: %w", reservation.ErrCapacityExceeded)), http.StatusBadRequest, "guests exceed offering capacity"},
		{fmt.Errorf("begin tx: %w", repository.ErrStoreUnavailable), http.StatusServiceUnavailable, "service unavailable"},
		{driver.ErrBadConn, http.StatusServiceUnavailable, "service unavailable"},
		{context.DeadlineExceeded, http.StatusServiceUnavailable, "service unavailable"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "internal error"},
	}
	for _, tc := range cases {
		status, msg := statusFor(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.msg, msg, tc.err.Error())
	}
}
