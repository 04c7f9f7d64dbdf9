package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pliva-retreat/booking-api/internal/model"
	"github.com/pliva-retreat/booking-api/internal/reservation"
)

func TestUserRepo_CreateUserDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err = NewUserRepo(db).CreateUser(context.Background(), &model.User{
		ID: "u1", Name: "Ana", Email: "ana@example.com", PasswordHash: "x", CreatedAt: time.Now(),
	})
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetUserByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM users WHERE email=\?`).
		WithArgs("Ana@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "avatar_url", "created_at"}).
			AddRow("u1", "Ana", "Ana@example.com", "hash", "https://img/a.png", created))
	mock.ExpectQuery(`FROM users WHERE email=\?`).
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "avatar_url", "created_at"}))

	repo := NewUserRepo(db)
	u, err := repo.GetUserByEmail(context.Background(), "Ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	require.NotNil(t, u.AvatarURL)
	assert.Equal(t, "https://img/a.png", *u.AvatarURL)

	_, err = repo.GetUserByEmail(context.Background(), "ana@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepo_ValidateRefresh(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cols := []string{"user_id", "expires_at", "revoked_at"}
	mock.ExpectQuery(`FROM refresh_tokens WHERE token_hash=\?`).
		WithArgs("live").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("u1", time.Now().Add(time.Hour), nil))
	mock.ExpectQuery(`FROM refresh_tokens WHERE token_hash=\?`).
		WithArgs("expired").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("u1", time.Now().Add(-time.Hour), nil))
	mock.ExpectQuery(`FROM refresh_tokens WHERE token_hash=\?`).
		WithArgs("revoked").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("u1", time.Now().Add(time.Hour), time.Now()))

	repo := NewTokenRepo(db)
	uid, err := repo.ValidateRefresh(context.Background(), "live")
	require.NoError(t, err)
	assert.Equal(t, "u1", uid)

	_, err = repo.ValidateRefresh(context.Background(), "expired")
	assert.ErrorIs(t, err, ErrTokenInvalid)
	_, err = repo.ValidateRefresh(context.Background(), "revoked")
	assert.ErrorIs(t, err, ErrTokenInvalid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOfferingRepo_GetOffering(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cols := []string{"id", "title", "description", "price_per_night_cents", "max_guests", "amenities", "photos", "created_at"}
	mock.ExpectQuery(`FROM offerings WHERE id = \?`).
		WithArgs("van").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("van", "Van", "desc", int64(5500), int64(2), []byte(`["Bed","Kitchen"]`), []byte(`[]`), time.Now()))
	mock.ExpectQuery(`FROM offerings WHERE id = \?`).
		WithArgs("boat").
		WillReturnRows(sqlmock.NewRows(cols))

	repo := NewOfferingRepo(db)
	o, err := repo.GetOffering(context.Background(), "van")
	require.NoError(t, err)
	assert.Equal(t, int64(5500), o.PricePerNightCents)
	assert.Equal(t, []string{"Bed", "Kitchen"}, o.Amenities)
	assert.Equal(t, []string{}, o.Photos)

	_, err = repo.GetOffering(context.Background(), "boat")
	assert.ErrorIs(t, err, reservation.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOfferingRepo_InsertOfferingStoresEmptyLists(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO offerings`).
		WithArgs("cabin", "Cabin", "", int64(6500), 3, `[]`, `["a.jpg"]`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = NewOfferingRepo(db).InsertOffering(context.Background(), &model.Offering{
		ID: "cabin", Title: "Cabin", PricePerNightCents: 6500, MaxGuests: 3, Photos: []string{"a.jpg"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
