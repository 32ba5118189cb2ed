package database

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thebishalghosh/livonto-sub000/internal/models"
)

func bookingColumns() []string {
	return []string{
		"id", "room_config_id", "status", "start_date", "duration_months",
		"amount", "created_at", "updated_at",
	}
}

func TestBookingGetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)

	t.Run("Success", func(t *testing.T) {
		now := time.Now()
		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		mock.ExpectQuery(`SELECT id, room_config_id, status`).
			WithArgs("bkg-1").
			WillReturnRows(sqlmock.NewRows(bookingColumns()).
				AddRow("bkg-1", "cfg-1", "confirmed", start, 2, 8500.0, now, now))

		booking, err := repo.GetByID(db, "bkg-1")
		require.NoError(t, err)
		assert.Equal(t, "bkg-1", booking.ID)
		assert.Equal(t, models.BookingStatusConfirmed, booking.Status)
		assert.Equal(t, 2, booking.DurationMonths)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT id, room_config_id, status`).
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows(bookingColumns()))

		_, err := repo.GetByID(db, "missing")
		assert.ErrorIs(t, err, models.ErrBookingMissing)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingCreateDefaultsDuration(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)

	now := time.Now()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO bookings`).
		WithArgs(sqlmock.AnyArg(), "cfg-1", "pending", start, 1, 8500.0).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	booking := &models.Booking{
		RoomConfigID: "cfg-1",
		Status:       models.BookingStatusPending,
		StartDate:    start,
		Amount:       8500,
	}
	err := repo.Create(db, booking)
	require.NoError(t, err)
	assert.Equal(t, 1, booking.DurationMonths)
	assert.NotEmpty(t, booking.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`UPDATE bookings`).
			WithArgs("bkg-1", "confirmed").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateStatus(db, "bkg-1", models.BookingStatusConfirmed)
		assert.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectExec(`UPDATE bookings`).
			WithArgs("missing", "confirmed").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateStatus(db, "missing", models.BookingStatusConfirmed)
		assert.ErrorIs(t, err, models.ErrBookingMissing)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCountActiveByConfig(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)

	mock.ExpectQuery(`SELECT COUNT`).
		WithArgs("cfg-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountActiveByConfig(db, "cfg-1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListExpiredConfirmed(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)

	asOf := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Returns Expired Rows", func(t *testing.T) {
		mock.ExpectQuery(`SELECT id, room_config_id, status`).
			WithArgs(asOf).
			WillReturnRows(sqlmock.NewRows(bookingColumns()).
				AddRow("bkg-1", "cfg-1", "confirmed", start, 1, 8500.0, now, now))

		bookings, err := repo.ListExpiredConfirmed(db, asOf)
		require.NoError(t, err)
		require.Len(t, bookings, 1)
		assert.Equal(t, "bkg-1", bookings[0].ID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty Result", func(t *testing.T) {
		mock.ExpectQuery(`SELECT id, room_config_id, status`).
			WithArgs(asOf).
			WillReturnRows(sqlmock.NewRows(bookingColumns()))

		bookings, err := repo.ListExpiredConfirmed(db, asOf)
		require.NoError(t, err)
		assert.Empty(t, bookings)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
