package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/thebishalghosh/livonto-sub000/internal/models"
)

// BookingRepository handles database operations for the bookings table
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// DB returns the underlying connection pool
func (r *BookingRepository) DB() *sqlx.DB {
	return r.db
}

// BeginTx starts a new transaction
func (r *BookingRepository) BeginTx() (*sqlx.Tx, error) {
	return r.db.Beginx()
}

// Create inserts a new booking row
func (r *BookingRepository) Create(ext sqlx.Ext, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}
	if booking.DurationMonths < 1 {
		booking.DurationMonths = 1
	}

	query := `
		INSERT INTO bookings (
			id, room_config_id, status, start_date, duration_months, amount
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := ext.QueryRowx(query,
		booking.ID, booking.RoomConfigID, booking.Status,
		booking.StartDate, booking.DurationMonths, booking.Amount,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

// GetByID retrieves a booking by ID
func (r *BookingRepository) GetByID(ext sqlx.Ext, bookingID string) (*models.Booking, error) {
	query := `
		SELECT id, room_config_id, status, start_date, duration_months,
		       amount, created_at, updated_at
		FROM bookings
		WHERE id = $1
	`

	booking := &models.Booking{}
	if err := sqlx.Get(ext, booking, query, bookingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrBookingMissing
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	return booking, nil
}

// GetByIDForUpdate retrieves a booking and locks its row for the duration of
// the enclosing transaction
func (r *BookingRepository) GetByIDForUpdate(ext sqlx.Ext, bookingID string) (*models.Booking, error) {
	query := `
		SELECT id, room_config_id, status, start_date, duration_months,
		       amount, created_at, updated_at
		FROM bookings
		WHERE id = $1
		FOR UPDATE
	`

	booking := &models.Booking{}
	if err := sqlx.Get(ext, booking, query, bookingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrBookingMissing
		}
		return nil, fmt.Errorf("failed to lock booking: %w", err)
	}

	return booking, nil
}

// UpdateStatus persists a booking status change
func (r *BookingRepository) UpdateStatus(ext sqlx.Ext, bookingID string, status models.BookingStatus) error {
	query := `
		UPDATE bookings
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := ext.Exec(query, bookingID, status)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrBookingMissing
	}

	return nil
}

// Delete removes a booking row
func (r *BookingRepository) Delete(ext sqlx.Ext, bookingID string) error {
	result, err := ext.Exec(`DELETE FROM bookings WHERE id = $1`, bookingID)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrBookingMissing
	}

	return nil
}

// CountActiveByConfig counts the bookings holding a claim on a room
// configuration. This count, not the cached counter, is the source of truth
// for occupancy.
func (r *BookingRepository) CountActiveByConfig(ext sqlx.Ext, configID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM bookings
		WHERE room_config_id = $1
		  AND status IN ('pending', 'confirmed')
	`

	var count int
	if err := sqlx.Get(ext, &count, query, configID); err != nil {
		return 0, fmt.Errorf("failed to count active bookings: %w", err)
	}

	return count, nil
}

// ListExpiredConfirmed returns confirmed bookings whose rental period ended on
// or before the given date. A zero or missing duration counts as one month.
func (r *BookingRepository) ListExpiredConfirmed(ext sqlx.Ext, asOf time.Time) ([]models.Booking, error) {
	query := `
		SELECT id, room_config_id, status, start_date, duration_months,
		       amount, created_at, updated_at
		FROM bookings
		WHERE status = 'confirmed'
		  AND start_date
		      + GREATEST(duration_months, 1) * INTERVAL '1 month'
		      - INTERVAL '1 day' <= $1
		ORDER BY start_date
	`

	bookings := []models.Booking{}
	if err := sqlx.Select(ext, &bookings, query, asOf); err != nil {
		return nil, fmt.Errorf("failed to list expired bookings: %w", err)
	}

	return bookings, nil
}
