package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/thebishalghosh/livonto-sub000/internal/models"
)

// bedsPerRoomCase maps the room_type tag to beds per room in SQL so that
// clamped counter updates stay a single conditional statement. Must agree
// with models.BedsPerRoom.
const bedsPerRoomCase = `CASE room_type
		WHEN 'single' THEN 1
		WHEN 'double' THEN 2
		WHEN 'triple' THEN 3
		ELSE 4
	END`

// RoomConfigRepository handles database operations for the room_configurations table
type RoomConfigRepository struct {
	db *sqlx.DB
}

// NewRoomConfigRepository creates a new RoomConfigRepository
func NewRoomConfigRepository(db *sqlx.DB) *RoomConfigRepository {
	return &RoomConfigRepository{db: db}
}

// DB returns the underlying connection pool
func (r *RoomConfigRepository) DB() *sqlx.DB {
	return r.db
}

// BeginTx starts a new transaction
func (r *RoomConfigRepository) BeginTx() (*sqlx.Tx, error) {
	return r.db.Beginx()
}

// GetByID retrieves a room configuration by ID
func (r *RoomConfigRepository) GetByID(ext sqlx.Ext, configID string) (*models.RoomConfiguration, error) {
	query := `
		SELECT id, listing_id, room_type, rent_per_month, total_rooms,
		       available_rooms, manual_override, created_at, updated_at
		FROM room_configurations
		WHERE id = $1
	`

	cfg := &models.RoomConfiguration{}
	if err := sqlx.Get(ext, cfg, query, configID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrConfigurationMissing
		}
		return nil, fmt.Errorf("failed to get room configuration: %w", err)
	}

	return cfg, nil
}

// GetByIDForUpdate retrieves a room configuration and locks its row for the
// duration of the enclosing transaction
func (r *RoomConfigRepository) GetByIDForUpdate(ext sqlx.Ext, configID string) (*models.RoomConfiguration, error) {
	query := `
		SELECT id, listing_id, room_type, rent_per_month, total_rooms,
		       available_rooms, manual_override, created_at, updated_at
		FROM room_configurations
		WHERE id = $1
		FOR UPDATE
	`

	cfg := &models.RoomConfiguration{}
	if err := sqlx.Get(ext, cfg, query, configID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrConfigurationMissing
		}
		return nil, fmt.Errorf("failed to lock room configuration: %w", err)
	}

	return cfg, nil
}

// ListByListing retrieves all room configurations for a listing
func (r *RoomConfigRepository) ListByListing(ext sqlx.Ext, listingID string) ([]models.RoomConfiguration, error) {
	query := `
		SELECT id, listing_id, room_type, rent_per_month, total_rooms,
		       available_rooms, manual_override, created_at, updated_at
		FROM room_configurations
		WHERE listing_id = $1
		ORDER BY created_at
	`

	configs := []models.RoomConfiguration{}
	if err := sqlx.Select(ext, &configs, query, listingID); err != nil {
		return nil, fmt.Errorf("failed to list room configurations: %w", err)
	}

	return configs, nil
}

// ListByListingForUpdate retrieves a listing's configurations with their rows locked
func (r *RoomConfigRepository) ListByListingForUpdate(ext sqlx.Ext, listingID string) ([]models.RoomConfiguration, error) {
	query := `
		SELECT id, listing_id, room_type, rent_per_month, total_rooms,
		       available_rooms, manual_override, created_at, updated_at
		FROM room_configurations
		WHERE listing_id = $1
		ORDER BY created_at
		FOR UPDATE
	`

	configs := []models.RoomConfiguration{}
	if err := sqlx.Select(ext, &configs, query, listingID); err != nil {
		return nil, fmt.Errorf("failed to lock room configurations: %w", err)
	}

	return configs, nil
}

// ListingExists checks that the owning listing is present
func (r *RoomConfigRepository) ListingExists(ext sqlx.Ext, listingID string) (bool, error) {
	var exists bool
	err := sqlx.Get(ext, &exists, `SELECT EXISTS (SELECT 1 FROM listings WHERE id = $1)`, listingID)
	if err != nil {
		return false, fmt.Errorf("failed to check listing existence: %w", err)
	}
	return exists, nil
}

// Insert creates a new room configuration row
func (r *RoomConfigRepository) Insert(ext sqlx.Ext, cfg *models.RoomConfiguration) error {
	if cfg.ID == "" {
		cfg.ID = uuid.New().String()
	}

	query := `
		INSERT INTO room_configurations (
			id, listing_id, room_type, rent_per_month,
			total_rooms, available_rooms, manual_override
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := ext.QueryRowx(query,
		cfg.ID, cfg.ListingID, cfg.RoomType, cfg.RentPerMonth,
		cfg.TotalRooms, cfg.AvailableBeds, cfg.ManualOverride,
	).Scan(&cfg.CreatedAt, &cfg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert room configuration: %w", err)
	}

	return nil
}

// Update persists the mutable fields of a room configuration
func (r *RoomConfigRepository) Update(ext sqlx.Ext, cfg *models.RoomConfiguration) error {
	query := `
		UPDATE room_configurations
		SET room_type = $2, rent_per_month = $3, total_rooms = $4,
		    available_rooms = $5, manual_override = $6, updated_at = NOW()
		WHERE id = $1
	`

	result, err := ext.Exec(query,
		cfg.ID, cfg.RoomType, cfg.RentPerMonth, cfg.TotalRooms,
		cfg.AvailableBeds, cfg.ManualOverride,
	)
	if err != nil {
		return fmt.Errorf("failed to update room configuration: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrConfigurationMissing
	}

	return nil
}

// SetAvailableBeds overwrites the available-bed counter (full recompute path)
func (r *RoomConfigRepository) SetAvailableBeds(ext sqlx.Ext, configID string, beds int) error {
	query := `
		UPDATE room_configurations
		SET available_rooms = $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := ext.Exec(query, configID, beds)
	if err != nil {
		return fmt.Errorf("failed to set available beds: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrConfigurationMissing
	}

	return nil
}

// ClaimBed decrements the available-bed counter by one. The decrement is
// conditioned on a bed being left at the storage level so that two concurrent
// confirms cannot both take the last bed. Returns false when no bed was left.
func (r *RoomConfigRepository) ClaimBed(ext sqlx.Ext, configID string) (bool, error) {
	query := `
		UPDATE room_configurations
		SET available_rooms = available_rooms - 1, updated_at = NOW()
		WHERE id = $1 AND available_rooms > 0
	`

	result, err := ext.Exec(query, configID)
	if err != nil {
		return false, fmt.Errorf("failed to claim bed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

// ReleaseBed increments the available-bed counter by one, clamped to the
// configuration's total bed capacity.
func (r *RoomConfigRepository) ReleaseBed(ext sqlx.Ext, configID string) error {
	query := `
		UPDATE room_configurations
		SET available_rooms = LEAST(total_rooms * ` + bedsPerRoomCase + `, available_rooms + 1),
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := ext.Exec(query, configID)
	if err != nil {
		return fmt.Errorf("failed to release bed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrConfigurationMissing
	}

	return nil
}

// DeleteIfUnreferenced removes a room configuration only when no booking row,
// of any status, still references it. Returns false when the delete was
// blocked by existing bookings.
func (r *RoomConfigRepository) DeleteIfUnreferenced(ext sqlx.Ext, configID string) (bool, error) {
	query := `
		DELETE FROM room_configurations
		WHERE id = $1
		  AND NOT EXISTS (SELECT 1 FROM bookings WHERE room_config_id = $1)
	`

	result, err := ext.Exec(query, configID)
	if err != nil {
		return false, fmt.Errorf("failed to delete room configuration: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}
