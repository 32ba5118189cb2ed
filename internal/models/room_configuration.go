package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// RoomType represents the sharing tier of a room configuration
type RoomType string

const (
	RoomTypeSingle RoomType = "single"
	RoomTypeDouble RoomType = "double"
	RoomTypeTriple RoomType = "triple"
	RoomTypeQuad   RoomType = "quad"
)

// Room configuration errors
var (
	ErrInvalidRoomType      = errors.New("invalid room type")
	ErrConfigurationMissing = errors.New("room configuration not found")
	ErrListingMissing       = errors.New("listing not found")
)

// ParseRoomType normalizes a submitted room type tag.
// The legacy admin forms submit "4 sharing" for quad rooms.
func ParseRoomType(tag string) (RoomType, error) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "single":
		return RoomTypeSingle, nil
	case "double":
		return RoomTypeDouble, nil
	case "triple":
		return RoomTypeTriple, nil
	case "quad", "4 sharing", "quad sharing":
		return RoomTypeQuad, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRoomType, tag)
	}
}

// BedsPerRoom returns the number of beds a single room of the given type holds
func BedsPerRoom(roomType RoomType) (int, error) {
	switch roomType {
	case RoomTypeSingle:
		return 1, nil
	case RoomTypeDouble:
		return 2, nil
	case RoomTypeTriple:
		return 3, nil
	case RoomTypeQuad:
		return 4, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidRoomType, roomType)
	}
}

// TotalBeds returns the total bed capacity for a room count of the given type
func TotalBeds(totalRooms int, roomType RoomType) (int, error) {
	perRoom, err := BedsPerRoom(roomType)
	if err != nil {
		return 0, err
	}
	return totalRooms * perRoom, nil
}

// AvailableBeds derives the available-bed count from capacity and occupancy.
// Occupancy past capacity degrades to zero rather than going negative.
func AvailableBeds(totalRooms int, roomType RoomType, occupied int) (int, error) {
	total, err := TotalBeds(totalRooms, roomType)
	if err != nil {
		return 0, err
	}
	available := total - occupied
	if available < 0 {
		available = 0
	}
	return available, nil
}

// RoomConfiguration represents a bookable room-type tier within a listing
type RoomConfiguration struct {
	ID             string    `json:"id" db:"id"`
	ListingID      string    `json:"listing_id" db:"listing_id"`
	RoomType       RoomType  `json:"room_type" db:"room_type"`
	RentPerMonth   float64   `json:"rent_per_month" db:"rent_per_month"`
	TotalRooms     int       `json:"total_rooms" db:"total_rooms"`
	AvailableBeds  int       `json:"available_beds" db:"available_rooms"`
	ManualOverride bool      `json:"manual_override" db:"manual_override"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// TotalBeds returns the configuration's total bed capacity
func (rc *RoomConfiguration) TotalBeds() (int, error) {
	return TotalBeds(rc.TotalRooms, rc.RoomType)
}

// RoomConfigurationSpec is a single room configuration row as submitted by the
// listing edit form. A nil or unmatched ID means the row should be inserted.
type RoomConfigurationSpec struct {
	ID             *string `json:"id,omitempty"`
	RoomType       string  `json:"room_type" binding:"required"`
	RentPerMonth   float64 `json:"rent_per_month"`
	TotalRooms     int     `json:"total_rooms" binding:"required,min=1"`
	AvailableBeds  *int    `json:"available_beds,omitempty"`
	ManualOverride bool    `json:"manual_override"`
}

// Validate validates a submitted room configuration spec
func (s *RoomConfigurationSpec) Validate() error {
	if _, err := ParseRoomType(s.RoomType); err != nil {
		return err
	}
	if s.TotalRooms < 1 {
		return errors.New("total_rooms must be at least 1")
	}
	if s.RentPerMonth < 0 {
		return errors.New("rent_per_month cannot be negative")
	}
	if s.AvailableBeds != nil && *s.AvailableBeds < 0 {
		return errors.New("available_beds cannot be negative")
	}
	return nil
}

// SyncResult reports the outcome of a listing configuration sync. Removals
// blocked by existing bookings are not errors; callers inspect BlockedDeletes
// to learn which removals were honored.
type SyncResult struct {
	Configurations []RoomConfiguration `json:"configurations"`
	BlockedDeletes []string            `json:"blocked_deletes,omitempty"`
}

// SetManualOverrideRequest toggles the manual override flag on a configuration
type SetManualOverrideRequest struct {
	Enabled       bool `json:"enabled"`
	AvailableBeds *int `json:"available_beds,omitempty"`
}

// SyncConfigurationsRequest is the full submitted configuration set for a listing
type SyncConfigurationsRequest struct {
	Configurations []RoomConfigurationSpec `json:"configurations"`
}
