package models

import (
	"errors"
	"fmt"
	"time"
)

// BookingStatus represents the lifecycle status of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// Booking lifecycle errors
var (
	ErrInvalidTransition = errors.New("invalid booking status transition")
	ErrBookingMissing    = errors.New("booking not found")
	ErrNoBedsAvailable   = errors.New("no beds available for this room configuration")
)

// ParseBookingStatus validates a submitted booking status value
func ParseBookingStatus(status string) (BookingStatus, error) {
	switch BookingStatus(status) {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCompleted:
		return BookingStatus(status), nil
	default:
		return "", fmt.Errorf("unknown booking status: %q", status)
	}
}

// TransitionDelta returns the available-bed delta for an allowed status
// transition. Any pair outside the table is rejected with ErrInvalidTransition.
//
//	pending/confirmed -> cancelled  +1
//	pending/cancelled -> confirmed  -1
//	confirmed        -> completed   +1
func TransitionDelta(from, to BookingStatus) (int, error) {
	switch to {
	case BookingStatusCancelled:
		if from == BookingStatusPending || from == BookingStatusConfirmed {
			return +1, nil
		}
	case BookingStatusConfirmed:
		if from == BookingStatusPending || from == BookingStatusCancelled {
			return -1, nil
		}
	case BookingStatusCompleted:
		if from == BookingStatusConfirmed {
			return +1, nil
		}
	}
	return 0, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// Booking represents a tenant's claim on a room configuration
type Booking struct {
	ID             string        `json:"id" db:"id"`
	RoomConfigID   string        `json:"room_config_id" db:"room_config_id"`
	Status         BookingStatus `json:"status" db:"status"`
	StartDate      time.Time     `json:"start_date" db:"start_date"`
	DurationMonths int           `json:"duration_months" db:"duration_months"`
	Amount         float64       `json:"amount" db:"amount"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" db:"updated_at"`
}

// IsActive reports whether the booking counts toward occupancy
func (b *Booking) IsActive() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}

// EndDate returns the last day of the rental period. A missing duration
// defaults to one month.
func (b *Booking) EndDate() time.Time {
	months := b.DurationMonths
	if months < 1 {
		months = 1
	}
	return b.StartDate.AddDate(0, months, -1)
}

// CreateBookingRequest represents the request to create a booking
type CreateBookingRequest struct {
	RoomConfigID   string  `json:"room_config_id" binding:"required"`
	StartDate      string  `json:"start_date" binding:"required"` // YYYY-MM-DD
	DurationMonths int     `json:"duration_months"`
	Amount         float64 `json:"amount"`
}

// Validate validates the create booking request
func (r *CreateBookingRequest) Validate() error {
	if r.RoomConfigID == "" {
		return errors.New("room_config_id is required")
	}
	if _, err := r.ParsedStartDate(); err != nil {
		return err
	}
	if r.DurationMonths < 0 {
		return errors.New("duration_months cannot be negative")
	}
	if r.Amount < 0 {
		return errors.New("amount cannot be negative")
	}
	return nil
}

// ParsedStartDate parses the submitted start date
func (r *CreateBookingRequest) ParsedStartDate() (time.Time, error) {
	startDate, err := time.Parse("2006-01-02", r.StartDate)
	if err != nil {
		return time.Time{}, errors.New("start_date must be in YYYY-MM-DD format")
	}
	return startDate, nil
}

// UpdateBookingStatusRequest represents a requested status transition
type UpdateBookingStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SweepSummary reports the outcome of an expiry sweep run
type SweepSummary struct {
	Transitioned int `json:"transitioned"`
	Skipped      int `json:"skipped"`
}
