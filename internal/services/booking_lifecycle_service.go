package services

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/thebishalghosh/livonto-sub000/internal/database"
	"github.com/thebishalghosh/livonto-sub000/internal/models"
)

// BookingLifecycleService validates and applies booking status transitions,
// adjusting the owning room configuration's available-bed counter as a side
// effect. Each logical operation runs in a single transaction; deltas are
// clamped conditional updates at the storage layer, never read-modify-write
// in application code.
type BookingLifecycleService struct {
	bookingRepo *database.BookingRepository
	configRepo  *database.RoomConfigRepository
	logger      *logrus.Logger
}

// NewBookingLifecycleService creates a new BookingLifecycleService
func NewBookingLifecycleService(
	bookingRepo *database.BookingRepository,
	configRepo *database.RoomConfigRepository,
	logger *logrus.Logger,
) *BookingLifecycleService {
	return &BookingLifecycleService{
		bookingRepo: bookingRepo,
		configRepo:  configRepo,
		logger:      logger,
	}
}

// CreateBooking creates a booking in pending status. Pending bookings do not
// reserve a bed; the bed is claimed on the confirm transition.
func (s *BookingLifecycleService) CreateBooking(configID string, startDate time.Time, durationMonths int, amount float64) (*models.Booking, error) {
	tx, err := s.bookingRepo.BeginTx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.configRepo.GetByID(tx, configID); err != nil {
		return nil, err
	}

	booking := &models.Booking{
		RoomConfigID:   configID,
		Status:         models.BookingStatusPending,
		StartDate:      startDate,
		DurationMonths: durationMonths,
		Amount:         amount,
	}
	if err := s.bookingRepo.Create(tx, booking); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"config_id":  configID,
	}).Info("Booking created")

	return booking, nil
}

// TransitionBooking applies a status transition from the allowed table and
// its inventory effect atomically. Transitions outside the table are rejected
// with ErrInvalidTransition and no side effect. A confirm against a full
// configuration fails with ErrNoBedsAvailable.
func (s *BookingLifecycleService) TransitionBooking(bookingID string, newStatus models.BookingStatus) (*models.Booking, error) {
	tx, err := s.bookingRepo.BeginTx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	booking, err := s.bookingRepo.GetByIDForUpdate(tx, bookingID)
	if err != nil {
		return nil, err
	}

	delta, err := models.TransitionDelta(booking.Status, newStatus)
	if err != nil {
		return nil, err
	}

	if err := s.applyDelta(tx, booking.RoomConfigID, delta); err != nil {
		return nil, err
	}

	if err := s.bookingRepo.UpdateStatus(tx, bookingID, newStatus); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"config_id":  booking.RoomConfigID,
		"from":       booking.Status,
		"to":         newStatus,
		"bed_delta":  delta,
	}).Info("Booking status updated")

	booking.Status = newStatus
	return booking, nil
}

// DeleteBooking removes a booking. A pending or confirmed booking releases
// its bed before the row goes away, so deletion never strands a phantom
// reservation.
func (s *BookingLifecycleService) DeleteBooking(bookingID string) error {
	tx, err := s.bookingRepo.BeginTx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	booking, err := s.bookingRepo.GetByIDForUpdate(tx, bookingID)
	if err != nil {
		return err
	}

	if booking.IsActive() {
		if err := s.applyDelta(tx, booking.RoomConfigID, +1); err != nil {
			return err
		}
	}

	if err := s.bookingRepo.Delete(tx, bookingID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"config_id":  booking.RoomConfigID,
		"status":     booking.Status,
	}).Info("Booking deleted")

	return nil
}

// applyDelta locks the owning configuration and applies a one-bed delta
// through the clamped conditional updates. Deltas are suppressed while the
// configuration is under manual override; the lock is still taken so the
// transition serializes with concurrent counter writers.
func (s *BookingLifecycleService) applyDelta(ext sqlx.Ext, configID string, delta int) error {
	cfg, err := s.configRepo.GetByIDForUpdate(ext, configID)
	if err != nil {
		return err
	}

	if cfg.ManualOverride || delta == 0 {
		return nil
	}

	if delta < 0 {
		claimed, err := s.configRepo.ClaimBed(ext, configID)
		if err != nil {
			return err
		}
		if !claimed {
			return models.ErrNoBedsAvailable
		}
		return nil
	}

	return s.configRepo.ReleaseBed(ext, configID)
}
