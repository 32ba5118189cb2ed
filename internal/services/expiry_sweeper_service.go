package services

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/thebishalghosh/livonto-sub000/internal/database"
	"github.com/thebishalghosh/livonto-sub000/internal/models"
)

// ExpirySweeperService drives confirmed bookings whose rental period has
// elapsed into completed. The sweep runs opportunistically at the start of
// relevant requests, so it must be safe to invoke repeatedly and concurrently
// with itself: each row transition is independently atomic and an
// already-completed booking never matches the selection again.
type ExpirySweeperService struct {
	bookingRepo *database.BookingRepository
	lifecycle   *BookingLifecycleService
	logger      *logrus.Logger
	now         func() time.Time
}

// NewExpirySweeperService creates a new ExpirySweeperService
func NewExpirySweeperService(
	bookingRepo *database.BookingRepository,
	lifecycle *BookingLifecycleService,
	logger *logrus.Logger,
) *ExpirySweeperService {
	return &ExpirySweeperService{
		bookingRepo: bookingRepo,
		lifecycle:   lifecycle,
		logger:      logger,
		now:         time.Now,
	}
}

// SweepExpiredBookings completes confirmed bookings whose end date is on or
// before asOf. A zero asOf means the current date. Per-row failures are
// logged and counted as skipped; the sweep itself only fails when the
// selection query does.
func (s *ExpirySweeperService) SweepExpiredBookings(asOf time.Time) (*models.SweepSummary, error) {
	if asOf.IsZero() {
		asOf = s.now()
	}

	expired, err := s.bookingRepo.ListExpiredConfirmed(s.bookingRepo.DB(), asOf)
	if err != nil {
		return nil, err
	}

	summary := &models.SweepSummary{}
	for i := range expired {
		_, err := s.lifecycle.TransitionBooking(expired[i].ID, models.BookingStatusCompleted)
		if err != nil {
			// A concurrent sweep may have completed the row already;
			// that surfaces as an invalid transition and is not a failure.
			summary.Skipped++
			if !errors.Is(err, models.ErrInvalidTransition) && !errors.Is(err, models.ErrBookingMissing) {
				s.logger.WithError(err).WithField("booking_id", expired[i].ID).Error("Failed to complete expired booking")
			}
			continue
		}
		summary.Transitioned++
	}

	if summary.Transitioned > 0 || summary.Skipped > 0 {
		s.logger.WithFields(logrus.Fields{
			"as_of":        asOf.Format("2006-01-02"),
			"transitioned": summary.Transitioned,
			"skipped":      summary.Skipped,
		}).Info("Expiry sweep completed")
	}

	return summary, nil
}
