package services

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/thebishalghosh/livonto-sub000/internal/database"
	"github.com/thebishalghosh/livonto-sub000/internal/models"
)

// ReconciliationService re-derives a room configuration's available-bed
// counter from capacity and current active bookings. It is the authoritative
// recovery path for counter drift; the delta path in BookingLifecycleService
// must agree with it at steady state.
type ReconciliationService struct {
	configRepo  *database.RoomConfigRepository
	bookingRepo *database.BookingRepository
	logger      *logrus.Logger
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(
	configRepo *database.RoomConfigRepository,
	bookingRepo *database.BookingRepository,
	logger *logrus.Logger,
) *ReconciliationService {
	return &ReconciliationService{
		configRepo:  configRepo,
		bookingRepo: bookingRepo,
		logger:      logger,
	}
}

// Reconcile recomputes and persists the available-bed counter for a room
// configuration. Configurations under manual override are left untouched.
func (s *ReconciliationService) Reconcile(configID string) (*models.RoomConfiguration, error) {
	tx, err := s.configRepo.BeginTx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	cfg, err := s.configRepo.GetByIDForUpdate(tx, configID)
	if err != nil {
		return nil, err
	}

	if err := s.reconcileLocked(tx, cfg); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return cfg, nil
}

// reconcileLocked recomputes the counter for a configuration whose row is
// already locked by the enclosing transaction, and updates cfg in place.
// No-op when manual override is set.
func (s *ReconciliationService) reconcileLocked(ext sqlx.Ext, cfg *models.RoomConfiguration) error {
	if cfg.ManualOverride {
		return nil
	}

	occupied, err := s.bookingRepo.CountActiveByConfig(ext, cfg.ID)
	if err != nil {
		return err
	}

	available, err := models.AvailableBeds(cfg.TotalRooms, cfg.RoomType, occupied)
	if err != nil {
		return err
	}

	if err := s.configRepo.SetAvailableBeds(ext, cfg.ID, available); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"config_id":      cfg.ID,
		"occupied_beds":  occupied,
		"available_beds": available,
	}).Debug("Room configuration reconciled")

	cfg.AvailableBeds = available
	return nil
}

// SetManualOverride toggles the manual override flag. Enabling freezes the
// counter, at the explicitly submitted value when one is given (clamped to
// capacity). Disabling immediately recomputes the counter.
func (s *ReconciliationService) SetManualOverride(configID string, enabled bool, explicitBeds *int) (*models.RoomConfiguration, error) {
	tx, err := s.configRepo.BeginTx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	cfg, err := s.configRepo.GetByIDForUpdate(tx, configID)
	if err != nil {
		return nil, err
	}

	cfg.ManualOverride = enabled
	if enabled && explicitBeds != nil {
		totalBeds, err := cfg.TotalBeds()
		if err != nil {
			return nil, err
		}
		beds := *explicitBeds
		if beds < 0 {
			beds = 0
		}
		if beds > totalBeds {
			beds = totalBeds
		}
		cfg.AvailableBeds = beds
	}

	if err := s.configRepo.Update(tx, cfg); err != nil {
		return nil, err
	}

	if !enabled {
		if err := s.reconcileLocked(tx, cfg); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"config_id":       configID,
		"manual_override": enabled,
		"available_beds":  cfg.AvailableBeds,
	}).Info("Manual override updated")

	return cfg, nil
}
