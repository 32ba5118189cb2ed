package services

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/thebishalghosh/livonto-sub000/internal/database"
	"github.com/thebishalghosh/livonto-sub000/internal/models"
)

// ConfigSyncService reconciles a listing's submitted room configuration set
// against the persisted set: updates matched rows, inserts new ones, and
// deletes removed ones unless bookings still reference them. The whole sync
// for a listing is one transaction.
type ConfigSyncService struct {
	configRepo  *database.RoomConfigRepository
	bookingRepo *database.BookingRepository
	recon       *ReconciliationService
	logger      *logrus.Logger
}

// NewConfigSyncService creates a new ConfigSyncService
func NewConfigSyncService(
	configRepo *database.RoomConfigRepository,
	bookingRepo *database.BookingRepository,
	recon *ReconciliationService,
	logger *logrus.Logger,
) *ConfigSyncService {
	return &ConfigSyncService{
		configRepo:  configRepo,
		bookingRepo: bookingRepo,
		recon:       recon,
		logger:      logger,
	}
}

// SyncConfigurations applies a listing's full submitted configuration set.
// Removals blocked by existing bookings are silently retained and reported in
// the result rather than failing the sync.
func (s *ConfigSyncService) SyncConfigurations(listingID string, specs []models.RoomConfigurationSpec) (*models.SyncResult, error) {
	for i := range specs {
		if err := specs[i].Validate(); err != nil {
			return nil, fmt.Errorf("configuration %d: %w", i, err)
		}
	}

	tx, err := s.configRepo.BeginTx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	exists, err := s.configRepo.ListingExists(tx, listingID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.ErrListingMissing
	}

	existing, err := s.configRepo.ListByListingForUpdate(tx, listingID)
	if err != nil {
		return nil, err
	}

	existingByID := make(map[string]*models.RoomConfiguration, len(existing))
	for i := range existing {
		existingByID[existing[i].ID] = &existing[i]
	}

	submitted := make(map[string]bool, len(specs))
	for i := range specs {
		spec := &specs[i]

		if spec.ID != nil {
			if prior, ok := existingByID[*spec.ID]; ok {
				submitted[*spec.ID] = true
				if err := s.updateConfiguration(tx, prior, spec); err != nil {
					return nil, err
				}
				continue
			}
		}

		// No id, or an id that matches nothing persisted: insert
		if err := s.insertConfiguration(tx, listingID, spec); err != nil {
			return nil, err
		}
	}

	blocked := []string{}
	for i := range existing {
		if submitted[existing[i].ID] {
			continue
		}
		deleted, err := s.configRepo.DeleteIfUnreferenced(tx, existing[i].ID)
		if err != nil {
			return nil, err
		}
		if !deleted {
			blocked = append(blocked, existing[i].ID)
		}
	}

	final, err := s.configRepo.ListByListing(tx, listingID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"listing_id":      listingID,
		"configurations":  len(final),
		"blocked_deletes": len(blocked),
	}).Info("Listing room configurations synced")

	return &models.SyncResult{Configurations: final, BlockedDeletes: blocked}, nil
}

// updateConfiguration applies a submitted spec over a persisted row. With
// manual override requested the submitted bed count is taken literally
// (clamped to capacity); otherwise the prior counter is retained and a
// capacity change triggers a full recompute.
func (s *ConfigSyncService) updateConfiguration(tx *sqlx.Tx, prior *models.RoomConfiguration, spec *models.RoomConfigurationSpec) error {
	roomType, err := models.ParseRoomType(spec.RoomType)
	if err != nil {
		return err
	}

	overrideWasOn := prior.ManualOverride
	capacityChanged := prior.TotalRooms != spec.TotalRooms || prior.RoomType != roomType

	cfg := *prior
	cfg.RoomType = roomType
	cfg.RentPerMonth = spec.RentPerMonth
	cfg.TotalRooms = spec.TotalRooms
	cfg.ManualOverride = spec.ManualOverride

	if spec.ManualOverride {
		totalBeds, err := cfg.TotalBeds()
		if err != nil {
			return err
		}
		// With no explicit value the prior counter is kept, but a capacity
		// shrink must not leave it above the new total.
		beds := cfg.AvailableBeds
		if spec.AvailableBeds != nil {
			beds = *spec.AvailableBeds
		}
		if beds > totalBeds {
			beds = totalBeds
		}
		cfg.AvailableBeds = beds
	}

	if err := s.configRepo.Update(tx, &cfg); err != nil {
		return err
	}

	if !cfg.ManualOverride && (capacityChanged || overrideWasOn) {
		if err := s.recon.reconcileLocked(tx, &cfg); err != nil {
			return err
		}
	}

	return nil
}

// insertConfiguration creates a new row for a submitted spec. New rows are
// always reconciled so a pre-seeded counter in the submission is correctly
// capped; configurations inserted under manual override keep the submitted
// value (clamped).
func (s *ConfigSyncService) insertConfiguration(tx *sqlx.Tx, listingID string, spec *models.RoomConfigurationSpec) error {
	roomType, err := models.ParseRoomType(spec.RoomType)
	if err != nil {
		return err
	}

	cfg := models.RoomConfiguration{
		ListingID:      listingID,
		RoomType:       roomType,
		RentPerMonth:   spec.RentPerMonth,
		TotalRooms:     spec.TotalRooms,
		ManualOverride: spec.ManualOverride,
	}

	totalBeds, err := cfg.TotalBeds()
	if err != nil {
		return err
	}
	if spec.AvailableBeds != nil {
		beds := *spec.AvailableBeds
		if beds > totalBeds {
			beds = totalBeds
		}
		cfg.AvailableBeds = beds
	} else {
		cfg.AvailableBeds = totalBeds
	}

	if err := s.configRepo.Insert(tx, &cfg); err != nil {
		return err
	}

	lockedCfg, err := s.configRepo.GetByIDForUpdate(tx, cfg.ID)
	if err != nil {
		return err
	}

	return s.recon.reconcileLocked(tx, lockedCfg)
}
