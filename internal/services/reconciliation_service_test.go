package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thebishalghosh/livonto-sub000/internal/database"
	"github.com/thebishalghosh/livonto-sub000/internal/models"
)

func newReconciliationService(db *sqlx.DB) *ReconciliationService {
	return NewReconciliationService(
		database.NewRoomConfigRepository(db),
		database.NewBookingRepository(db),
		testLogger(),
	)
}

func TestReconcile(t *testing.T) {
	t.Run("Recomputes From Active Bookings", func(t *testing.T) {
		db, mock := newMockDB(t)
		svc := newReconciliationService(db)

		// 2 double rooms = 4 beds, 1 active booking, drifted counter of 0.
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id, listing_id, room_type`).
			WithArgs("cfg-1").
			WillReturnRows(configRow("cfg-1", "lst-1", "double", 2, 0, false))
		mock.ExpectQuery(`SELECT COUNT`).
			WithArgs("cfg-1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectExec(`UPDATE room_configurations`).
			WithArgs("cfg-1", 3).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		cfg, err := svc.Reconcile("cfg-1")
		require.NoError(t, err)
		assert.Equal(t, 3, cfg.AvailableBeds)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Overbooked Configuration Clamps To Zero", func(t *testing.T) {
		db, mock := newMockDB(t)
		svc := newReconciliationService(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id, listing_id, room_type`).
			WithArgs("cfg-1").
			WillReturnRows(configRow("cfg-1", "lst-1", "single", 2, 1, false))
		mock.ExpectQuery(`SELECT COUNT`).
			WithArgs("cfg-1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
		mock.ExpectExec(`UPDATE room_configurations`).
			WithArgs("cfg-1", 0).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		cfg, err := svc.Reconcile("cfg-1")
		require.NoError(t, err)
		assert.Equal(t, 0, cfg.AvailableBeds)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Manual Override Is Left Untouched", func(t *testing.T) {
		db, mock := newMockDB(t)
		svc := newReconciliationService(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id, listing_id, room_type`).
			WithArgs("cfg-1").
			WillReturnRows(configRow("cfg-1", "lst-1", "double", 2, 1, true))
		mock.ExpectCommit()

		cfg, err := svc.Reconcile("cfg-1")
		require.NoError(t, err)
		assert.Equal(t, 1, cfg.AvailableBeds)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown Configuration", func(t *testing.T) {
		db, mock := newMockDB(t)
		svc := newReconciliationService(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id, listing_id, room_type`).
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows(configColumns()))
		mock.ExpectRollback()

		_, err := svc.Reconcile("missing")
		assert.ErrorIs(t, err, models.ErrConfigurationMissing)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSetManualOverride(t *testing.T) {
	t.Run("Enable With Explicit Beds Clamps To Capacity", func(t *testing.T) {
		db, mock := newMockDB(t)
		svc := newReconciliationService(db)

		// 2 double rooms = 4 beds; submitted 99 is capped.
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id, listing_id, room_type`).
			WithArgs("cfg-1").
			WillReturnRows(configRow("cfg-1", "lst-1", "double", 2, 2, false))
		mock.ExpectExec(`UPDATE room_configurations`).
			WithArgs("cfg-1", "double", 8500.0, 2, 4, true).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		beds := 99
		cfg, err := svc.SetManualOverride("cfg-1", true, &beds)
		require.NoError(t, err)
		assert.True(t, cfg.ManualOverride)
		assert.Equal(t, 4, cfg.AvailableBeds)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Enable Without Beds Freezes Current Value", func(t *testing.T) {
		db, mock := newMockDB(t)
		svc := newReconciliationService(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id, listing_id, room_type`).
			WithArgs("cfg-1").
			WillReturnRows(configRow("cfg-1", "lst-1", "double", 2, 2, false))
		mock.ExpectExec(`UPDATE room_configurations`).
			WithArgs("cfg-1", "double", 8500.0, 2, 2, true).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		cfg, err := svc.SetManualOverride("cfg-1", true, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, cfg.AvailableBeds)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Disable Recomputes Immediately", func(t *testing.T) {
		db, mock := newMockDB(t)
		svc := newReconciliationService(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id, listing_id, room_type`).
			WithArgs("cfg-1").
			WillReturnRows(configRow("cfg-1", "lst-1", "double", 2, 0, true))
		mock.ExpectExec(`UPDATE room_configurations`).
			WithArgs("cfg-1", "double", 8500.0, 2, 0, false).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT COUNT`).
			WithArgs("cfg-1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectExec(`UPDATE room_configurations`).
			WithArgs("cfg-1", 3).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		cfg, err := svc.SetManualOverride("cfg-1", false, nil)
		require.NoError(t, err)
		assert.False(t, cfg.ManualOverride)
		assert.Equal(t, 3, cfg.AvailableBeds)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
