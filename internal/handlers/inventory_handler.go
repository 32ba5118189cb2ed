package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/thebishalghosh/livonto-sub000/internal/models"
	"github.com/thebishalghosh/livonto-sub000/internal/services"
)

// InventoryHandler exposes the room inventory and booking lifecycle engine
// to the admin console
type InventoryHandler struct {
	lifecycle *services.BookingLifecycleService
	recon     *services.ReconciliationService
	sync      *services.ConfigSyncService
	sweeper   *services.ExpirySweeperService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(
	lifecycle *services.BookingLifecycleService,
	recon *services.ReconciliationService,
	sync *services.ConfigSyncService,
	sweeper *services.ExpirySweeperService,
) *InventoryHandler {
	return &InventoryHandler{
		lifecycle: lifecycle,
		recon:     recon,
		sync:      sync,
		sweeper:   sweeper,
	}
}

// CreateBooking creates a booking in pending status
func (h *InventoryHandler) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	startDate, err := req.ParsedStartDate()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.lifecycle.CreateBooking(req.RoomConfigID, startDate, req.DurationMonths, req.Amount)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// TransitionBooking applies a booking status transition
func (h *InventoryHandler) TransitionBooking(c *gin.Context) {
	var req models.UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	status, err := models.ParseBookingStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.lifecycle.TransitionBooking(c.Param("id"), status)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// DeleteBooking removes a booking, releasing its bed if it was active
func (h *InventoryHandler) DeleteBooking(c *gin.Context) {
	if err := h.lifecycle.DeleteBooking(c.Param("id")); err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Booking deleted"})
}

// ReconcileConfiguration recomputes a configuration's available beds
func (h *InventoryHandler) ReconcileConfiguration(c *gin.Context) {
	cfg, err := h.recon.Reconcile(c.Param("id"))
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, cfg)
}

// SetManualOverride toggles a configuration's manual override flag
func (h *InventoryHandler) SetManualOverride(c *gin.Context) {
	var req models.SetManualOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	cfg, err := h.recon.SetManualOverride(c.Param("id"), req.Enabled, req.AvailableBeds)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, cfg)
}

// SyncConfigurations applies a listing's full submitted configuration set
func (h *InventoryHandler) SyncConfigurations(c *gin.Context) {
	var req models.SyncConfigurationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	for i := range req.Configurations {
		if err := req.Configurations[i].Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	result, err := h.sync.SyncConfigurations(c.Param("id"), req.Configurations)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SweepExpiredBookings triggers an expiry sweep, optionally as of a given date
func (h *InventoryHandler) SweepExpiredBookings(c *gin.Context) {
	var req struct {
		AsOf string `json:"as_of,omitempty"` // YYYY-MM-DD, defaults to today
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}
	}

	var asOf time.Time
	if req.AsOf != "" {
		parsed, err := time.Parse("2006-01-02", req.AsOf)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "as_of must be in YYYY-MM-DD format"})
			return
		}
		asOf = parsed
	}

	summary, err := h.sweeper.SweepExpiredBookings(asOf)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// respondEngineError maps engine errors onto HTTP statuses
func respondEngineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrBookingMissing),
		errors.Is(err, models.ErrConfigurationMissing),
		errors.Is(err, models.ErrListingMissing):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInvalidTransition):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrNoBedsAvailable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInvalidRoomType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
