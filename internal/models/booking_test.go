package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionDelta(t *testing.T) {
	allowed := []struct {
		from  BookingStatus
		to    BookingStatus
		delta int
	}{
		{BookingStatusPending, BookingStatusCancelled, +1},
		{BookingStatusConfirmed, BookingStatusCancelled, +1},
		{BookingStatusPending, BookingStatusConfirmed, -1},
		{BookingStatusCancelled, BookingStatusConfirmed, -1},
		{BookingStatusConfirmed, BookingStatusCompleted, +1},
	}

	for _, tt := range allowed {
		t.Run(string(tt.from)+" to "+string(tt.to), func(t *testing.T) {
			delta, err := TransitionDelta(tt.from, tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.delta, delta)
		})
	}

	rejected := []struct {
		from BookingStatus
		to   BookingStatus
	}{
		{BookingStatusPending, BookingStatusCompleted},
		{BookingStatusCancelled, BookingStatusCancelled},
		{BookingStatusCancelled, BookingStatusCompleted},
		{BookingStatusCompleted, BookingStatusConfirmed},
		{BookingStatusCompleted, BookingStatusCancelled},
		{BookingStatusConfirmed, BookingStatusConfirmed},
		{BookingStatusPending, BookingStatusPending},
	}

	for _, tt := range rejected {
		t.Run(string(tt.from)+" to "+string(tt.to)+" rejected", func(t *testing.T) {
			_, err := TransitionDelta(tt.from, tt.to)
			assert.ErrorIs(t, err, ErrInvalidTransition)
		})
	}
}

func TestBookingEndDate(t *testing.T) {
	t.Run("One Month", func(t *testing.T) {
		b := Booking{
			StartDate:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			DurationMonths: 1,
		}
		assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), b.EndDate())
	})

	t.Run("Three Months", func(t *testing.T) {
		b := Booking{
			StartDate:      time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			DurationMonths: 3,
		}
		assert.Equal(t, time.Date(2024, 4, 14, 0, 0, 0, 0, time.UTC), b.EndDate())
	})

	t.Run("Missing Duration Defaults To One Month", func(t *testing.T) {
		b := Booking{
			StartDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		}
		assert.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), b.EndDate())
	})
}

func TestBookingIsActive(t *testing.T) {
	assert.True(t, (&Booking{Status: BookingStatusPending}).IsActive())
	assert.True(t, (&Booking{Status: BookingStatusConfirmed}).IsActive())
	assert.False(t, (&Booking{Status: BookingStatusCancelled}).IsActive())
	assert.False(t, (&Booking{Status: BookingStatusCompleted}).IsActive())
}

func TestParseBookingStatus(t *testing.T) {
	for _, status := range []string{"pending", "confirmed", "cancelled", "completed"} {
		got, err := ParseBookingStatus(status)
		require.NoError(t, err)
		assert.Equal(t, BookingStatus(status), got)
	}

	_, err := ParseBookingStatus("checked_in")
	assert.Error(t, err)
}

func TestCreateBookingRequestValidate(t *testing.T) {
	valid := CreateBookingRequest{
		RoomConfigID: "cfg-1",
		StartDate:    "2024-01-01",
		Amount:       8500,
	}
	assert.NoError(t, valid.Validate())

	t.Run("Bad Date", func(t *testing.T) {
		req := valid
		req.StartDate = "01/01/2024"
		assert.Error(t, req.Validate())
	})

	t.Run("Missing Config", func(t *testing.T) {
		req := valid
		req.RoomConfigID = ""
		assert.Error(t, req.Validate())
	})

	t.Run("Negative Duration", func(t *testing.T) {
		req := valid
		req.DurationMonths = -1
		assert.Error(t, req.Validate())
	})
}

func TestCreateBookingRequestParsedStartDate(t *testing.T) {
	req := CreateBookingRequest{StartDate: "2024-01-01"}
	startDate, err := req.ParsedStartDate()
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), startDate)

	req.StartDate = "01/01/2024"
	_, err = req.ParsedStartDate()
	assert.Error(t, err)
}
