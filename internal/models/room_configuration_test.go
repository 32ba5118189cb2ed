package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBedsPerRoom(t *testing.T) {
	tests := []struct {
		roomType RoomType
		want     int
	}{
		{RoomTypeSingle, 1},
		{RoomTypeDouble, 2},
		{RoomTypeTriple, 3},
		{RoomTypeQuad, 4},
	}

	for _, tt := range tests {
		t.Run(string(tt.roomType), func(t *testing.T) {
			got, err := BedsPerRoom(tt.roomType)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("Unknown Tag", func(t *testing.T) {
		_, err := BedsPerRoom(RoomType("penthouse"))
		assert.ErrorIs(t, err, ErrInvalidRoomType)
	})
}

func TestParseRoomType(t *testing.T) {
	tests := []struct {
		tag  string
		want RoomType
	}{
		{"single", RoomTypeSingle},
		{"Double", RoomTypeDouble},
		{"  triple ", RoomTypeTriple},
		{"quad", RoomTypeQuad},
		{"4 sharing", RoomTypeQuad},
		{"Quad Sharing", RoomTypeQuad},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, err := ParseRoomType(tt.tag)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("Unknown Tag", func(t *testing.T) {
		_, err := ParseRoomType("dormitory")
		assert.ErrorIs(t, err, ErrInvalidRoomType)
	})

	t.Run("Empty Tag", func(t *testing.T) {
		_, err := ParseRoomType("")
		assert.ErrorIs(t, err, ErrInvalidRoomType)
	})
}

func TestTotalBeds(t *testing.T) {
	got, err := TotalBeds(2, RoomTypeDouble)
	require.NoError(t, err)
	assert.Equal(t, 4, got)

	got, err = TotalBeds(3, RoomTypeQuad)
	require.NoError(t, err)
	assert.Equal(t, 12, got)

	_, err = TotalBeds(2, RoomType("bunk"))
	assert.ErrorIs(t, err, ErrInvalidRoomType)
}

func TestAvailableBeds(t *testing.T) {
	t.Run("Normal Occupancy", func(t *testing.T) {
		got, err := AvailableBeds(2, RoomTypeDouble, 1)
		require.NoError(t, err)
		assert.Equal(t, 3, got)
	})

	t.Run("Full Occupancy", func(t *testing.T) {
		got, err := AvailableBeds(2, RoomTypeDouble, 4)
		require.NoError(t, err)
		assert.Equal(t, 0, got)
	})

	t.Run("Overbooked Clamps To Zero", func(t *testing.T) {
		got, err := AvailableBeds(1, RoomTypeSingle, 5)
		require.NoError(t, err)
		assert.Equal(t, 0, got)
	})
}

func TestRoomConfigurationSpecValidate(t *testing.T) {
	valid := RoomConfigurationSpec{RoomType: "double", RentPerMonth: 8500, TotalRooms: 2}
	assert.NoError(t, valid.Validate())

	t.Run("Bad Room Type", func(t *testing.T) {
		spec := valid
		spec.RoomType = "suite"
		assert.ErrorIs(t, spec.Validate(), ErrInvalidRoomType)
	})

	t.Run("Zero Rooms", func(t *testing.T) {
		spec := valid
		spec.TotalRooms = 0
		assert.Error(t, spec.Validate())
	})

	t.Run("Negative Rent", func(t *testing.T) {
		spec := valid
		spec.RentPerMonth = -1
		assert.Error(t, spec.Validate())
	})

	t.Run("Negative Beds", func(t *testing.T) {
		spec := valid
		beds := -2
		spec.AvailableBeds = &beds
		assert.Error(t, spec.Validate())
	})
}
