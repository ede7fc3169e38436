package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShiftContains(t *testing.T) {
	day := Shift{Name: "T1", Start: "06:00", End: "14:00"}
	night := Shift{Name: "T3", Start: "22:00", End: "06:00"}

	tests := []struct {
		name  string
		shift Shift
		clock string
		want  bool
	}{
		{"day start inclusive", day, "06:00", true},
		{"day middle", day, "09:30", true},
		{"day end exclusive", day, "14:00", false},
		{"day before", day, "05:59", false},
		{"night before midnight", night, "23:15", true},
		{"night after midnight", night, "02:00", true},
		{"night start inclusive", night, "22:00", true},
		{"night end exclusive", night, "06:00", false},
		{"night outside", night, "12:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now, err := ClockMinutes(tt.clock)
			require.NoError(t, err)

			got, err := tt.shift.Contains(now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestShiftWindowRejectsMalformedTimes(t *testing.T) {
	_, _, err := Shift{Name: "X", Start: "6am", End: "14:00"}.Window()
	assert.Error(t, err)

	_, _, err = Shift{Name: "X", Start: "06:00", End: "25:00"}.Window()
	assert.Error(t, err)
}

func TestShiftLogUnitsProduced(t *testing.T) {
	end := 79
	assert.Equal(t, 75, ShiftLog{UnitStart: 5, UnitEnd: &end}.UnitsProduced())
	assert.Zero(t, ShiftLog{UnitStart: 5}.UnitsProduced())
	assert.True(t, ShiftLog{Status: LogOpen}.IsOpen())
}
