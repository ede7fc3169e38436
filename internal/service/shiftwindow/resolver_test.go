package shiftwindow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/turnos/internal/domain/models"
	"github.com/mamadbah2/turnos/internal/repository"
	"github.com/mamadbah2/turnos/internal/repository/memory"
)

var plantShifts = []models.Shift{
	{ID: 3, Name: "T3", Start: "22:00", End: "06:00"},
	{ID: 1, Name: "T1", Start: "06:00", End: "14:00"},
	{ID: 2, Name: "T2", Start: "14:00", End: "22:00"},
}

func at(hh, mm int) time.Time {
	return time.Date(2026, 10, 15, hh, mm, 0, 0, time.UTC)
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{"start of morning", at(6, 0), "T1"},
		{"last minute of morning", at(13, 59), "T1"},
		{"afternoon boundary", at(14, 0), "T2"},
		{"night before midnight", at(23, 30), "T3"},
		{"night after midnight", at(2, 15), "T3"},
		{"night end is exclusive", at(6, 0), "T1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(plantShifts, tt.now)
			require.True(t, ok)
			assert.Equal(t, tt.want, got.Name)
		})
	}
}

func TestResolveGapFallsBackToLowestID(t *testing.T) {
	shifts := []models.Shift{
		{ID: 7, Name: "late", Start: "18:00", End: "20:00"},
		{ID: 4, Name: "early", Start: "08:00", End: "10:00"},
	}

	got, ok := Resolve(shifts, at(12, 0))
	require.True(t, ok)
	assert.Equal(t, "early", got.Name)
}

func TestResolveOverlapPicksLowestID(t *testing.T) {
	shifts := []models.Shift{
		{ID: 9, Name: "wide", Start: "00:00", End: "23:59"},
		{ID: 2, Name: "narrow", Start: "10:00", End: "11:00"},
	}

	got, ok := Resolve(shifts, at(10, 30))
	require.True(t, ok)
	assert.Equal(t, "narrow", got.Name)
}

func TestResolveSkipsMalformedWindows(t *testing.T) {
	shifts := []models.Shift{
		{ID: 1, Name: "broken", Start: "6am", End: "2pm"},
		{ID: 2, Name: "ok", Start: "06:00", End: "14:00"},
	}

	got, ok := Resolve(shifts, at(7, 0))
	require.True(t, ok)
	assert.Equal(t, "ok", got.Name)
}

func TestResolveEmpty(t *testing.T) {
	_, ok := Resolve(nil, at(7, 0))
	assert.False(t, ok)
}

func TestResolverCurrentUsesPlantTimezone(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	for _, sh := range []*models.Shift{
		{Name: "T1", Start: "06:00", End: "14:00"},
		{Name: "T2", Start: "14:00", End: "22:00"},
	} {
		require.NoError(t, store.Insert(ctx, sh))
	}

	loc := time.FixedZone("plant", -6*3600)
	// 13:00 UTC is 07:00 at the plant.
	r := NewResolver(loc).WithClock(func() time.Time { return at(13, 0) })

	var got models.Shift
	err := store.WithTransaction(ctx, func(tx repository.Tx) error {
		var err error
		got, err = r.Current(ctx, tx)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "T1", got.Name)
	assert.Equal(t, 7, r.Now().Hour())
}

func TestResolverCurrentWithoutShifts(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	r := NewResolver(nil)

	err := store.WithTransaction(ctx, func(tx repository.Tx) error {
		_, err := r.Current(ctx, tx)
		return err
	})
	require.ErrorIs(t, err, models.ErrNotFound)
}
