package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/turnos/internal/domain/models"
	"github.com/mamadbah2/turnos/internal/repository"
)

func seeded(t *testing.T) *Store {
	t.Helper()
	s := New()
	require.NoError(t, repository.SeedSamplePlant(context.Background(), s))
	return s
}

func TestSeedSamplePlant(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	require.NoError(t, s.WithTransaction(ctx, func(tx repository.Tx) error {
		shifts, err := tx.ListShifts(ctx)
		require.NoError(t, err)
		require.Len(t, shifts, 3)
		assert.Equal(t, "T3", shifts[2].Name)

		stations, err := tx.ListStations(ctx)
		require.NoError(t, err)
		require.Len(t, stations, 3)

		for _, st := range stations {
			state, err := tx.GetStationState(ctx, st.ID)
			require.NoError(t, err)
			assert.True(t, state.HasFabric())
			assert.Equal(t, 1, state.NextUnit)

			queue, err := tx.ListQueue(ctx, st.ID)
			require.NoError(t, err)
			assert.Len(t, queue, 3)

			next, err := tx.NextQueueEntry(ctx, st.ID)
			require.NoError(t, err)
			assert.Equal(t, *state.CurrentFabricID, next.FabricID)
		}

		user, err := tx.FindUserByUsername(ctx, "gerente")
		require.NoError(t, err)
		assert.Equal(t, models.RoleManager, user.Role)

		_, err = tx.FindUserByUsername(ctx, "GERENTE")
		assert.ErrorIs(t, err, repository.ErrNotFound)
		return nil
	}))
}

func TestWithTransactionRollsBack(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()
	boom := errors.New("boom")

	var stationID int64
	err := s.WithTransaction(ctx, func(tx repository.Tx) error {
		stations, _ := tx.ListStations(ctx)
		stationID = stations[0].ID
		require.NoError(t, tx.SaveStationState(ctx, models.StationState{StationID: stationID, NextUnit: 42}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	require.NoError(t, s.WithTransaction(ctx, func(tx repository.Tx) error {
		state, err := tx.GetStationState(ctx, stationID)
		require.NoError(t, err)
		assert.Equal(t, 1, state.NextUnit)
		assert.True(t, state.HasFabric())
		return nil
	}))
}

func TestInsertShiftLogRejectsSecondOpenLog(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	require.NoError(t, s.WithTransaction(ctx, func(tx repository.Tx) error {
		stations, _ := tx.ListStations(ctx)
		shifts, _ := tx.ListShifts(ctx)
		log := models.ShiftLog{StationID: stations[0].ID, ShiftID: shifts[0].ID, Status: models.LogOpen, UnitStart: 1}

		first := log
		require.NoError(t, tx.InsertShiftLog(ctx, &first))
		assert.NotZero(t, first.ID)

		second := log
		assert.ErrorIs(t, tx.InsertShiftLog(ctx, &second), repository.ErrDuplicate)

		other := log
		other.ShiftID = shifts[1].ID
		assert.NoError(t, tx.InsertShiftLog(ctx, &other))

		found, err := tx.FindOpenLog(ctx, log.StationID, log.ShiftID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, found.ID)
		return nil
	}))
}

func TestQueueDeactivation(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	require.NoError(t, s.WithTransaction(ctx, func(tx repository.Tx) error {
		stations, _ := tx.ListStations(ctx)
		id := stations[0].ID

		for i := 0; i < 3; i++ {
			next, err := tx.NextQueueEntry(ctx, id)
			require.NoError(t, err)
			require.NoError(t, tx.DeactivateQueueEntry(ctx, id, next.FabricID))
		}

		_, err := tx.NextQueueEntry(ctx, id)
		assert.ErrorIs(t, err, repository.ErrNotFound)

		queue, err := tx.ListQueue(ctx, id)
		require.NoError(t, err)
		assert.Len(t, queue, 3)
		return nil
	}))
}

func TestUpsertAssignment(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	require.NoError(t, s.WithTransaction(ctx, func(tx repository.Tx) error {
		stations, _ := tx.ListStations(ctx)
		shifts, _ := tx.ListShifts(ctx)
		st, sh := stations[0].ID, shifts[0].ID

		require.NoError(t, tx.UpsertAssignment(ctx, st, sh, "Rosa"))
		a, err := tx.FindAssignment(ctx, st, sh)
		require.NoError(t, err)
		assert.Equal(t, "Rosa", a.EncargadoName)

		rows, err := tx.ListStationOverview(ctx, sh)
		require.NoError(t, err)
		require.NotNil(t, rows[0].EncargadoName)
		assert.Equal(t, "Rosa", *rows[0].EncargadoName)
		return nil
	}))
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New().WithTransaction(ctx, func(repository.Tx) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSaveStationStateKeepsCallerTimestamp(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()
	at := time.Date(2026, 10, 15, 7, 30, 0, 0, time.UTC)

	require.NoError(t, s.WithTransaction(ctx, func(tx repository.Tx) error {
		require.NoError(t, tx.SaveStationState(ctx, models.StationState{StationID: 4, NextUnit: 9, UpdatedAt: at}))
		st, err := tx.GetStationState(ctx, 4)
		require.NoError(t, err)
		assert.True(t, at.Equal(st.UpdatedAt))

		require.NoError(t, tx.SaveStationState(ctx, models.StationState{StationID: 5, NextUnit: 2}))
		st, err = tx.GetStationState(ctx, 5)
		require.NoError(t, err)
		assert.False(t, st.UpdatedAt.IsZero())
		return nil
	}))
}
