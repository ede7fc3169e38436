package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/turnos/internal/domain/models"
	"github.com/mamadbah2/turnos/internal/repository"
	"github.com/mamadbah2/turnos/internal/repository/memory"
	"github.com/mamadbah2/turnos/internal/service/shifts"
	"github.com/mamadbah2/turnos/internal/service/shiftwindow"
)

type fakeArchive struct {
	saved []models.ProductionReport
	err   error
}

func (f *fakeArchive) SaveProductionReport(_ context.Context, r models.ProductionReport) error {
	f.saved = append(f.saved, r)
	return f.err
}

type fakeSheet struct {
	ranges []string
	rows   [][]interface{}
}

func (f *fakeSheet) AppendRows(_ context.Context, sheetRange string, rows [][]interface{}) error {
	f.ranges = append(f.ranges, sheetRange)
	f.rows = append(f.rows, rows...)
	return nil
}

type fakeMessenger struct {
	to, body string
}

func (f *fakeMessenger) SendText(_ context.Context, to, body string) error {
	f.to, f.body = to, body
	return nil
}

// producePlant seeds the sample plant and works station #1 through its first
// lot (T-100, 80 units) in two logs and station #6 for ten units.
func producePlant(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, repository.SeedSamplePlant(ctx, store))

	resolver := shiftwindow.NewResolver(time.UTC).WithClock(func() time.Time {
		return time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	})
	engine := shifts.NewService(store, resolver, nil)

	var stations []models.Station
	require.NoError(t, store.WithTransaction(ctx, func(tx repository.Tx) error {
		var err error
		stations, err = tx.ListStations(ctx)
		return err
	}))
	first, second := stations[0], stations[1]

	for _, end := range []float64{40, 80} {
		_, err := engine.StartShift(ctx, shifts.StartRequest{StationID: first.ID, Ayudante: "Luis"})
		require.NoError(t, err)
		_, err = engine.EndShift(ctx, shifts.EndRequest{StationID: first.ID, UnitEnd: end, Notes: "ok"})
		require.NoError(t, err)
	}

	_, err := engine.StartShift(ctx, shifts.StartRequest{StationID: second.ID})
	require.NoError(t, err)
	_, err = engine.EndShift(ctx, shifts.EndRequest{StationID: second.ID, UnitEnd: 10})
	require.NoError(t, err)

	return store
}

func TestBuildDailyReport(t *testing.T) {
	svc := NewService(producePlant(t), Sinks{}, nil)

	report, rows, err := svc.BuildDailyReport(context.Background(), "2026-10-14")
	require.NoError(t, err)

	assert.Len(t, rows, 3)
	assert.Equal(t, 90, report.TotalUnits)
	require.Len(t, report.Stations, 2)

	assert.Equal(t, "#1", report.Stations[0].StationCode)
	assert.Equal(t, 2, report.Stations[0].LogsClosed)
	assert.Equal(t, 80, report.Stations[0].UnitsProduced)
	assert.Equal(t, 1, report.Stations[0].LotsCompleted)

	assert.Equal(t, "#6", report.Stations[1].StationCode)
	assert.Equal(t, 10, report.Stations[1].UnitsProduced)
	assert.Zero(t, report.Stations[1].LotsCompleted)

	assert.Empty(t, report.ExhaustedStations)
}

func TestBuildDailyReportOtherDateIsEmpty(t *testing.T) {
	svc := NewService(producePlant(t), Sinks{}, nil)

	report, rows, err := svc.BuildDailyReport(context.Background(), "2026-10-13")
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Zero(t, report.TotalUnits)
	assert.Contains(t, FormatSummary(report), "No shift logs closed.")
}

func TestBuildDailyReportRejectsBadDate(t *testing.T) {
	svc := NewService(memory.New(), Sinks{}, nil)

	_, _, err := svc.BuildDailyReport(context.Background(), "14/10/2026")
	require.ErrorIs(t, err, models.ErrInvalidArgument)
}

func TestDeliverFansOutToSinks(t *testing.T) {
	archive := &fakeArchive{err: errors.New("mongo down")}
	sheet := &fakeSheet{}
	messenger := &fakeMessenger{}

	svc := NewService(producePlant(t), Sinks{
		Archive:   archive,
		Sheet:     sheet,
		Messenger: messenger,
		Recipient: "5215550000000",
	}, nil)

	err := svc.Deliver(context.Background(), "2026-10-14")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mongo down")

	require.Len(t, archive.saved, 1)
	assert.Equal(t, "2026-10-14", archive.saved[0].Date)

	assert.Equal(t, []string{shiftLogsRange}, sheet.ranges)
	require.Len(t, sheet.rows, 3)
	assert.Equal(t, []interface{}{"2026-10-14", "T1", "#1", "T-100", "#1 - Encargado T1", "Luis", 1, 40, 40, "ok"}, sheet.rows[0])

	assert.Equal(t, "5215550000000", messenger.to)
	assert.Contains(t, messenger.body, "Production 2026-10-14: 90 units.")
	assert.Contains(t, messenger.body, "#1: 80 units in 2 logs, 1 lots completed")
}

func TestFormatSummaryListsExhaustedStations(t *testing.T) {
	msg := FormatSummary(models.ProductionReport{Date: "2026-10-14", ExhaustedStations: []string{"#6", "#8"}})
	assert.Contains(t, msg, "Waiting for fabric: #6, #8")
}
