package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDeliverer struct {
	dates []string
}

func (r *recordingDeliverer) Deliver(_ context.Context, date string) error {
	r.dates = append(r.dates, date)
	return nil
}

func TestReportDateUsesPlantTimezone(t *testing.T) {
	loc, err := time.LoadLocation("America/Mexico_City")
	require.NoError(t, err)

	s := NewScheduler("5 6 * * *", loc, &recordingDeliverer{}, nil)
	// 03:00 UTC on the 15th is still the evening of the 14th in the plant.
	s.now = func() time.Time { return time.Date(2026, 10, 15, 3, 0, 0, 0, time.UTC) }

	assert.Equal(t, "2026-10-13", s.reportDate())
}

func TestSendDailyReportDeliversPreviousDate(t *testing.T) {
	rec := &recordingDeliverer{}
	s := NewScheduler("5 6 * * *", time.UTC, rec, nil)
	s.now = func() time.Time { return time.Date(2026, 1, 1, 6, 5, 0, 0, time.UTC) }

	s.sendDailyReport()

	assert.Equal(t, []string{"2025-12-31"}, rec.dates)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := NewScheduler("every day", time.UTC, &recordingDeliverer{}, nil)
	require.Error(t, s.Start())
}
