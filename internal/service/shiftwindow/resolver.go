package shiftwindow

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mamadbah2/turnos/internal/domain/models"
	"github.com/mamadbah2/turnos/internal/repository"
)

// Resolver picks the shift whose window contains the plant's wall clock.
type Resolver struct {
	loc *time.Location
	now func() time.Time
}

// NewResolver builds a resolver for the plant timezone. A nil location means UTC.
func NewResolver(loc *time.Location) *Resolver {
	if loc == nil {
		loc = time.UTC
	}
	return &Resolver{loc: loc, now: time.Now}
}

// WithClock replaces the wall clock, mostly for tests.
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	r.now = now
	return r
}

// Now returns the current plant-local time.
func (r *Resolver) Now() time.Time {
	return r.now().In(r.loc)
}

// Current loads the shift definitions and resolves the active one.
func (r *Resolver) Current(ctx context.Context, tx repository.Tx) (models.Shift, error) {
	shifts, err := tx.ListShifts(ctx)
	if err != nil {
		return models.Shift{}, fmt.Errorf("load shifts: %w", err)
	}
	shift, ok := Resolve(shifts, r.Now())
	if !ok {
		return models.Shift{}, fmt.Errorf("%w: no active shift", models.ErrNotFound)
	}
	return shift, nil
}

// Resolve returns the first shift, in ID order, whose [start, end) window
// contains now. Windows with start > end wrap past midnight. When no window
// matches the first shift is returned; ok is false only when shifts is empty.
func Resolve(shifts []models.Shift, now time.Time) (models.Shift, bool) {
	if len(shifts) == 0 {
		return models.Shift{}, false
	}

	ordered := make([]models.Shift, len(shifts))
	copy(ordered, shifts)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	minute := now.Hour()*60 + now.Minute()
	for _, sh := range ordered {
		in, err := sh.Contains(minute)
		if err != nil {
			continue
		}
		if in {
			return sh, true
		}
	}
	return ordered[0], true
}
