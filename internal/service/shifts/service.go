package shifts

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/turnos/internal/domain/models"
	"github.com/mamadbah2/turnos/internal/repository"
)

const dateLayout = "2006-01-02"

// ShiftResolver resolves the active shift and the plant wall clock.
type ShiftResolver interface {
	Current(ctx context.Context, tx repository.Tx) (models.Shift, error)
	Now() time.Time
}

// StartRequest carries the inputs of StartShift. Empty strings and a nil
// FabricID mean "not given".
type StartRequest struct {
	StationID   int64
	RequesterID int64
	Ayudante    string
	FabricID    *int64
	Encargado   string
}

// EndRequest carries the inputs of EndShift.
type EndRequest struct {
	StationID int64
	UnitEnd   float64
	Ayudante  string
	Notes     string
}

// EndResult describes where the station stands after a shift is closed.
type EndResult struct {
	LogID        int64  `json:"log_id"`
	Completed    bool   `json:"completed"`
	NextFabricID *int64 `json:"nextFabricId"`
	NextUnit     int    `json:"nextUnit"`
}

// Service moves stations through their shift logs, unit pointer and fabric queue.
type Service struct {
	store  repository.Store
	shifts ShiftResolver
	logger *zap.Logger
}

// NewService wires a new shift progression service.
func NewService(store repository.Store, resolver ShiftResolver, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, shifts: resolver, logger: logger}
}

// StartShift opens a shift log for the station in the current shift and
// returns its id. At most one OPEN log may exist per (station, shift).
func (s *Service) StartShift(ctx context.Context, req StartRequest) (int64, error) {
	var created models.ShiftLog

	err := s.store.WithTransaction(ctx, func(tx repository.Tx) error {
		if _, err := tx.GetStation(ctx, req.StationID); err != nil {
			return lookupErr(err, "station %d does not exist", req.StationID)
		}

		shift, err := s.shifts.Current(ctx, tx)
		if err != nil {
			return err
		}

		// Locking the state row first serializes concurrent starts on the station.
		state, err := tx.LockStationState(ctx, req.StationID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			state = models.StationState{StationID: req.StationID, NextUnit: 1}
		case err != nil:
			return fmt.Errorf("load station state: %w", err)
		}

		if _, err := tx.FindOpenLog(ctx, req.StationID, shift.ID); err == nil {
			return fmt.Errorf("%w: shift already open for station %d in %s", models.ErrConflict, req.StationID, shift.Name)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("find open log: %w", err)
		}

		if req.FabricID != nil {
			if state, err = s.overrideFabric(ctx, tx, state, *req.FabricID); err != nil {
				return err
			}
		}
		if !state.HasFabric() {
			return fmt.Errorf("%w: no fabric assigned to station %d", models.ErrInvalidState, req.StationID)
		}

		fabric, err := tx.GetFabric(ctx, *state.CurrentFabricID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: current fabric %d does not exist", models.ErrInvalidState, *state.CurrentFabricID)
			}
			return fmt.Errorf("load fabric: %w", err)
		}
		if state.NextUnit < 1 || state.NextUnit > fabric.TotalUnits {
			return fmt.Errorf("%w: next unit %d outside 1..%d for fabric %s", models.ErrOutOfRange, state.NextUnit, fabric.TotalUnits, fabric.Code)
		}

		encargado, err := s.operatorName(ctx, tx, req.StationID, shift.ID, req.Encargado)
		if err != nil {
			return err
		}

		now := s.shifts.Now()
		created = models.ShiftLog{
			Date:          now.Format(dateLayout),
			ShiftID:       shift.ID,
			StationID:     req.StationID,
			EncargadoName: encargado,
			AyudanteName:  optional(req.Ayudante),
			FabricID:      fabric.ID,
			UnitStart:     state.NextUnit,
			Status:        models.LogOpen,
			OpenedAt:      now,
			CreatedBy:     req.RequesterID,
		}
		if err := tx.InsertShiftLog(ctx, &created); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return fmt.Errorf("%w: shift already open for station %d in %s", models.ErrConflict, req.StationID, shift.Name)
			}
			return fmt.Errorf("insert shift log: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logFailure("start shift", req.StationID, err)
		return 0, err
	}

	s.logger.Info("shift started",
		zap.Int64("station_id", created.StationID),
		zap.Int64("shift_id", created.ShiftID),
		zap.Int64("log_id", created.ID),
		zap.Int64("fabric_id", created.FabricID),
		zap.Int("unit_start", created.UnitStart),
		zap.String("encargado", created.EncargadoName))

	return created.ID, nil
}

// EndShift closes the open log of the station in the current shift and
// advances the station: to the next unit, or to the next queued fabric when
// the lot is complete. The log close and the state change commit together.
func (s *Service) EndShift(ctx context.Context, req EndRequest) (EndResult, error) {
	unitEnd, err := wholeUnit(req.UnitEnd)
	if err != nil {
		return EndResult{}, err
	}

	var result EndResult

	err = s.store.WithTransaction(ctx, func(tx repository.Tx) error {
		if _, err := tx.GetStation(ctx, req.StationID); err != nil {
			return lookupErr(err, "station %d does not exist", req.StationID)
		}

		shift, err := s.shifts.Current(ctx, tx)
		if err != nil {
			return err
		}

		state, err := tx.LockStationState(ctx, req.StationID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			state = models.StationState{StationID: req.StationID}
		case err != nil:
			return fmt.Errorf("load station state: %w", err)
		}

		open, err := tx.FindOpenLog(ctx, req.StationID, shift.ID)
		if err != nil {
			return lookupErr(err, "no open shift for station %d in %s", req.StationID, shift.Name)
		}

		fabric, err := tx.GetFabric(ctx, open.FabricID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: fabric %d of log %d does not exist", models.ErrInvalidState, open.FabricID, open.ID)
			}
			return fmt.Errorf("load fabric: %w", err)
		}

		if unitEnd < open.UnitStart {
			return fmt.Errorf("%w: end before start (%d)", models.ErrInvalidArgument, open.UnitStart)
		}
		if unitEnd > fabric.TotalUnits {
			return fmt.Errorf("%w: end exceeds fabric total (%d)", models.ErrInvalidArgument, fabric.TotalUnits)
		}

		closedAt := s.shifts.Now()
		open.UnitEnd = &unitEnd
		open.Status = models.LogClosed
		open.ClosedAt = &closedAt
		if v := optional(req.Ayudante); v != nil {
			open.AyudanteName = v
		}
		if v := optional(req.Notes); v != nil {
			open.Notes = v
		}
		if err := tx.UpdateShiftLog(ctx, open); err != nil {
			return fmt.Errorf("close shift log: %w", err)
		}

		result = EndResult{LogID: open.ID, Completed: unitEnd >= fabric.TotalUnits}
		if result.Completed {
			state, err = s.advanceQueue(ctx, tx, state, fabric)
			if err != nil {
				return err
			}
		} else {
			fabricID := fabric.ID
			state.CurrentFabricID = &fabricID
			state.NextUnit = unitEnd + 1
		}

		state.UpdatedAt = closedAt
		if err := tx.SaveStationState(ctx, state); err != nil {
			return fmt.Errorf("save station state: %w", err)
		}

		result.NextFabricID = state.CurrentFabricID
		result.NextUnit = state.NextUnit
		return nil
	})
	if err != nil {
		s.logFailure("end shift", req.StationID, err)
		return EndResult{}, err
	}

	fields := []zap.Field{
		zap.Int64("station_id", req.StationID),
		zap.Int64("log_id", result.LogID),
		zap.Int("unit_end", unitEnd),
		zap.Bool("completed", result.Completed),
		zap.Int("next_unit", result.NextUnit),
	}
	if result.NextFabricID != nil {
		fields = append(fields, zap.Int64("next_fabric_id", *result.NextFabricID))
	}
	s.logger.Info("shift ended", fields...)
	if result.Completed && result.NextFabricID == nil {
		s.logger.Warn("station queue exhausted", zap.Int64("station_id", req.StationID))
	}

	return result, nil
}

// advanceQueue retires the finished fabric and points the station at the
// next active queue entry. With no entry left the fabric is cleared.
func (s *Service) advanceQueue(ctx context.Context, tx repository.Tx, state models.StationState, finished models.Fabric) (models.StationState, error) {
	if err := tx.DeactivateQueueEntry(ctx, state.StationID, finished.ID); err != nil {
		return state, fmt.Errorf("deactivate queue entry: %w", err)
	}

	state.NextUnit = 1
	next, err := tx.NextQueueEntry(ctx, state.StationID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		state.CurrentFabricID = nil
	case err != nil:
		return state, fmt.Errorf("next queue entry: %w", err)
	default:
		fabricID := next.FabricID
		state.CurrentFabricID = &fabricID
	}
	return state, nil
}

// overrideFabric points the station at fabricID. Switching to a different
// fabric restarts the unit pointer at 1.
func (s *Service) overrideFabric(ctx context.Context, tx repository.Tx, state models.StationState, fabricID int64) (models.StationState, error) {
	fabric, err := tx.GetFabric(ctx, fabricID)
	if err != nil {
		return state, lookupErr(err, "fabric %d does not exist", fabricID)
	}

	if !state.HasFabric() || *state.CurrentFabricID != fabric.ID {
		id := fabric.ID
		state.CurrentFabricID = &id
		state.NextUnit = 1
	}
	state.UpdatedAt = s.shifts.Now()
	if err := tx.SaveStationState(ctx, state); err != nil {
		return state, fmt.Errorf("save station state: %w", err)
	}

	s.logger.Info("station fabric overridden",
		zap.Int64("station_id", state.StationID),
		zap.Int64("fabric_id", fabric.ID))
	return state, nil
}

func (s *Service) operatorName(ctx context.Context, tx repository.Tx, stationID, shiftID int64, explicit string) (string, error) {
	if name := strings.TrimSpace(explicit); name != "" {
		return name, nil
	}

	a, err := tx.FindAssignment(ctx, stationID, shiftID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return models.Unassigned, nil
	case err != nil:
		return "", fmt.Errorf("find assignment: %w", err)
	}
	if name := strings.TrimSpace(a.EncargadoName); name != "" {
		return name, nil
	}
	return models.Unassigned, nil
}

func (s *Service) logFailure(op string, stationID int64, err error) {
	if isDomainErr(err) {
		s.logger.Info(op+" rejected", zap.Int64("station_id", stationID), zap.Error(err))
		return
	}
	s.logger.Error(op+" failed", zap.Int64("station_id", stationID), zap.Error(err))
}

func wholeUnit(v float64) (int, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return 0, fmt.Errorf("%w: unit end must be a whole number", models.ErrInvalidArgument)
	}
	if v > math.MaxInt32 || v < math.MinInt32 {
		return 0, fmt.Errorf("%w: unit end %.0f is out of range", models.ErrInvalidArgument, v)
	}
	return int(v), nil
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func lookupErr(err error, format string, args ...any) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: "+format, append([]any{models.ErrNotFound}, args...)...)
	}
	return fmt.Errorf("lookup: %w", err)
}

func isDomainErr(err error) bool {
	for _, target := range []error{
		models.ErrConflict,
		models.ErrNotFound,
		models.ErrInvalidArgument,
		models.ErrInvalidState,
		models.ErrOutOfRange,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
