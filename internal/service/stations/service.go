package stations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/turnos/internal/domain/models"
	"github.com/mamadbah2/turnos/internal/repository"
	"github.com/mamadbah2/turnos/internal/service/shifts"
)

// NoFabric is shown in place of a fabric code when a station has none.
const NoFabric = "-"

// Row is one station of the dashboard.
type Row struct {
	StationID       int64  `json:"station_id"`
	StationCode     string `json:"station_code"`
	CurrentFabricID *int64 `json:"current_fabric_id"`
	NextUnit        int    `json:"next_unit"`
	FabricCode      string `json:"fabric_code"`
	TotalUnits      int    `json:"total_units"`
	EncargadoName   string `json:"encargado_nombre"`
}

// Overview is the dashboard for the current shift.
type Overview struct {
	Shift    models.Shift `json:"shift"`
	Stations []Row        `json:"stations"`
}

// StateView is the station state joined with its fabric.
type StateView struct {
	StationID       int64  `json:"station_id"`
	CurrentFabricID *int64 `json:"current_fabric_id"`
	NextUnit        int    `json:"next_unit"`
	FabricCode      string `json:"fabric_code"`
	Description     string `json:"description"`
	TotalUnits      int    `json:"total_units"`
}

// AssignmentView names who is responsible for the station this shift.
type AssignmentView struct {
	EncargadoName string `json:"encargado_nombre"`
}

// Detail is the full snapshot of one station in the current shift.
type Detail struct {
	Station    models.Station      `json:"station"`
	Shift      models.Shift        `json:"shift"`
	Assignment AssignmentView      `json:"assignment"`
	State      *StateView          `json:"state"`
	Queue      []models.QueueEntry `json:"queue"`
	OpenLog    *models.ShiftLog    `json:"openLog"`
}

// Service exposes the read side of the plant and the assignment registry.
type Service struct {
	store  repository.Store
	shifts shifts.ShiftResolver
	logger *zap.Logger
}

// NewService wires a new station service instance.
func NewService(store repository.Store, resolver shifts.ShiftResolver, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, shifts: resolver, logger: logger}
}

// Overview lists every station with its fabric, next unit and operator for the current shift.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	var out Overview

	err := s.store.WithTransaction(ctx, func(tx repository.Tx) error {
		shift, err := s.shifts.Current(ctx, tx)
		if err != nil {
			return err
		}

		rows, err := tx.ListStationOverview(ctx, shift.ID)
		if err != nil {
			return fmt.Errorf("list stations: %w", err)
		}

		out.Shift = shift
		out.Stations = make([]Row, 0, len(rows))
		for _, r := range rows {
			row := Row{
				StationID:       r.StationID,
				StationCode:     r.StationCode,
				CurrentFabricID: r.CurrentFabricID,
				NextUnit:        r.NextUnit,
				FabricCode:      NoFabric,
				EncargadoName:   models.Unassigned,
			}
			if r.FabricCode != nil {
				row.FabricCode = *r.FabricCode
			}
			if r.FabricTotal != nil {
				row.TotalUnits = *r.FabricTotal
			}
			if r.EncargadoName != nil && strings.TrimSpace(*r.EncargadoName) != "" {
				row.EncargadoName = *r.EncargadoName
			}
			out.Stations = append(out.Stations, row)
		}
		return nil
	})
	if err != nil {
		return Overview{}, err
	}
	return out, nil
}

// Detail returns the station, shift, assignment, state, queue and open log snapshot.
func (s *Service) Detail(ctx context.Context, stationID int64) (Detail, error) {
	var out Detail

	err := s.store.WithTransaction(ctx, func(tx repository.Tx) error {
		station, err := tx.GetStation(ctx, stationID)
		if err != nil {
			return notFound(err, "station %d does not exist", stationID)
		}
		out.Station = station

		if out.Shift, err = s.shifts.Current(ctx, tx); err != nil {
			return err
		}

		out.Assignment = AssignmentView{EncargadoName: models.Unassigned}
		a, err := tx.FindAssignment(ctx, stationID, out.Shift.ID)
		switch {
		case err == nil:
			out.Assignment.EncargadoName = a.EncargadoName
		case !errors.Is(err, repository.ErrNotFound):
			return fmt.Errorf("find assignment: %w", err)
		}

		state, err := tx.GetStationState(ctx, stationID)
		switch {
		case err == nil:
			view := &StateView{
				StationID:       state.StationID,
				CurrentFabricID: state.CurrentFabricID,
				NextUnit:        state.NextUnit,
				FabricCode:      NoFabric,
			}
			if state.HasFabric() {
				fabric, err := tx.GetFabric(ctx, *state.CurrentFabricID)
				if err != nil && !errors.Is(err, repository.ErrNotFound) {
					return fmt.Errorf("load fabric: %w", err)
				}
				if err == nil {
					view.FabricCode = fabric.Code
					view.Description = fabric.Description
					view.TotalUnits = fabric.TotalUnits
				}
			}
			out.State = view
		case !errors.Is(err, repository.ErrNotFound):
			return fmt.Errorf("load station state: %w", err)
		}

		if out.Queue, err = tx.ListQueue(ctx, stationID); err != nil {
			return fmt.Errorf("list queue: %w", err)
		}

		open, err := tx.FindOpenLog(ctx, stationID, out.Shift.ID)
		switch {
		case err == nil:
			out.OpenLog = &open
		case !errors.Is(err, repository.ErrNotFound):
			return fmt.Errorf("find open log: %w", err)
		}
		return nil
	})
	if err != nil {
		return Detail{}, err
	}
	return out, nil
}

// SetAssignment names the person responsible for (station, shift), creating
// the assignment or re-activating the existing one.
func (s *Service) SetAssignment(ctx context.Context, stationID, shiftID int64, name string) error {
	name = strings.TrimSpace(name)
	if stationID <= 0 || shiftID <= 0 || name == "" {
		return fmt.Errorf("%w: station, shift and encargado name are required", models.ErrInvalidArgument)
	}

	err := s.store.WithTransaction(ctx, func(tx repository.Tx) error {
		if _, err := tx.GetStation(ctx, stationID); err != nil {
			return notFound(err, "station %d does not exist", stationID)
		}
		if _, err := tx.GetShift(ctx, shiftID); err != nil {
			return notFound(err, "shift %d does not exist", shiftID)
		}
		if err := tx.UpsertAssignment(ctx, stationID, shiftID, name); err != nil {
			return fmt.Errorf("upsert assignment: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("assignment updated",
		zap.Int64("station_id", stationID),
		zap.Int64("shift_id", shiftID),
		zap.String("encargado", name))
	return nil
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: "+format, append([]any{models.ErrNotFound}, args...)...)
	}
	return fmt.Errorf("lookup: %w", err)
}
