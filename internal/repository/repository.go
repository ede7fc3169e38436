// Package repository declares the persistence contracts of the plant store.
// Implementations live in the postgres and memory subpackages.
package repository

import (
	"context"
	"errors"

	"github.com/mamadbah2/turnos/internal/domain/models"
)

var (
	// ErrNotFound is returned when a looked-up row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate record")
)

// Store opens transactions against the plant store.
type Store interface {
	// WithTransaction runs fn inside one transaction. The transaction commits
	// when fn returns nil and rolls back entirely otherwise.
	WithTransaction(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the set of reads and writes available inside a transaction.
type Tx interface {
	GetStation(ctx context.Context, id int64) (models.Station, error)
	ListStations(ctx context.Context) ([]models.Station, error)
	ListShifts(ctx context.Context) ([]models.Shift, error)
	GetShift(ctx context.Context, id int64) (models.Shift, error)
	GetFabric(ctx context.Context, id int64) (models.Fabric, error)

	// LockStationState reads the state row and holds it for the rest of the
	// transaction so concurrent writers on the same station serialize.
	LockStationState(ctx context.Context, stationID int64) (models.StationState, error)
	GetStationState(ctx context.Context, stationID int64) (models.StationState, error)
	SaveStationState(ctx context.Context, state models.StationState) error

	// FindOpenLog returns the newest OPEN log for (station, shift) or ErrNotFound.
	FindOpenLog(ctx context.Context, stationID, shiftID int64) (models.ShiftLog, error)
	// InsertShiftLog stores a new log and sets its ID. A second OPEN log for
	// the same (station, shift) yields ErrDuplicate.
	InsertShiftLog(ctx context.Context, log *models.ShiftLog) error
	UpdateShiftLog(ctx context.Context, log models.ShiftLog) error
	ListClosedLogs(ctx context.Context, date string) ([]models.ClosedLogRow, error)

	// DeactivateQueueEntry switches off the active entries of fabricID at the station.
	DeactivateQueueEntry(ctx context.Context, stationID, fabricID int64) error
	// NextQueueEntry returns the lowest-ordered active entry or ErrNotFound.
	NextQueueEntry(ctx context.Context, stationID int64) (models.QueueEntry, error)
	ListQueue(ctx context.Context, stationID int64) ([]models.QueueEntry, error)

	// FindAssignment returns the active assignment for (station, shift) or ErrNotFound.
	FindAssignment(ctx context.Context, stationID, shiftID int64) (models.Assignment, error)
	// UpsertAssignment updates and re-activates the (station, shift) row, inserting it when missing.
	UpsertAssignment(ctx context.Context, stationID, shiftID int64, name string) error

	// ListStationOverview joins every station with its state, fabric and the
	// active assignment for shiftID, ordered by station code.
	ListStationOverview(ctx context.Context, shiftID int64) ([]models.StationOverview, error)

	FindUserByUsername(ctx context.Context, username string) (models.User, error)
}
