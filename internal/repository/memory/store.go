// Package memory implements the plant store in process memory. Transactions
// are serialized and work on a private copy that replaces the committed data
// only when the callback succeeds.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mamadbah2/turnos/internal/domain/models"
	"github.com/mamadbah2/turnos/internal/repository"
)

type data struct {
	stations    map[int64]models.Station
	shifts      map[int64]models.Shift
	fabrics     map[int64]models.Fabric
	states      map[int64]models.StationState
	logs        map[int64]models.ShiftLog
	queue       map[int64]models.QueueEntry
	assignments map[int64]models.Assignment
	users       map[int64]models.User
	lastID      int64
}

func newData() *data {
	return &data{
		stations:    map[int64]models.Station{},
		shifts:      map[int64]models.Shift{},
		fabrics:     map[int64]models.Fabric{},
		states:      map[int64]models.StationState{},
		logs:        map[int64]models.ShiftLog{},
		queue:       map[int64]models.QueueEntry{},
		assignments: map[int64]models.Assignment{},
		users:       map[int64]models.User{},
	}
}

func (d *data) clone() *data {
	c := newData()
	c.lastID = d.lastID
	for k, v := range d.stations {
		c.stations[k] = v
	}
	for k, v := range d.shifts {
		c.shifts[k] = v
	}
	for k, v := range d.fabrics {
		c.fabrics[k] = v
	}
	for k, v := range d.states {
		c.states[k] = cloneState(v)
	}
	for k, v := range d.logs {
		c.logs[k] = cloneLog(v)
	}
	for k, v := range d.queue {
		c.queue[k] = v
	}
	for k, v := range d.assignments {
		c.assignments[k] = v
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	return c
}

func (d *data) nextID() int64 {
	d.lastID++
	return d.lastID
}

// Store is an in-memory repository.Store.
type Store struct {
	mu   sync.Mutex
	data *data
	now  func() time.Time
}

var _ repository.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{data: newData(), now: time.Now}
}

// WithTransaction runs fn against a private copy of the data and publishes
// the copy when fn succeeds.
func (s *Store) WithTransaction(ctx context.Context, fn func(tx repository.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{d: s.data.clone(), now: s.now}
	if err := fn(tx); err != nil {
		return err
	}
	s.data = tx.d
	return nil
}

// Insert stores seed rows. Supported values are pointers to the model types;
// their ID is assigned.
func (s *Store) Insert(ctx context.Context, value any) error {
	return s.WithTransaction(ctx, func(tx repository.Tx) error {
		return tx.(*memTx).insert(value)
	})
}

type memTx struct {
	d   *data
	now func() time.Time
}

func (t *memTx) insert(value any) error {
	d := t.d
	switch v := value.(type) {
	case *models.Station:
		v.ID = d.nextID()
		d.stations[v.ID] = *v
	case *models.Shift:
		v.ID = d.nextID()
		d.shifts[v.ID] = *v
	case *models.Fabric:
		for _, f := range d.fabrics {
			if f.Code == v.Code {
				return fmt.Errorf("fabric %s: %w", v.Code, repository.ErrDuplicate)
			}
		}
		v.ID = d.nextID()
		d.fabrics[v.ID] = *v
	case *models.User:
		v.ID = d.nextID()
		d.users[v.ID] = *v
	case *models.QueueEntry:
		if v.Active {
			for _, q := range d.queue {
				if q.Active && q.StationID == v.StationID && q.FabricID == v.FabricID {
					return fmt.Errorf("queue entry station=%d fabric=%d: %w", v.StationID, v.FabricID, repository.ErrDuplicate)
				}
			}
		}
		v.ID = d.nextID()
		d.queue[v.ID] = *v
	case *models.Assignment:
		v.ID = d.nextID()
		d.assignments[v.ID] = *v
	case *models.StationState:
		d.states[v.StationID] = cloneState(*v)
	default:
		return fmt.Errorf("memory store cannot insert %T", value)
	}
	return nil
}

func (t *memTx) GetStation(_ context.Context, id int64) (models.Station, error) {
	st, ok := t.d.stations[id]
	if !ok {
		return models.Station{}, repository.ErrNotFound
	}
	return st, nil
}

func (t *memTx) ListStations(_ context.Context) ([]models.Station, error) {
	out := make([]models.Station, 0, len(t.d.stations))
	for _, st := range t.d.stations {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (t *memTx) ListShifts(_ context.Context) ([]models.Shift, error) {
	out := make([]models.Shift, 0, len(t.d.shifts))
	for _, sh := range t.d.shifts {
		out = append(out, sh)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *memTx) GetShift(_ context.Context, id int64) (models.Shift, error) {
	sh, ok := t.d.shifts[id]
	if !ok {
		return models.Shift{}, repository.ErrNotFound
	}
	return sh, nil
}

func (t *memTx) GetFabric(_ context.Context, id int64) (models.Fabric, error) {
	f, ok := t.d.fabrics[id]
	if !ok {
		return models.Fabric{}, repository.ErrNotFound
	}
	return f, nil
}

func (t *memTx) LockStationState(ctx context.Context, stationID int64) (models.StationState, error) {
	return t.GetStationState(ctx, stationID)
}

func (t *memTx) GetStationState(_ context.Context, stationID int64) (models.StationState, error) {
	st, ok := t.d.states[stationID]
	if !ok {
		return models.StationState{}, repository.ErrNotFound
	}
	return cloneState(st), nil
}

func (t *memTx) SaveStationState(_ context.Context, state models.StationState) error {
	if _, ok := t.d.stations[state.StationID]; !ok {
		return fmt.Errorf("station %d: %w", state.StationID, repository.ErrNotFound)
	}
	if state.UpdatedAt.IsZero() {
		state.UpdatedAt = t.now()
	}
	t.d.states[state.StationID] = cloneState(state)
	return nil
}

func (t *memTx) FindOpenLog(_ context.Context, stationID, shiftID int64) (models.ShiftLog, error) {
	var found *models.ShiftLog
	for _, l := range t.d.logs {
		if l.StationID != stationID || l.ShiftID != shiftID || !l.IsOpen() {
			continue
		}
		if found == nil || l.ID > found.ID {
			found = &l
		}
	}
	if found == nil {
		return models.ShiftLog{}, repository.ErrNotFound
	}
	return cloneLog(*found), nil
}

func (t *memTx) InsertShiftLog(_ context.Context, log *models.ShiftLog) error {
	if log.IsOpen() {
		for _, l := range t.d.logs {
			if l.IsOpen() && l.StationID == log.StationID && l.ShiftID == log.ShiftID {
				return fmt.Errorf("open log station=%d shift=%d: %w", log.StationID, log.ShiftID, repository.ErrDuplicate)
			}
		}
	}
	log.ID = t.d.nextID()
	t.d.logs[log.ID] = cloneLog(*log)
	return nil
}

func (t *memTx) UpdateShiftLog(_ context.Context, log models.ShiftLog) error {
	if _, ok := t.d.logs[log.ID]; !ok {
		return fmt.Errorf("shift log %d: %w", log.ID, repository.ErrNotFound)
	}
	t.d.logs[log.ID] = cloneLog(log)
	return nil
}

func (t *memTx) ListClosedLogs(_ context.Context, date string) ([]models.ClosedLogRow, error) {
	out := []models.ClosedLogRow{}
	for _, l := range t.d.logs {
		if l.Status != models.LogClosed || l.Date != date {
			continue
		}
		fabric := t.d.fabrics[l.FabricID]
		out = append(out, models.ClosedLogRow{
			Log:         cloneLog(l),
			StationCode: t.d.stations[l.StationID].Code,
			ShiftName:   t.d.shifts[l.ShiftID].Name,
			FabricCode:  fabric.Code,
			FabricTotal: fabric.TotalUnits,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Log.ID < out[j].Log.ID })
	return out, nil
}

func (t *memTx) DeactivateQueueEntry(_ context.Context, stationID, fabricID int64) error {
	for id, q := range t.d.queue {
		if q.StationID == stationID && q.FabricID == fabricID && q.Active {
			q.Active = false
			t.d.queue[id] = q
		}
	}
	return nil
}

func (t *memTx) NextQueueEntry(ctx context.Context, stationID int64) (models.QueueEntry, error) {
	entries, _ := t.ListQueue(ctx, stationID)
	for _, q := range entries {
		if q.Active {
			return q, nil
		}
	}
	return models.QueueEntry{}, repository.ErrNotFound
}

func (t *memTx) ListQueue(_ context.Context, stationID int64) ([]models.QueueEntry, error) {
	out := []models.QueueEntry{}
	for _, q := range t.d.queue {
		if q.StationID == stationID {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (t *memTx) FindAssignment(_ context.Context, stationID, shiftID int64) (models.Assignment, error) {
	for _, a := range t.d.assignments {
		if a.StationID == stationID && a.ShiftID == shiftID && a.Active {
			return a, nil
		}
	}
	return models.Assignment{}, repository.ErrNotFound
}

func (t *memTx) UpsertAssignment(_ context.Context, stationID, shiftID int64, name string) error {
	for id, a := range t.d.assignments {
		if a.StationID == stationID && a.ShiftID == shiftID {
			a.EncargadoName = name
			a.Active = true
			t.d.assignments[id] = a
			return nil
		}
	}
	id := t.d.nextID()
	t.d.assignments[id] = models.Assignment{ID: id, StationID: stationID, ShiftID: shiftID, EncargadoName: name, Active: true}
	return nil
}

func (t *memTx) ListStationOverview(ctx context.Context, shiftID int64) ([]models.StationOverview, error) {
	stations, _ := t.ListStations(ctx)
	out := make([]models.StationOverview, 0, len(stations))
	for _, st := range stations {
		row := models.StationOverview{StationID: st.ID, StationCode: st.Code}
		if state, ok := t.d.states[st.ID]; ok {
			row.NextUnit = state.NextUnit
			if state.CurrentFabricID != nil {
				id := *state.CurrentFabricID
				row.CurrentFabricID = &id
				if f, ok := t.d.fabrics[id]; ok {
					code, total := f.Code, f.TotalUnits
					row.FabricCode, row.FabricTotal = &code, &total
				}
			}
		}
		if a, err := t.FindAssignment(ctx, st.ID, shiftID); err == nil {
			name := a.EncargadoName
			row.EncargadoName = &name
		}
		out = append(out, row)
	}
	return out, nil
}

func (t *memTx) FindUserByUsername(_ context.Context, username string) (models.User, error) {
	for _, u := range t.d.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, repository.ErrNotFound
}

func cloneState(s models.StationState) models.StationState {
	if s.CurrentFabricID != nil {
		id := *s.CurrentFabricID
		s.CurrentFabricID = &id
	}
	return s
}

func cloneLog(l models.ShiftLog) models.ShiftLog {
	if l.AyudanteName != nil {
		v := *l.AyudanteName
		l.AyudanteName = &v
	}
	if l.UnitEnd != nil {
		v := *l.UnitEnd
		l.UnitEnd = &v
	}
	if l.ClosedAt != nil {
		v := *l.ClosedAt
		l.ClosedAt = &v
	}
	if l.Notes != nil {
		v := *l.Notes
		l.Notes = &v
	}
	return l
}
