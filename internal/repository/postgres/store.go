// Package postgres implements the plant store on PostgreSQL through gorm.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mamadbah2/turnos/internal/domain/models"
	"github.com/mamadbah2/turnos/internal/repository"
)

// Store is a repository.Store backed by PostgreSQL.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

var _ repository.Store = (*Store)(nil)

// Open connects to the database described by dsn.
func Open(dsn string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxIdleTime(time.Minute)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)

	logger.Info("connected to postgres")
	return &Store{db: db, logger: logger}, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// WithTransaction runs fn inside a database transaction.
func (s *Store) WithTransaction(ctx context.Context, fn func(tx repository.Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(&pgTx{db: db})
	})
}

// Insert creates a seed row from a pointer to a model value.
func (s *Store) Insert(ctx context.Context, value any) error {
	return inserter{db: s.db}.Insert(ctx, value)
}

type inserter struct {
	db *gorm.DB
}

func (i inserter) Insert(ctx context.Context, value any) error {
	return translate(i.db.WithContext(ctx).Create(value).Error)
}

type pgTx struct {
	db *gorm.DB
}

func (t *pgTx) q(ctx context.Context) *gorm.DB {
	return t.db.WithContext(ctx)
}

func (t *pgTx) GetStation(ctx context.Context, id int64) (models.Station, error) {
	var st models.Station
	err := t.q(ctx).First(&st, id).Error
	return st, translate(err)
}

func (t *pgTx) ListStations(ctx context.Context) ([]models.Station, error) {
	var out []models.Station
	err := t.q(ctx).Order("code ASC").Find(&out).Error
	return out, translate(err)
}

func (t *pgTx) ListShifts(ctx context.Context) ([]models.Shift, error) {
	var out []models.Shift
	err := t.q(ctx).Order("id ASC").Find(&out).Error
	return out, translate(err)
}

func (t *pgTx) GetShift(ctx context.Context, id int64) (models.Shift, error) {
	var sh models.Shift
	err := t.q(ctx).First(&sh, id).Error
	return sh, translate(err)
}

func (t *pgTx) GetFabric(ctx context.Context, id int64) (models.Fabric, error) {
	var f models.Fabric
	err := t.q(ctx).First(&f, id).Error
	return f, translate(err)
}

func (t *pgTx) LockStationState(ctx context.Context, stationID int64) (models.StationState, error) {
	var st models.StationState
	err := t.q(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("station_id = ?", stationID).
		Take(&st).Error
	return st, translate(err)
}

func (t *pgTx) GetStationState(ctx context.Context, stationID int64) (models.StationState, error) {
	var st models.StationState
	err := t.q(ctx).Where("station_id = ?", stationID).Take(&st).Error
	return st, translate(err)
}

func (t *pgTx) SaveStationState(ctx context.Context, state models.StationState) error {
	err := t.q(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "station_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"current_fabric_id", "next_unit", "updated_at"}),
	}).Create(&state).Error
	return translate(err)
}

func (t *pgTx) FindOpenLog(ctx context.Context, stationID, shiftID int64) (models.ShiftLog, error) {
	var l models.ShiftLog
	err := t.q(ctx).
		Where("station_id = ? AND shift_id = ? AND status = ?", stationID, shiftID, models.LogOpen).
		Order("id DESC").
		Take(&l).Error
	return l, translate(err)
}

func (t *pgTx) InsertShiftLog(ctx context.Context, log *models.ShiftLog) error {
	return translate(t.q(ctx).Create(log).Error)
}

func (t *pgTx) UpdateShiftLog(ctx context.Context, log models.ShiftLog) error {
	res := t.q(ctx).Model(&models.ShiftLog{ID: log.ID}).Select("*").Omit("id").Updates(&log)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("shift log %d: %w", log.ID, repository.ErrNotFound)
	}
	return nil
}

type closedLogRow struct {
	models.ShiftLog
	StationCode string
	ShiftName   string
	FabricCode  string
	FabricTotal int
}

func (t *pgTx) ListClosedLogs(ctx context.Context, date string) ([]models.ClosedLogRow, error) {
	var rows []closedLogRow
	err := t.q(ctx).
		Table("shift_logs AS l").
		Select("l.*, s.code AS station_code, sh.name AS shift_name, f.code AS fabric_code, f.total_units AS fabric_total").
		Joins("JOIN stations s ON s.id = l.station_id").
		Joins("JOIN shifts sh ON sh.id = l.shift_id").
		Joins("JOIN fabrics f ON f.id = l.fabric_id").
		Where("l.status = ? AND l.date = ?", models.LogClosed, date).
		Order("l.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}

	out := make([]models.ClosedLogRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.ClosedLogRow{
			Log:         r.ShiftLog,
			StationCode: r.StationCode,
			ShiftName:   r.ShiftName,
			FabricCode:  r.FabricCode,
			FabricTotal: r.FabricTotal,
		})
	}
	return out, nil
}

func (t *pgTx) DeactivateQueueEntry(ctx context.Context, stationID, fabricID int64) error {
	err := t.q(ctx).Model(&models.QueueEntry{}).
		Where("station_id = ? AND fabric_id = ? AND active", stationID, fabricID).
		Update("active", false).Error
	return translate(err)
}

func (t *pgTx) NextQueueEntry(ctx context.Context, stationID int64) (models.QueueEntry, error) {
	var q models.QueueEntry
	err := t.q(ctx).
		Where("station_id = ? AND active", stationID).
		Order("position ASC, id ASC").
		Take(&q).Error
	return q, translate(err)
}

func (t *pgTx) ListQueue(ctx context.Context, stationID int64) ([]models.QueueEntry, error) {
	out := []models.QueueEntry{}
	err := t.q(ctx).
		Where("station_id = ?", stationID).
		Order("position ASC, id ASC").
		Find(&out).Error
	return out, translate(err)
}

func (t *pgTx) FindAssignment(ctx context.Context, stationID, shiftID int64) (models.Assignment, error) {
	var a models.Assignment
	err := t.q(ctx).
		Where("station_id = ? AND shift_id = ? AND active", stationID, shiftID).
		Take(&a).Error
	return a, translate(err)
}

func (t *pgTx) UpsertAssignment(ctx context.Context, stationID, shiftID int64, name string) error {
	a := models.Assignment{StationID: stationID, ShiftID: shiftID, EncargadoName: name, Active: true}
	err := t.q(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "station_id"}, {Name: "shift_id"}},
		DoUpdates: clause.Assignments(map[string]any{"encargado_name": name, "active": true}),
	}).Create(&a).Error
	return translate(err)
}

func (t *pgTx) ListStationOverview(ctx context.Context, shiftID int64) ([]models.StationOverview, error) {
	var out []models.StationOverview
	err := t.q(ctx).
		Table("stations AS s").
		Select(`s.id AS station_id, s.code AS station_code,
			st.current_fabric_id, COALESCE(st.next_unit, 0) AS next_unit,
			f.code AS fabric_code, f.total_units AS fabric_total,
			a.encargado_name`).
		Joins("LEFT JOIN station_state st ON st.station_id = s.id").
		Joins("LEFT JOIN fabrics f ON f.id = st.current_fabric_id").
		Joins("LEFT JOIN station_shift_assignments a ON a.station_id = s.id AND a.shift_id = ? AND a.active", shiftID).
		Order("s.code ASC").
		Scan(&out).Error
	return out, translate(err)
}

func (t *pgTx) FindUserByUsername(ctx context.Context, username string) (models.User, error) {
	var u models.User
	err := t.q(ctx).Where("username = ?", username).Take(&u).Error
	return u, translate(err)
}

// translate maps gorm errors onto the repository sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repository.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", repository.ErrDuplicate, err)
	default:
		return err
	}
}
