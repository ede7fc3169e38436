package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/mamadbah2/turnos/internal/domain/models"
	"github.com/mamadbah2/turnos/internal/repository"
)

// partialIndexes back the invariants gorm tags cannot express: one OPEN log
// per (station, shift) and one active queue entry per (station, fabric).
var partialIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_shift_logs_open
		ON shift_logs (station_id, shift_id) WHERE status = 'OPEN'`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_station_queue_active
		ON station_queue (station_id, fabric_id) WHERE active`,
}

// Migrate creates or updates the schema.
func (s *Store) Migrate(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	if err := db.AutoMigrate(
		&models.Station{},
		&models.Shift{},
		&models.Fabric{},
		&models.User{},
		&models.QueueEntry{},
		&models.StationState{},
		&models.Assignment{},
		&models.ShiftLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	for _, stmt := range partialIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}

	s.logger.Info("schema migrated")
	return nil
}

// IsEmpty reports whether no station exists yet.
func (s *Store) IsEmpty(ctx context.Context) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Station{}).Count(&n).Error; err != nil {
		return false, translate(err)
	}
	return n == 0, nil
}

// SeedSamplePlant loads the sample plant in a single transaction, so a failed
// run leaves the database empty and can simply be repeated.
func (s *Store) SeedSamplePlant(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return repository.SeedSamplePlant(ctx, inserter{db: db})
	})
}
