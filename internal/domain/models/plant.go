package models

import "time"

// Station is a physical production point. Immutable after creation.
type Station struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Code      string    `json:"code" gorm:"size:32;not null;uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
}

// Fabric is a lot of cloth divided into TotalUnits units (fajas).
type Fabric struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Code        string    `json:"code" gorm:"size:64;not null;uniqueIndex"`
	Description string    `json:"description" gorm:"type:text"`
	TotalUnits  int       `json:"total_units" gorm:"not null;check:total_units > 0"`
	CreatedAt   time.Time `json:"created_at"`
}

// QueueEntry is one fabric waiting in, or currently worked at, a station's sequence.
type QueueEntry struct {
	ID        int64 `json:"id" gorm:"primaryKey"`
	StationID int64 `json:"station_id" gorm:"not null;index:idx_station_queue_order,priority:1"`
	FabricID  int64 `json:"fabric_id" gorm:"not null"`
	Order     int   `json:"order" gorm:"column:position;not null;index:idx_station_queue_order,priority:2"`
	Active    bool  `json:"active" gorm:"not null"`
}

// TableName pins the queue table name.
func (QueueEntry) TableName() string { return "station_queue" }

// StationState is the per-station pointer to the fabric being worked and the
// next unit to start. CurrentFabricID is nil once the queue is exhausted.
type StationState struct {
	StationID       int64     `json:"station_id" gorm:"primaryKey;autoIncrement:false"`
	CurrentFabricID *int64    `json:"current_fabric_id"`
	NextUnit        int       `json:"next_unit" gorm:"not null;default:1"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName pins the state table name.
func (StationState) TableName() string { return "station_state" }

// HasFabric reports whether a fabric is assigned.
func (s StationState) HasFabric() bool {
	return s.CurrentFabricID != nil
}

// Assignment names the person responsible for a station during a shift.
type Assignment struct {
	ID            int64  `json:"id" gorm:"primaryKey"`
	StationID     int64  `json:"station_id" gorm:"not null;uniqueIndex:idx_assignment_station_shift,priority:1"`
	ShiftID       int64  `json:"shift_id" gorm:"not null;uniqueIndex:idx_assignment_station_shift,priority:2"`
	EncargadoName string `json:"encargado_nombre" gorm:"size:128;not null"`
	Active        bool   `json:"active" gorm:"not null"`
}

// TableName pins the assignment table name.
func (Assignment) TableName() string { return "station_shift_assignments" }

// StationOverview is one dashboard row: a station joined with its state,
// current fabric and the assignment of a shift. Join misses leave nil fields.
type StationOverview struct {
	StationID       int64
	StationCode     string
	CurrentFabricID *int64
	NextUnit        int
	FabricCode      *string
	FabricTotal     *int
	EncargadoName   *string
}
