package models

import "time"

// LogStatus is the lifecycle state of a ShiftLog.
type LogStatus string

const (
	LogOpen   LogStatus = "OPEN"
	LogClosed LogStatus = "CLOSED"
)

// Unassigned is the operator name used when nobody is assigned to a station/shift.
const Unassigned = "UNASSIGNED"

// ShiftLog records one work session of a station within a shift.
type ShiftLog struct {
	ID            int64      `json:"id" gorm:"primaryKey"`
	Date          string     `json:"date" gorm:"size:10;not null;index"` // YYYY-MM-DD, plant-local
	ShiftID       int64      `json:"shift_id" gorm:"not null;index:idx_shift_logs_station_shift,priority:2"`
	StationID     int64      `json:"station_id" gorm:"not null;index:idx_shift_logs_station_shift,priority:1"`
	EncargadoName string     `json:"encargado_nombre" gorm:"size:128;not null"`
	AyudanteName  *string    `json:"ayudante_nombre"`
	FabricID      int64      `json:"fabric_id" gorm:"not null"`
	UnitStart     int        `json:"unit_start" gorm:"not null"`
	UnitEnd       *int       `json:"unit_end"`
	Status        LogStatus  `json:"status" gorm:"size:10;not null"`
	OpenedAt      time.Time  `json:"opened_at" gorm:"not null"`
	ClosedAt      *time.Time `json:"closed_at"`
	Notes         *string    `json:"notes" gorm:"type:text"`
	CreatedBy     int64      `json:"created_by_user_id" gorm:"column:created_by_user_id;not null"`
}

// IsOpen reports whether the log still awaits its end unit.
func (l ShiftLog) IsOpen() bool {
	return l.Status == LogOpen
}

// UnitsProduced is the inclusive span of units a closed log covers.
func (l ShiftLog) UnitsProduced() int {
	if l.UnitEnd == nil {
		return 0
	}
	return *l.UnitEnd - l.UnitStart + 1
}
