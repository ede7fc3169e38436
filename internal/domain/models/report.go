package models

import "time"

// StationProduction aggregates the closed logs of one station for a plant date.
type StationProduction struct {
	StationID     int64  `bson:"station_id" json:"station_id"`
	StationCode   string `bson:"station_code" json:"station_code"`
	LogsClosed    int    `bson:"logs_closed" json:"logs_closed"`
	UnitsProduced int    `bson:"units_produced" json:"units_produced"`
	LotsCompleted int    `bson:"lots_completed" json:"lots_completed"`
}

// ProductionReport represents the aggregated daily data archived in MongoDB.
type ProductionReport struct {
	Date              string              `bson:"date" json:"date"`
	Stations          []StationProduction `bson:"stations" json:"stations"`
	TotalUnits        int                 `bson:"total_units" json:"total_units"`
	ExhaustedStations []string            `bson:"exhausted_stations" json:"exhausted_stations"`
	CreatedAt         time.Time           `bson:"created_at" json:"created_at"`
}

// ClosedLogRow is a closed shift log joined with its display names, used by
// the report and the sheet export.
type ClosedLogRow struct {
	Log         ShiftLog
	StationCode string
	ShiftName   string
	FabricCode  string
	FabricTotal int
}
