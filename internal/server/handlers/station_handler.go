package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/turnos/internal/server/middleware"
	"github.com/mamadbah2/turnos/internal/service/shifts"
	"github.com/mamadbah2/turnos/internal/service/stations"
)

// ShiftEngine opens and closes shift logs.
type ShiftEngine interface {
	StartShift(ctx context.Context, req shifts.StartRequest) (int64, error)
	EndShift(ctx context.Context, req shifts.EndRequest) (shifts.EndResult, error)
}

// StationService serves the dashboard and the assignment registry.
type StationService interface {
	Overview(ctx context.Context) (stations.Overview, error)
	Detail(ctx context.Context, stationID int64) (stations.Detail, error)
	SetAssignment(ctx context.Context, stationID, shiftID int64, name string) error
}

// StationHandler exposes station operations over HTTP.
type StationHandler struct {
	engine   ShiftEngine
	stations StationService
	logger   *zap.Logger
}

// NewStationHandler constructs the station HTTP handler.
func NewStationHandler(engine ShiftEngine, stationSvc StationService, logger *zap.Logger) *StationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StationHandler{engine: engine, stations: stationSvc, logger: logger}
}

type startRequest struct {
	Ayudante  string `json:"ayudante_nombre"`
	FabricID  *int64 `json:"fabric_id"`
	Encargado string `json:"encargado_nombre"`
}

type endRequest struct {
	UnitEnd  *float64 `json:"unit_end"`
	Ayudante string   `json:"ayudante_nombre"`
	Notes    string   `json:"notes"`
}

type assignmentRequest struct {
	ShiftID   int64  `json:"shift_id"`
	Encargado string `json:"encargado_nombre"`
}

// List returns the current shift and the dashboard rows.
func (h *StationHandler) List(c *gin.Context) {
	ov, err := h.stations.Overview(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ov)
}

// Get returns the snapshot of one station.
func (h *StationHandler) Get(c *gin.Context) {
	id, ok := stationID(c)
	if !ok {
		return
	}

	d, err := h.stations.Detail(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// Start opens a shift log at the station.
func (h *StationHandler) Start(c *gin.Context) {
	id, ok := stationID(c)
	if !ok {
		return
	}

	var req startRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	identity, _ := middleware.IdentityFrom(c)
	logID, err := h.engine.StartShift(c.Request.Context(), shifts.StartRequest{
		StationID:   id,
		RequesterID: identity.UserID,
		Ayudante:    req.Ayudante,
		FabricID:    req.FabricID,
		Encargado:   req.Encargado,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "log_id": logID})
}

// End closes the open shift log at the station.
func (h *StationHandler) End(c *gin.Context) {
	id, ok := stationID(c)
	if !ok {
		return
	}

	var req endRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if req.UnitEnd == nil {
		badRequest(c, "unit_end is required")
		return
	}

	res, err := h.engine.EndShift(c.Request.Context(), shifts.EndRequest{
		StationID: id,
		UnitEnd:   *req.UnitEnd,
		Ayudante:  req.Ayudante,
		Notes:     req.Notes,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":           true,
		"log_id":       res.LogID,
		"completed":    res.Completed,
		"nextFabricId": res.NextFabricID,
		"nextUnit":     res.NextUnit,
	})
}

// SetAssignment names the person responsible for the station in a shift.
func (h *StationHandler) SetAssignment(c *gin.Context) {
	id, ok := stationID(c)
	if !ok {
		return
	}

	var req assignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	if err := h.stations.SetAssignment(c.Request.Context(), id, req.ShiftID, req.Encargado); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func stationID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid station id")
		return 0, false
	}
	return id, true
}

// bindOptionalJSON decodes the body when one was sent. An empty body, with or
// without a Content-Length, leaves dst untouched.
func bindOptionalJSON(c *gin.Context, dst any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return true
		}
		badRequest(c, "invalid request body")
		return false
	}
	return true
}
