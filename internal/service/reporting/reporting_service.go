package reporting

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/turnos/internal/domain/models"
	"github.com/mamadbah2/turnos/internal/repository"
)

const (
	dateLayout     = "2006-01-02"
	shiftLogsRange = "ShiftLogs!A:J"
)

// Archive stores finished production reports.
type Archive interface {
	SaveProductionReport(ctx context.Context, report models.ProductionReport) error
}

// SheetWriter appends rows to a spreadsheet range.
type SheetWriter interface {
	AppendRows(ctx context.Context, sheetRange string, rows [][]interface{}) error
}

// Messenger delivers a text message to a recipient.
type Messenger interface {
	SendText(ctx context.Context, to, body string) error
}

// Sinks are the optional destinations of a delivered report. Nil sinks are skipped.
type Sinks struct {
	Archive   Archive
	Sheet     SheetWriter
	Messenger Messenger
	Recipient string
}

// Service builds daily production summaries from closed shift logs.
type Service struct {
	store  repository.Store
	sinks  Sinks
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new reporting service instance.
func NewService(store repository.Store, sinks Sinks, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, sinks: sinks, logger: logger, now: time.Now}
}

// BuildDailyReport aggregates the logs closed on the plant date (YYYY-MM-DD)
// and lists the stations whose queue is exhausted.
func (s *Service) BuildDailyReport(ctx context.Context, date string) (models.ProductionReport, []models.ClosedLogRow, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return models.ProductionReport{}, nil, fmt.Errorf("%w: date must be YYYY-MM-DD", models.ErrInvalidArgument)
	}

	var (
		rows      []models.ClosedLogRow
		exhausted []string
	)
	err := s.store.WithTransaction(ctx, func(tx repository.Tx) error {
		var err error
		if rows, err = tx.ListClosedLogs(ctx, date); err != nil {
			return fmt.Errorf("list closed logs: %w", err)
		}

		stations, err := tx.ListStations(ctx)
		if err != nil {
			return fmt.Errorf("list stations: %w", err)
		}
		for _, st := range stations {
			state, err := tx.GetStationState(ctx, st.ID)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("load state of %s: %w", st.Code, err)
			}
			if !state.HasFabric() {
				exhausted = append(exhausted, st.Code)
			}
		}
		return nil
	})
	if err != nil {
		return models.ProductionReport{}, nil, err
	}

	byStation := map[int64]*models.StationProduction{}
	report := models.ProductionReport{Date: date, ExhaustedStations: exhausted, CreatedAt: s.now().UTC()}
	for _, r := range rows {
		agg, ok := byStation[r.Log.StationID]
		if !ok {
			agg = &models.StationProduction{StationID: r.Log.StationID, StationCode: r.StationCode}
			byStation[r.Log.StationID] = agg
		}
		units := r.Log.UnitsProduced()
		agg.LogsClosed++
		agg.UnitsProduced += units
		if r.Log.UnitEnd != nil && *r.Log.UnitEnd >= r.FabricTotal {
			agg.LotsCompleted++
		}
		report.TotalUnits += units
	}

	for _, agg := range byStation {
		report.Stations = append(report.Stations, *agg)
	}
	sort.Slice(report.Stations, func(i, j int) bool {
		return report.Stations[i].StationCode < report.Stations[j].StationCode
	})

	return report, rows, nil
}

// Deliver builds the report for date and hands it to every configured sink.
// A failing sink does not stop the others; their errors are joined.
func (s *Service) Deliver(ctx context.Context, date string) error {
	report, rows, err := s.BuildDailyReport(ctx, date)
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}

	var errs []error

	if s.sinks.Archive != nil {
		if err := s.sinks.Archive.SaveProductionReport(ctx, report); err != nil {
			s.logger.Error("failed to archive production report", zap.String("date", date), zap.Error(err))
			errs = append(errs, fmt.Errorf("archive: %w", err))
		}
	}

	if s.sinks.Sheet != nil && len(rows) > 0 {
		if err := s.sinks.Sheet.AppendRows(ctx, shiftLogsRange, sheetRows(rows)); err != nil {
			s.logger.Error("failed to export shift logs", zap.String("date", date), zap.Error(err))
			errs = append(errs, fmt.Errorf("sheet export: %w", err))
		}
	}

	if s.sinks.Messenger != nil && s.sinks.Recipient != "" {
		if err := s.sinks.Messenger.SendText(ctx, s.sinks.Recipient, FormatSummary(report)); err != nil {
			s.logger.Error("failed to send production summary", zap.String("date", date), zap.Error(err))
			errs = append(errs, fmt.Errorf("message: %w", err))
		}
	}

	s.logger.Info("production report delivered",
		zap.String("date", date),
		zap.Int("logs", len(rows)),
		zap.Int("units", report.TotalUnits),
		zap.Int("failed_sinks", len(errs)))

	return errors.Join(errs...)
}

// FormatSummary renders the report as a short text message.
func FormatSummary(r models.ProductionReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Production %s: %d units.", r.Date, r.TotalUnits)
	if len(r.Stations) == 0 {
		b.WriteString("\nNo shift logs closed.")
	}
	for _, st := range r.Stations {
		fmt.Fprintf(&b, "\n%s: %d units in %d logs", st.StationCode, st.UnitsProduced, st.LogsClosed)
		if st.LotsCompleted > 0 {
			fmt.Fprintf(&b, ", %d lots completed", st.LotsCompleted)
		}
	}
	if len(r.ExhaustedStations) > 0 {
		fmt.Fprintf(&b, "\nWaiting for fabric: %s", strings.Join(r.ExhaustedStations, ", "))
	}
	return b.String()
}

func sheetRows(rows []models.ClosedLogRow) [][]interface{} {
	out := make([][]interface{}, 0, len(rows))
	for _, r := range rows {
		unitEnd := 0
		if r.Log.UnitEnd != nil {
			unitEnd = *r.Log.UnitEnd
		}
		out = append(out, []interface{}{
			r.Log.Date,
			r.ShiftName,
			r.StationCode,
			r.FabricCode,
			r.Log.EncargadoName,
			deref(r.Log.AyudanteName),
			r.Log.UnitStart,
			unitEnd,
			r.Log.UnitsProduced(),
			deref(r.Log.Notes),
		})
	}
	return out
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
