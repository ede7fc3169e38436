package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ReportDeliverer produces and delivers the production report of a plant date.
type ReportDeliverer interface {
	Deliver(ctx context.Context, date string) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	reports  ReportDeliverer
	schedule string
	loc      *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// NewScheduler creates a scheduler whose cron expressions are read in the plant timezone.
func NewScheduler(schedule string, loc *time.Location, reports ReportDeliverer, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		reports:  reports,
		schedule: schedule,
		loc:      loc,
		now:      time.Now,
		logger:   logger,
	}
}

// Start registers the daily report job and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("report_schedule", s.schedule))

	if _, err := s.cron.AddFunc(s.schedule, s.sendDailyReport); err != nil {
		return fmt.Errorf("schedule daily report %q: %w", s.schedule, err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// reportDate is the plant date before the current one.
func (s *Scheduler) reportDate() string {
	return s.now().In(s.loc).AddDate(0, 0, -1).Format("2006-01-02")
}

func (s *Scheduler) sendDailyReport() {
	date := s.reportDate()
	s.logger.Info("generating daily production report", zap.String("date", date))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.reports.Deliver(ctx, date); err != nil {
		s.logger.Error("daily production report incomplete", zap.String("date", date), zap.Error(err))
		return
	}
	s.logger.Info("daily production report sent", zap.String("date", date))
}
