package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/turnos/internal/config"
	"github.com/mamadbah2/turnos/internal/repository"
	"github.com/mamadbah2/turnos/internal/repository/memory"
	"github.com/mamadbah2/turnos/internal/repository/mongodb"
	"github.com/mamadbah2/turnos/internal/repository/postgres"
	"github.com/mamadbah2/turnos/internal/repository/sheets"
	"github.com/mamadbah2/turnos/internal/scheduler"
	"github.com/mamadbah2/turnos/internal/server/handlers"
	"github.com/mamadbah2/turnos/internal/server/router"
	authsvc "github.com/mamadbah2/turnos/internal/service/auth"
	reportingsvc "github.com/mamadbah2/turnos/internal/service/reporting"
	shiftsvc "github.com/mamadbah2/turnos/internal/service/shifts"
	"github.com/mamadbah2/turnos/internal/service/shiftwindow"
	stationsvc "github.com/mamadbah2/turnos/internal/service/stations"
	whatsappclient "github.com/mamadbah2/turnos/pkg/clients/whatsapp"
	"github.com/mamadbah2/turnos/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	loc, err := cfg.Location()
	if err != nil {
		baseLogger.Fatal("invalid plant timezone", zap.Error(err))
	}

	ctx := context.Background()

	store, closeStore, err := openStore(ctx, cfg.Database, baseLogger)
	if err != nil {
		baseLogger.Fatal("failed to init plant store", zap.Error(err))
	}
	defer closeStore()

	resolver := shiftwindow.NewResolver(loc)
	shiftSvc := shiftsvc.NewService(store, resolver, baseLogger.Named("svc.shifts"))
	stationSvc := stationsvc.NewService(store, resolver, baseLogger.Named("svc.stations"))
	authSvc := authsvc.NewService(store, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, baseLogger.Named("svc.auth"))

	sinks := reportingsvc.Sinks{}

	if cfg.MongoDB.Enabled() {
		mongoRepo, err := mongodb.NewReportRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		sinks.Archive = mongoRepo
	} else {
		baseLogger.Warn("MONGODB_URI missing, production reports will not be archived")
	}

	if cfg.Sheets.Enabled() {
		exporter, err := sheets.NewExporter(ctx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets exporter", zap.Error(err))
		}
		sinks.Sheet = exporter
	}

	if cfg.WhatsApp.Enabled() {
		sinks.Messenger = whatsappclient.NewClient(cfg.WhatsApp)
		sinks.Recipient = cfg.WhatsApp.ReportRecipient
		baseLogger.Info("whatsapp report delivery enabled")
	}

	reportingSvc := reportingsvc.NewService(store, sinks, baseLogger.Named("svc.reporting"))

	sched := scheduler.NewScheduler(cfg.Reporting.CronSchedule, loc, reportingSvc, baseLogger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	// The memory store has nothing to ping.
	health, _ := store.(router.Pinger)

	engine := router.New(router.Deps{
		Auth:          handlers.NewAuthHandler(authSvc, baseLogger.Named("handlers.auth")),
		Stations:      handlers.NewStationHandler(shiftSvc, stationSvc, baseLogger.Named("handlers.stations")),
		Verifier:      authSvc,
		ElevatedRoles: cfg.Auth.ElevatedRoles,
		Health:        health,
	}, baseLogger.Named("router"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-sigCtx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// openStore returns the postgres store, or the seeded memory store when
// DATABASE_DSN is "memory".
func openStore(ctx context.Context, cfg config.DatabaseConfig, base *zap.Logger) (repository.Store, func(), error) {
	if cfg.InMemory() {
		log := base.Named("repo.memory")
		store := memory.New()
		if err := repository.SeedSamplePlant(ctx, store); err != nil {
			return nil, nil, err
		}
		log.Warn("using in-memory store with the sample plant, data is lost on exit")
		return store, func() {}, nil
	}

	log := base.Named("repo.postgres")
	store, err := postgres.Open(cfg.DSN, log)
	if err != nil {
		return nil, nil, err
	}
	if cfg.AutoMigrate {
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, nil, err
		}
	}
	return store, func() {
		if err := store.Close(); err != nil {
			log.Error("failed to close postgres connection", zap.Error(err))
		}
	}, nil
}
