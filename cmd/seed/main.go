// Command seed creates the schema and loads the sample plant into an empty database.
package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/turnos/internal/config"
	"github.com/mamadbah2/turnos/internal/repository/postgres"
	"github.com/mamadbah2/turnos/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	log := logger.Named(logger.Must(logger.New(cfg.Server.LogLevel)), "seed")
	defer func() { _ = log.Sync() }()

	if cfg.Database.InMemory() {
		log.Fatal("DATABASE_DSN points to the in-memory store, which seeds itself on start")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store, err := postgres.Open(cfg.Database.DSN, log)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(ctx); err != nil {
		log.Fatal("failed to migrate schema", zap.Error(err))
	}

	empty, err := store.IsEmpty(ctx)
	if err != nil {
		log.Fatal("failed to inspect database", zap.Error(err))
	}
	if !empty {
		log.Info("stations already present, skipping sample data")
		return
	}

	if err := store.SeedSamplePlant(ctx); err != nil {
		log.Fatal("failed to seed sample plant", zap.Error(err))
	}
	log.Info("sample plant loaded",
		zap.Strings("stations", []string{"#1", "#6", "#8"}),
		zap.Strings("users", []string{"super1", "super2", "super3", "gerente", "sistemas"}))
}
