package main

import (
	"context"

	"ahorra/internal/config"
	"ahorra/internal/db"
	"ahorra/internal/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	if !cfg.IsSQL() {
		logger.WithField("driver", cfg.StorageDriver).Fatal("migrations only apply to sql drivers")
	}
	database, err := db.Connect(cfg.StorageDriver, cfg.DatabaseURL)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect database")
	}
	defer database.Close()

	if err := db.Migrate(context.Background(), database, logger); err != nil {
		logger.WithError(err).Fatal("migration failed")
	}
	logger.WithField("driver", cfg.StorageDriver).Info("migrations applied")
}
