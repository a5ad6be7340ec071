package main

import (
	"fmt"
	"os"

	"github.com/tair/stock-keeper/internal/inventory/repository"
	"github.com/tair/stock-keeper/pkg/config"
	"github.com/tair/stock-keeper/pkg/database"
	"github.com/tair/stock-keeper/pkg/logger"
)

// setup-db creates the inventory schema and exits. Running it again is a no-op.
// Any failure exits non-zero so provisioning scripts can detect it.
func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		logger.Init("inventory-setup-db", true)
		logger.Logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Init(cfg.Service.Name+"-setup-db", cfg.Service.IsDevelopment())
	logger.SetLevel(cfg.Service.LogLevel)

	if err := run(cfg.Database); err != nil {
		logger.Logger.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("Failed to create inventory schema")
	}

	logger.Logger.Info().
		Str("driver", cfg.Database.Driver).
		Str("table", "inventory").
		Msg("Database initialized successfully")
}

func run(cfg database.Config) error {
	// Connect to database
	db, err := database.NewGormConnection(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	defer sqlDB.Close()

	// Run migrations
	if err := repository.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
