package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/stock-keeper/internal/inventory/domain"
	"github.com/tair/stock-keeper/pkg/database"
)

func TestRunCreatesSchema(t *testing.T) {
	cfg := database.Config{Driver: database.DriverSQLite, Path: filepath.Join(t.TempDir(), "inventory.db")}

	require.NoError(t, run(cfg))
	// Second run is a no-op.
	require.NoError(t, run(cfg))

	db, err := database.NewGormConnection(cfg)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	assert.True(t, db.Migrator().HasTable(&domain.Item{}))
}

func TestRunReportsFailure(t *testing.T) {
	err := run(database.Config{Driver: "oracle"})
	assert.ErrorContains(t, err, "failed to connect to database")
}
