package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"gorm.io/gorm"

	"github.com/tair/stock-keeper/internal/inventory/domain"
	"github.com/tair/stock-keeper/pkg/database"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewGormConnection(database.Config{
		Driver: database.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "inventory.db"),
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestCreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewGormItemRepository(newTestDB(t))

	item := &domain.Item{Name: "Widget", Quantity: 5}
	require.NoError(t, repo.Create(ctx, item))
	assert.NotZero(t, item.ID)

	found, err := repo.FindByName(ctx, "Widget")
	require.NoError(t, err)
	assert.Equal(t, item.ID, found.ID)
	assert.Equal(t, 5, found.Quantity)

	_, err = repo.FindByName(ctx, "Ghost")
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestCreateDuplicateName(t *testing.T) {
	ctx := context.Background()
	repo := NewGormItemRepository(newTestDB(t))

	require.NoError(t, repo.Create(ctx, &domain.Item{Name: "Dup", Quantity: 2}))
	err := repo.Create(ctx, &domain.Item{Name: "Dup", Quantity: 9})
	require.Error(t, err)

	found, err := repo.FindByName(ctx, "Dup")
	require.NoError(t, err)
	assert.Equal(t, 2, found.Quantity)
}

func TestFindAllStorageOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewGormItemRepository(newTestDB(t))

	items, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NotNil(t, items)

	for _, name := range []string{"b", "a", "c"} {
		require.NoError(t, repo.Create(ctx, &domain.Item{Name: name, Quantity: 1}))
	}

	items, err = repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "b", items[0].Name)
	assert.Equal(t, "a", items[1].Name)
	assert.Equal(t, "c", items[2].Name)
}

func TestUpdateQuantityAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewGormItemRepository(newTestDB(t))

	item := &domain.Item{Name: "Widget", Quantity: 5}
	require.NoError(t, repo.Create(ctx, item))

	require.NoError(t, repo.UpdateQuantity(ctx, item.ID, 7))
	found, err := repo.FindByName(ctx, "Widget")
	require.NoError(t, err)
	assert.Equal(t, 7, found.Quantity)

	require.NoError(t, repo.Delete(ctx, item.ID))
	assert.ErrorIs(t, repo.Delete(ctx, item.ID), domain.ErrItemNotFound)

	_, err = repo.FindByName(ctx, "Widget")
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestSurrogateIDNotReused(t *testing.T) {
	ctx := context.Background()
	repo := NewGormItemRepository(newTestDB(t))

	first := &domain.Item{Name: "Widget", Quantity: 1}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Delete(ctx, first.ID))

	second := &domain.Item{Name: "Widget", Quantity: 1}
	require.NoError(t, repo.Create(ctx, second))
	assert.Greater(t, second.ID, first.ID)
}

func TestTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := NewGormItemRepository(newTestDB(t))
	boom := errors.New("boom")

	err := repo.Transaction(ctx, func(tx domain.ItemRepository) error {
		if err := tx.Create(ctx, &domain.Item{Name: "Temp", Quantity: 1}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = repo.FindByName(ctx, "Temp")
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestTracingRepositoryRecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	ctx := context.Background()
	repo := NewTracingItemRepository(NewGormItemRepository(newTestDB(t)))

	err := repo.Transaction(ctx, func(tx domain.ItemRepository) error {
		return tx.Create(ctx, &domain.Item{Name: "Widget", Quantity: 1})
	})
	require.NoError(t, err)
	_, err = repo.FindByName(ctx, "Ghost")
	require.ErrorIs(t, err, domain.ErrItemNotFound)

	var names []string
	for _, span := range recorder.Ended() {
		names = append(names, span.Name())
	}
	assert.Contains(t, names, "repository.Transaction")
	assert.Contains(t, names, "repository.Create")
	assert.Contains(t, names, "repository.FindByName")
}

func TestNegativeQuantityRejectedByStorage(t *testing.T) {
	ctx := context.Background()
	repo := NewGormItemRepository(newTestDB(t))

	item := &domain.Item{Name: "Widget", Quantity: 1}
	require.NoError(t, repo.Create(ctx, item))

	assert.Error(t, repo.UpdateQuantity(ctx, item.ID, -1))
	assert.Error(t, repo.Create(ctx, &domain.Item{Name: "Gadget", Quantity: -1}))

	found, err := repo.FindByName(ctx, "Widget")
	require.NoError(t, err)
	assert.Equal(t, 1, found.Quantity)
}
