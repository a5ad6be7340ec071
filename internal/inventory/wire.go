//go:build wireinject
// +build wireinject

package inventory

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/tair/stock-keeper/internal/inventory/delivery/http"
	"github.com/tair/stock-keeper/internal/inventory/domain"
	"github.com/tair/stock-keeper/internal/inventory/repository"
	"github.com/tair/stock-keeper/internal/inventory/usecase/command"
	"github.com/tair/stock-keeper/internal/inventory/usecase/query"
	"github.com/tair/stock-keeper/pkg/keylock"
)

// ProvideItemRepository provides the traced item repository
func ProvideItemRepository(db *gorm.DB) domain.ItemRepository {
	return repository.NewTracingItemRepository(repository.NewGormItemRepository(db))
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideItemRepository,
)

var CommandHandlerSet = wire.NewSet(
	command.NewPipeline,
	command.NewCreateItemHandler,
	command.NewDeleteItemHandler,
	command.NewSetQuantityHandler,
	command.NewBuyItemHandler,
	command.NewReturnItemHandler,
)

var QueryHandlerSet = wire.NewSet(
	query.NewListItemsHandler,
)

var AllHandlersSet = wire.NewSet(
	RepositorySet,
	CommandHandlerSet,
	QueryHandlerSet,
)

// InitializeHTTPHandler initializes HTTP handler with all dependencies
func InitializeHTTPHandler(
	db *gorm.DB,
	delay command.Delay,
	locker keylock.Locker,
	publishers []domain.EventPublisher,
	registerer prometheus.Registerer,
) (*http.InventoryHandler, error) {
	wire.Build(
		AllHandlersSet,
		http.NewMetrics,
		http.NewInventoryHandler,
	)
	return nil, nil
}
