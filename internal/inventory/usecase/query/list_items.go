package query

import (
	"context"

	"github.com/tair/stock-keeper/internal/inventory/domain"
)

// ListItemsQuery represents the query to list every item
type ListItemsQuery struct{}

// ListItemsHandler handles list items query
type ListItemsHandler struct {
	repo domain.ItemRepository
}

// NewListItemsHandler creates a new list items handler
func NewListItemsHandler(repo domain.ItemRepository) *ListItemsHandler {
	return &ListItemsHandler{repo: repo}
}

// Handle executes the list items query. Results are in storage order.
func (h *ListItemsHandler) Handle(ctx context.Context, _ ListItemsQuery) ([]domain.Item, error) {
	items, err := h.repo.FindAll(ctx)
	if err != nil {
		return nil, domain.NewStorageError(err)
	}
	return items, nil
}
