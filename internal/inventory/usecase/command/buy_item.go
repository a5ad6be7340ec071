package command

import (
	"context"

	"github.com/tair/stock-keeper/internal/inventory/domain"
)

// MsgItemNameRequired is returned by buy and return when name is missing
const MsgItemNameRequired = "Item name is required."

// BuyItemCommand takes one unit of an item
type BuyItemCommand struct {
	Name string
}

// BuyItemHandler handles buy item command
type BuyItemHandler struct {
	repo     domain.ItemRepository
	pipeline *Pipeline
}

// NewBuyItemHandler creates a new buy item handler
func NewBuyItemHandler(repo domain.ItemRepository, pipeline *Pipeline) *BuyItemHandler {
	return &BuyItemHandler{repo: repo, pipeline: pipeline}
}

// Handle executes the buy item command
func (h *BuyItemHandler) Handle(ctx context.Context, cmd BuyItemCommand) error {
	if cmd.Name == "" {
		return domain.NewValidationError(MsgItemNameRequired)
	}

	return h.pipeline.run(ctx, cmd.Name, func(ctx context.Context) (domain.ChangeEvent, error) {
		var remaining int
		err := h.repo.Transaction(ctx, func(repo domain.ItemRepository) error {
			item, err := findExisting(ctx, repo, cmd.Name)
			if err != nil {
				return err
			}
			if !item.InStock() {
				return domain.NewOutOfStockError(cmd.Name)
			}
			remaining = item.Quantity - 1
			if err := repo.UpdateQuantity(ctx, item.ID, remaining); err != nil {
				return domain.NewStorageError(err)
			}
			return nil
		})
		return domain.ChangeEvent{Type: domain.EventItemPurchased, Name: cmd.Name, Quantity: remaining}, err
	})
}
