package command

import (
	"context"

	"github.com/tair/stock-keeper/internal/inventory/domain"
)

// ReturnItemCommand puts one unit of an item back
type ReturnItemCommand struct {
	Name string
}

// ReturnItemHandler handles return item command
type ReturnItemHandler struct {
	repo     domain.ItemRepository
	pipeline *Pipeline
}

// NewReturnItemHandler creates a new return item handler
func NewReturnItemHandler(repo domain.ItemRepository, pipeline *Pipeline) *ReturnItemHandler {
	return &ReturnItemHandler{repo: repo, pipeline: pipeline}
}

// Handle executes the return item command
func (h *ReturnItemHandler) Handle(ctx context.Context, cmd ReturnItemCommand) error {
	if cmd.Name == "" {
		return domain.NewValidationError(MsgItemNameRequired)
	}

	return h.pipeline.run(ctx, cmd.Name, func(ctx context.Context) (domain.ChangeEvent, error) {
		var quantity int
		err := h.repo.Transaction(ctx, func(repo domain.ItemRepository) error {
			item, err := findExisting(ctx, repo, cmd.Name)
			if err != nil {
				return err
			}
			quantity = item.Quantity + 1
			if err := repo.UpdateQuantity(ctx, item.ID, quantity); err != nil {
				return domain.NewStorageError(err)
			}
			return nil
		})
		return domain.ChangeEvent{Type: domain.EventItemReturned, Name: cmd.Name, Quantity: quantity}, err
	})
}
