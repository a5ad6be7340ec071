package command

import (
	"context"

	"github.com/tair/stock-keeper/internal/inventory/domain"
)

const (
	MsgSetQuantityInputRequired = "Invalid input. 'name' and 'new_quantity' are required."
	MsgNewQuantityNegative      = "Invalid input. 'new_quantity' must be a non-negative integer."
)

// SetQuantityCommand represents the command to overwrite an item's quantity
type SetQuantityCommand struct {
	Name        string
	NewQuantity *int
}

// SetQuantityHandler handles set quantity command
type SetQuantityHandler struct {
	repo     domain.ItemRepository
	pipeline *Pipeline
}

// NewSetQuantityHandler creates a new set quantity handler
func NewSetQuantityHandler(repo domain.ItemRepository, pipeline *Pipeline) *SetQuantityHandler {
	return &SetQuantityHandler{repo: repo, pipeline: pipeline}
}

// Handle executes the set quantity command.
// A missing item is reported before a negative quantity.
func (h *SetQuantityHandler) Handle(ctx context.Context, cmd SetQuantityCommand) error {
	if cmd.Name == "" || cmd.NewQuantity == nil {
		return domain.NewValidationError(MsgSetQuantityInputRequired)
	}
	quantity := *cmd.NewQuantity

	return h.pipeline.run(ctx, cmd.Name, func(ctx context.Context) (domain.ChangeEvent, error) {
		err := h.repo.Transaction(ctx, func(repo domain.ItemRepository) error {
			item, err := findExisting(ctx, repo, cmd.Name)
			if err != nil {
				return err
			}
			if quantity < 0 {
				return domain.NewValidationError(MsgNewQuantityNegative)
			}
			if err := repo.UpdateQuantity(ctx, item.ID, quantity); err != nil {
				return domain.NewStorageError(err)
			}
			return nil
		})
		return domain.ChangeEvent{Type: domain.EventItemQuantityUpdated, Name: cmd.Name, Quantity: quantity}, err
	})
}
