package command

import (
	"context"
	"errors"

	"github.com/tair/stock-keeper/internal/inventory/domain"
)

// Validation messages surfaced by create
const (
	MsgCreateInputRequired = "Invalid input. 'name' and 'quantity' are required."
	MsgQuantityNegative    = "Invalid input. 'quantity' must be a non-negative integer."
)

// CreateItemCommand represents the command to create an item
type CreateItemCommand struct {
	Name string
	// Quantity is optional; nil stores domain.DefaultQuantity.
	Quantity *int
}

// CreateItemHandler handles create item command
type CreateItemHandler struct {
	repo     domain.ItemRepository
	pipeline *Pipeline
}

// NewCreateItemHandler creates a new create item handler
func NewCreateItemHandler(repo domain.ItemRepository, pipeline *Pipeline) *CreateItemHandler {
	return &CreateItemHandler{repo: repo, pipeline: pipeline}
}

// Handle executes the create item command.
// Checks run in order: input, name not taken, quantity non-negative.
func (h *CreateItemHandler) Handle(ctx context.Context, cmd CreateItemCommand) (*domain.Item, error) {
	if cmd.Name == "" {
		return nil, domain.NewValidationError(MsgCreateInputRequired)
	}

	quantity := domain.DefaultQuantity
	if cmd.Quantity != nil {
		quantity = *cmd.Quantity
	}

	var created *domain.Item
	err := h.pipeline.run(ctx, cmd.Name, func(ctx context.Context) (domain.ChangeEvent, error) {
		err := h.repo.Transaction(ctx, func(repo domain.ItemRepository) error {
			_, err := repo.FindByName(ctx, cmd.Name)
			switch {
			case err == nil:
				return domain.NewConflictError(cmd.Name)
			case !errors.Is(err, domain.ErrItemNotFound):
				return domain.NewStorageError(err)
			}

			if quantity < 0 {
				return domain.NewValidationError(MsgQuantityNegative)
			}

			item := &domain.Item{Name: cmd.Name, Quantity: quantity}
			if err := repo.Create(ctx, item); err != nil {
				if errors.Is(err, domain.ErrItemExists) {
					return domain.NewConflictError(cmd.Name)
				}
				return domain.NewStorageError(err)
			}
			created = item
			return nil
		})
		return domain.ChangeEvent{Type: domain.EventItemCreated, Name: cmd.Name, Quantity: quantity}, err
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}
