package command

import (
	"context"
	"errors"

	"github.com/tair/stock-keeper/internal/inventory/domain"
)

const MsgDeleteInputRequired = "Invalid input. 'name' is required."

// DeleteItemCommand represents the command to delete an item
type DeleteItemCommand struct {
	Name string
}

// DeleteItemHandler handles delete item command
type DeleteItemHandler struct {
	repo     domain.ItemRepository
	pipeline *Pipeline
}

// NewDeleteItemHandler creates a new delete item handler
func NewDeleteItemHandler(repo domain.ItemRepository, pipeline *Pipeline) *DeleteItemHandler {
	return &DeleteItemHandler{repo: repo, pipeline: pipeline}
}

// Handle executes the delete item command
func (h *DeleteItemHandler) Handle(ctx context.Context, cmd DeleteItemCommand) error {
	if cmd.Name == "" {
		return domain.NewValidationError(MsgDeleteInputRequired)
	}

	return h.pipeline.run(ctx, cmd.Name, func(ctx context.Context) (domain.ChangeEvent, error) {
		err := h.repo.Transaction(ctx, func(repo domain.ItemRepository) error {
			item, err := findExisting(ctx, repo, cmd.Name)
			if err != nil {
				return err
			}
			if err := repo.Delete(ctx, item.ID); err != nil {
				if errors.Is(err, domain.ErrItemNotFound) {
					return domain.NewNotFoundError(cmd.Name)
				}
				return domain.NewStorageError(err)
			}
			return nil
		})
		return domain.ChangeEvent{Type: domain.EventItemRemoved, Name: cmd.Name}, err
	})
}

// findExisting loads the named item, mapping absence to a not-found error.
func findExisting(ctx context.Context, repo domain.ItemRepository, name string) (*domain.Item, error) {
	item, err := repo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			return nil, domain.NewNotFoundError(name)
		}
		return nil, domain.NewStorageError(err)
	}
	return item, nil
}
