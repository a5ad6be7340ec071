package domain

import (
	"context"
	"errors"
)

// DefaultQuantity is stored when create omits a quantity.
const DefaultQuantity = 1

// Repository sentinels, translated into tagged errors by the command handlers.
var (
	ErrItemNotFound = errors.New("item not found")
	ErrItemExists   = errors.New("item already exists")
)

// Item is a named stock record. Name is the natural key; ID is a surrogate
// that is never reused.
type Item struct {
	ID       uint   `json:"-" gorm:"primaryKey;autoIncrement"`
	Name     string `json:"name" gorm:"uniqueIndex;not null;size:255"`
	Quantity int    `json:"quantity" gorm:"not null;check:chk_inventory_quantity,quantity >= 0"`
}

// TableName specifies the table name
func (Item) TableName() string {
	return "inventory"
}

// InStock reports whether one unit can be taken.
func (i *Item) InStock() bool {
	return i.Quantity > 0
}

// ItemRepository defines the contract for item data access.
// Inside Transaction, FindByName locks the row on dialects that support it.
type ItemRepository interface {
	Transaction(ctx context.Context, fn func(repo ItemRepository) error) error
	FindAll(ctx context.Context) ([]Item, error)
	FindByName(ctx context.Context, name string) (*Item, error)
	Create(ctx context.Context, item *Item) error
	UpdateQuantity(ctx context.Context, id uint, quantity int) error
	Delete(ctx context.Context, id uint) error
}
