package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tair/stock-keeper/internal/inventory/domain"
)

// GormItemRepository implements domain.ItemRepository using GORM
type GormItemRepository struct {
	db   *gorm.DB
	inTx bool
}

// NewGormItemRepository creates a new GORM item repository
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// AutoMigrate creates the inventory table if it does not exist
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.Item{}); err != nil {
		return fmt.Errorf("failed to migrate inventory table: %w", err)
	}
	return nil
}

// Transaction runs fn against a repository bound to one database transaction.
// Returning an error from fn rolls back.
func (r *GormItemRepository) Transaction(ctx context.Context, fn func(repo domain.ItemRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormItemRepository{db: tx, inTx: true})
	})
}

// FindAll returns every item in storage order
func (r *GormItemRepository) FindAll(ctx context.Context) ([]domain.Item, error) {
	items := []domain.Item{}
	if err := r.db.WithContext(ctx).Order("id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// FindByName retrieves an item by its unique name
func (r *GormItemRepository) FindByName(ctx context.Context, name string) (*domain.Item, error) {
	query := r.db.WithContext(ctx)
	if r.inTx && supportsRowLocks(r.db) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var item domain.Item
	if err := query.Where("name = ?", name).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to find item: %w", err)
	}
	return &item, nil
}

// Create inserts a new item and fills in its surrogate id
func (r *GormItemRepository) Create(ctx context.Context, item *domain.Item) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrItemExists
		}
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

// UpdateQuantity overwrites the quantity of the item with the given id.
// Callers locate the row first; MySQL reports zero affected rows for no-op updates.
func (r *GormItemRepository) UpdateQuantity(ctx context.Context, id uint, quantity int) error {
	err := r.db.WithContext(ctx).
		Model(&domain.Item{}).
		Where("id = ?", id).
		Update("quantity", quantity).Error
	if err != nil {
		return fmt.Errorf("failed to update quantity: %w", err)
	}
	return nil
}

// Delete permanently removes the item with the given id
func (r *GormItemRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.Item{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

// SQLite serializes writers itself and rejects FOR UPDATE.
func supportsRowLocks(db *gorm.DB) bool {
	return db.Dialector.Name() != "sqlite"
}
