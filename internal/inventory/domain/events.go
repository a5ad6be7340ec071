package domain

import (
	"context"
	"time"
)

// Change event types
const (
	EventItemCreated         = "item.created"
	EventItemRemoved         = "item.removed"
	EventItemQuantityUpdated = "item.quantity_updated"
	EventItemPurchased       = "item.purchased"
	EventItemReturned        = "item.returned"
)

// ChangeEvent describes a committed mutation. Quantity is the value after
// the commit; it is zero for removals.
type ChangeEvent struct {
	EventID   string    `json:"event_id"`
	Type      string    `json:"event_type"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	Timestamp time.Time `json:"timestamp"`
}

// EventPublisher delivers change notifications to live subscribers.
type EventPublisher interface {
	PublishChange(ctx context.Context, event ChangeEvent) error
}
