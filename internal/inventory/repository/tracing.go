package repository

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/stock-keeper/internal/inventory/domain"
)

var tracer = otel.Tracer("inventory-repository")

// TracingItemRepository wraps an ItemRepository with one span per call
type TracingItemRepository struct {
	next domain.ItemRepository
}

// NewTracingItemRepository decorates next with tracing
func NewTracingItemRepository(next domain.ItemRepository) *TracingItemRepository {
	return &TracingItemRepository{next: next}
}

// Transaction with tracing; the transactional repository is traced too
func (r *TracingItemRepository) Transaction(ctx context.Context, fn func(repo domain.ItemRepository) error) error {
	ctx, span := tracer.Start(ctx, "repository.Transaction")
	defer span.End()

	err := r.next.Transaction(ctx, func(repo domain.ItemRepository) error {
		return fn(NewTracingItemRepository(repo))
	})
	recordError(span, err)
	return err
}

// FindAll with tracing
func (r *TracingItemRepository) FindAll(ctx context.Context) ([]domain.Item, error) {
	ctx, span := tracer.Start(ctx, "repository.FindAll")
	defer span.End()

	items, err := r.next.FindAll(ctx)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("result.count", len(items)))
	return items, nil
}

// FindByName with tracing
func (r *TracingItemRepository) FindByName(ctx context.Context, name string) (*domain.Item, error) {
	ctx, span := tracer.Start(ctx, "repository.FindByName",
		trace.WithAttributes(attribute.String("item.name", name)),
	)
	defer span.End()

	item, err := r.next.FindByName(ctx, name)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("item.id", int(item.ID)),
		attribute.Int("item.quantity", item.Quantity),
	)
	return item, nil
}

// Create with tracing
func (r *TracingItemRepository) Create(ctx context.Context, item *domain.Item) error {
	ctx, span := tracer.Start(ctx, "repository.Create",
		trace.WithAttributes(
			attribute.String("item.name", item.Name),
			attribute.Int("item.quantity", item.Quantity),
		),
	)
	defer span.End()

	if err := r.next.Create(ctx, item); err != nil {
		recordError(span, err)
		return err
	}

	span.SetAttributes(attribute.Int("item.id", int(item.ID)))
	return nil
}

// UpdateQuantity with tracing
func (r *TracingItemRepository) UpdateQuantity(ctx context.Context, id uint, quantity int) error {
	ctx, span := tracer.Start(ctx, "repository.UpdateQuantity",
		trace.WithAttributes(
			attribute.Int("item.id", int(id)),
			attribute.Int("quantity.new_value", quantity),
		),
	)
	defer span.End()

	err := r.next.UpdateQuantity(ctx, id, quantity)
	recordError(span, err)
	return err
}

// Delete with tracing
func (r *TracingItemRepository) Delete(ctx context.Context, id uint) error {
	ctx, span := tracer.Start(ctx, "repository.Delete",
		trace.WithAttributes(attribute.Int("item.id", int(id))),
	)
	defer span.End()

	err := r.next.Delete(ctx, id)
	recordError(span, err)
	return err
}

// recordError marks the span failed. Missing items are an expected outcome,
// not a database error.
func recordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, domain.ErrItemNotFound) {
		span.SetAttributes(attribute.Bool("item.found", false))
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
