package command

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/tair/stock-keeper/internal/inventory/domain"
	"github.com/tair/stock-keeper/internal/inventory/repository"
	"github.com/tair/stock-keeper/pkg/database"
	"github.com/tair/stock-keeper/pkg/keylock"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.ChangeEvent
	err    error
}

func (p *recordingPublisher) PublishChange(_ context.Context, event domain.ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) recorded() []domain.ChangeEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.ChangeEvent(nil), p.events...)
}

type handlers struct {
	db        *gorm.DB
	repo      domain.ItemRepository
	publisher *recordingPublisher
	create    *CreateItemHandler
	delete    *DeleteItemHandler
	set       *SetQuantityHandler
	buy       *BuyItemHandler
	ret       *ReturnItemHandler
}

func newHandlers(t *testing.T, delay time.Duration, locker keylock.Locker) *handlers {
	t.Helper()
	db, err := database.NewGormConnection(database.Config{
		Driver: database.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "inventory.db"),
	})
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	if locker == nil {
		locker = keylock.NewLocal()
	}
	repo := repository.NewGormItemRepository(db)
	publisher := &recordingPublisher{}
	pipeline := NewPipeline(locker, Delay(delay), []domain.EventPublisher{publisher})

	return &handlers{
		db:        db,
		repo:      repo,
		publisher: publisher,
		create:    NewCreateItemHandler(repo, pipeline),
		delete:    NewDeleteItemHandler(repo, pipeline),
		set:       NewSetQuantityHandler(repo, pipeline),
		buy:       NewBuyItemHandler(repo, pipeline),
		ret:       NewReturnItemHandler(repo, pipeline),
	}
}

func intPtr(v int) *int { return &v }

func quantityOf(t *testing.T, h *handlers, name string) int {
	t.Helper()
	item, err := h.repo.FindByName(context.Background(), name)
	require.NoError(t, err)
	return item.Quantity
}

func assertKind(t *testing.T, err error, kind domain.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, domain.KindOf(err), "error: %v", err)
}

func TestCreateItem(t *testing.T) {
	ctx := context.Background()
	h := newHandlers(t, 0, nil)

	item, err := h.create.Handle(ctx, CreateItemCommand{Name: "Widget", Quantity: intPtr(5)})
	require.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)
	assert.NotZero(t, item.ID)

	gadget, err := h.create.Handle(ctx, CreateItemCommand{Name: "Gadget"})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultQuantity, gadget.Quantity)
	assert.Equal(t, 1, quantityOf(t, h, "Gadget"))

	zero, err := h.create.Handle(ctx, CreateItemCommand{Name: "Empty", Quantity: intPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, 0, zero.Quantity)
}

func TestCreateItemGuards(t *testing.T) {
	ctx := context.Background()
	h := newHandlers(t, 0, nil)

	_, err := h.create.Handle(ctx, CreateItemCommand{Quantity: intPtr(1)})
	assertKind(t, err, domain.KindValidation)
	assert.Equal(t, MsgCreateInputRequired, domain.AsError(err).Message)

	_, err = h.create.Handle(ctx, CreateItemCommand{Name: "Dup", Quantity: intPtr(2)})
	require.NoError(t, err)

	_, err = h.create.Handle(ctx, CreateItemCommand{Name: "Dup", Quantity: intPtr(9)})
	assertKind(t, err, domain.KindConflict)
	assert.Equal(t, "Item 'Dup' already exists.", domain.AsError(err).Message)
	assert.Equal(t, 2, quantityOf(t, h, "Dup"))

	// Existence is checked before the quantity rule.
	_, err = h.create.Handle(ctx, CreateItemCommand{Name: "Dup", Quantity: intPtr(-1)})
	assertKind(t, err, domain.KindConflict)

	_, err = h.create.Handle(ctx, CreateItemCommand{Name: "Neg", Quantity: intPtr(-1)})
	assertKind(t, err, domain.KindValidation)
	_, err = h.repo.FindByName(ctx, "Neg")
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestDeleteItem(t *testing.T) {
	ctx := context.Background()
	h := newHandlers(t, 0, nil)

	assertKind(t, h.delete.Handle(ctx, DeleteItemCommand{}), domain.KindValidation)
	assertKind(t, h.delete.Handle(ctx, DeleteItemCommand{Name: "Ghost"}), domain.KindNotFound)

	_, err := h.create.Handle(ctx, CreateItemCommand{Name: "Widget", Quantity: intPtr(3)})
	require.NoError(t, err)
	require.NoError(t, h.delete.Handle(ctx, DeleteItemCommand{Name: "Widget"}))

	assertKind(t, h.delete.Handle(ctx, DeleteItemCommand{Name: "Widget"}), domain.KindNotFound)
	assertKind(t, h.buy.Handle(ctx, BuyItemCommand{Name: "Widget"}), domain.KindNotFound)
}

func TestCreateDeleteCreateGetsFreshID(t *testing.T) {
	ctx := context.Background()
	h := newHandlers(t, 0, nil)

	first, err := h.create.Handle(ctx, CreateItemCommand{Name: "Widget"})
	require.NoError(t, err)
	require.NoError(t, h.delete.Handle(ctx, DeleteItemCommand{Name: "Widget"}))
	second, err := h.create.Handle(ctx, CreateItemCommand{Name: "Widget"})
	require.NoError(t, err)

	assert.Greater(t, second.ID, first.ID)
}

func TestSetQuantity(t *testing.T) {
	ctx := context.Background()
	h := newHandlers(t, 0, nil)

	assertKind(t, h.set.Handle(ctx, SetQuantityCommand{Name: "Widget"}), domain.KindValidation)
	assertKind(t, h.set.Handle(ctx, SetQuantityCommand{NewQuantity: intPtr(3)}), domain.KindValidation)

	err := h.set.Handle(ctx, SetQuantityCommand{Name: "Ghost", NewQuantity: intPtr(3)})
	assertKind(t, err, domain.KindNotFound)
	assert.Equal(t, "Item 'Ghost' not found.", domain.AsError(err).Message)

	// Missing item wins over a negative quantity.
	assertKind(t, h.set.Handle(ctx, SetQuantityCommand{Name: "Ghost", NewQuantity: intPtr(-3)}), domain.KindNotFound)

	_, err = h.create.Handle(ctx, CreateItemCommand{Name: "Widget", Quantity: intPtr(5)})
	require.NoError(t, err)

	assertKind(t, h.set.Handle(ctx, SetQuantityCommand{Name: "Widget", NewQuantity: intPtr(-1)}), domain.KindValidation)
	assert.Equal(t, 5, quantityOf(t, h, "Widget"))

	require.NoError(t, h.set.Handle(ctx, SetQuantityCommand{Name: "Widget", NewQuantity: intPtr(42)}))
	assert.Equal(t, 42, quantityOf(t, h, "Widget"))

	require.NoError(t, h.set.Handle(ctx, SetQuantityCommand{Name: "Widget", NewQuantity: intPtr(42)}))
	assert.Equal(t, 42, quantityOf(t, h, "Widget"))
}

func TestBuyUntilOutOfStock(t *testing.T) {
	ctx := context.Background()
	h := newHandlers(t, 0, nil)

	_, err := h.create.Handle(ctx, CreateItemCommand{Name: "Widget", Quantity: intPtr(5)})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, h.buy.Handle(ctx, BuyItemCommand{Name: "Widget"}))
		assert.Equal(t, 4-i, quantityOf(t, h, "Widget"))
	}

	err = h.buy.Handle(ctx, BuyItemCommand{Name: "Widget"})
	assertKind(t, err, domain.KindDomainRule)
	assert.Equal(t, "Item 'Widget' is out of stock.", domain.AsError(err).Message)
	assert.Equal(t, 0, quantityOf(t, h, "Widget"))

	assertKind(t, h.buy.Handle(ctx, BuyItemCommand{}), domain.KindValidation)
	assertKind(t, h.buy.Handle(ctx, BuyItemCommand{Name: "Ghost"}), domain.KindNotFound)
}

func TestReturnItem(t *testing.T) {
	ctx := context.Background()
	h := newHandlers(t, 0, nil)

	assertKind(t, h.ret.Handle(ctx, ReturnItemCommand{}), domain.KindValidation)
	assertKind(t, h.ret.Handle(ctx, ReturnItemCommand{Name: "Ghost"}), domain.KindNotFound)

	_, err := h.create.Handle(ctx, CreateItemCommand{Name: "Widget", Quantity: intPtr(0)})
	require.NoError(t, err)
	require.NoError(t, h.ret.Handle(ctx, ReturnItemCommand{Name: "Widget"}))
	require.NoError(t, h.ret.Handle(ctx, ReturnItemCommand{Name: "Widget"}))
	assert.Equal(t, 2, quantityOf(t, h, "Widget"))
}

func TestConcurrentBuysOnLastUnit(t *testing.T) {
	ctx := context.Background()
	h := newHandlers(t, 10*time.Millisecond, nil)

	_, err := h.create.Handle(ctx, CreateItemCommand{Name: "Widget", Quantity: intPtr(1)})
	require.NoError(t, err)

	const n = 10
	results := make([]error, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			results[i] = h.buy.Handle(ctx, BuyItemCommand{Name: "Widget"})
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var ok, outOfStock int
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case domain.KindOf(err) == domain.KindDomainRule:
			outOfStock++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, outOfStock)
	assert.Equal(t, 0, quantityOf(t, h, "Widget"))
}

func TestConcurrentCreatesSameName(t *testing.T) {
	ctx := context.Background()
	h := newHandlers(t, 0, nil)

	const n = 8
	results := make([]error, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			_, results[i] = h.create.Handle(ctx, CreateItemCommand{Name: "Dup", Quantity: intPtr(i)})
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var ok int
	for _, err := range results {
		if err == nil {
			ok++
			continue
		}
		assert.Equal(t, domain.KindConflict, domain.KindOf(err))
	}
	assert.Equal(t, 1, ok)
}

func TestConcurrentMixedMutationsKeepStockNonNegative(t *testing.T) {
	ctx := context.Background()
	h := newHandlers(t, 0, nil)

	_, err := h.create.Handle(ctx, CreateItemCommand{Name: "Widget", Quantity: intPtr(3)})
	require.NoError(t, err)

	var mu sync.Mutex
	var bought, returned int

	var g errgroup.Group
	for i := 0; i < 30; i++ {
		i := i
		g.Go(func() error {
			if i%3 == 0 {
				if err := h.ret.Handle(ctx, ReturnItemCommand{Name: "Widget"}); err != nil {
					return err
				}
				mu.Lock()
				returned++
				mu.Unlock()
				return nil
			}
			err := h.buy.Handle(ctx, BuyItemCommand{Name: "Widget"})
			if err == nil {
				mu.Lock()
				bought++
				mu.Unlock()
				return nil
			}
			if domain.KindOf(err) == domain.KindDomainRule {
				return nil
			}
			return err
		})
	}
	require.NoError(t, g.Wait())

	final := quantityOf(t, h, "Widget")
	assert.GreaterOrEqual(t, final, 0)
	assert.Equal(t, 3+returned-bought, final)
}

func TestDelayDoesNotHoldTheLock(t *testing.T) {
	ctx := context.Background()
	const delay = 300 * time.Millisecond
	h := newHandlers(t, delay, nil)

	// Seed with a zero-delay pipeline so setup does not pay the delay.
	seed := NewCreateItemHandler(h.repo, NewPipeline(keylock.NewLocal(), 0, nil))
	_, err := seed.Handle(ctx, CreateItemCommand{Name: "A", Quantity: intPtr(10)})
	require.NoError(t, err)
	_, err = seed.Handle(ctx, CreateItemCommand{Name: "B", Quantity: intPtr(10)})
	require.NoError(t, err)

	start := time.Now()
	var g errgroup.Group
	g.Go(func() error { return h.buy.Handle(ctx, BuyItemCommand{Name: "A"}) })
	g.Go(func() error { return h.buy.Handle(ctx, BuyItemCommand{Name: "A"}) })
	g.Go(func() error { return h.ret.Handle(ctx, ReturnItemCommand{Name: "B"}) })
	require.NoError(t, g.Wait())
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, delay)
	assert.Less(t, elapsed, 2*delay, "delays ran serially")
	assert.Equal(t, 8, quantityOf(t, h, "A"))
	assert.Equal(t, 11, quantityOf(t, h, "B"))
}

func TestDelayAppliesOnlyAfterCommit(t *testing.T) {
	const delay = time.Second
	h := newHandlers(t, delay, nil)

	// Rejected requests return without waiting.
	start := time.Now()
	assertKind(t, h.buy.Handle(context.Background(), BuyItemCommand{Name: "Ghost"}), domain.KindNotFound)
	assert.Less(t, time.Since(start), delay)

	// A caller that gives up during the delay still leaves the write committed.
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	start = time.Now()
	_, err := h.create.Handle(ctx, CreateItemCommand{Name: "Widget", Quantity: intPtr(2)})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), delay)
	assert.Equal(t, 2, quantityOf(t, h, "Widget"))
}

func TestPipelinePublishesChanges(t *testing.T) {
	ctx := context.Background()
	h := newHandlers(t, 0, nil)
	h.publisher.err = errors.New("subscriber gone")

	_, err := h.create.Handle(ctx, CreateItemCommand{Name: "Widget", Quantity: intPtr(2)})
	require.NoError(t, err, "publish failures must not fail the request")
	require.NoError(t, h.buy.Handle(ctx, BuyItemCommand{Name: "Widget"}))
	require.NoError(t, h.ret.Handle(ctx, ReturnItemCommand{Name: "Widget"}))
	require.NoError(t, h.set.Handle(ctx, SetQuantityCommand{Name: "Widget", NewQuantity: intPtr(7)}))
	require.NoError(t, h.delete.Handle(ctx, DeleteItemCommand{Name: "Widget"}))
	assertKind(t, h.buy.Handle(ctx, BuyItemCommand{Name: "Widget"}), domain.KindNotFound)

	events := h.publisher.recorded()
	require.Len(t, events, 5)

	types := []string{
		domain.EventItemCreated,
		domain.EventItemPurchased,
		domain.EventItemReturned,
		domain.EventItemQuantityUpdated,
		domain.EventItemRemoved,
	}
	quantities := []int{2, 1, 2, 7, 0}
	for i, event := range events {
		assert.Equal(t, types[i], event.Type)
		assert.Equal(t, quantities[i], event.Quantity)
		assert.Equal(t, "Widget", event.Name)
		assert.NotEmpty(t, event.EventID)
		assert.False(t, event.Timestamp.IsZero())
	}
}

type failingLocker struct{}

func (failingLocker) Lock(context.Context, string) (func(), error) {
	return nil, errors.New("redis unavailable")
}

func TestLockFailureIsStorageError(t *testing.T) {
	h := newHandlers(t, 0, failingLocker{})
	err := h.ret.Handle(context.Background(), ReturnItemCommand{Name: "Widget"})
	assertKind(t, err, domain.KindStorage)
}

func TestStorageFailure(t *testing.T) {
	h := newHandlers(t, 0, nil)
	sqlDB, err := h.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	ctx := context.Background()
	err = h.ret.Handle(ctx, ReturnItemCommand{Name: "Widget"})
	assertKind(t, err, domain.KindStorage)
	assert.Contains(t, domain.AsError(err).Message, "Database error: ")

	_, err = h.create.Handle(ctx, CreateItemCommand{Name: "Widget"})
	assertKind(t, err, domain.KindStorage)
	assert.Empty(t, h.publisher.recorded())
}

func TestDelayWait(t *testing.T) {
	start := time.Now()
	Delay(0).Wait(context.Background())
	Delay(-time.Second).Wait(context.Background())
	assert.Less(t, time.Since(start), 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start = time.Now()
	Delay(time.Hour).Wait(ctx)
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}
