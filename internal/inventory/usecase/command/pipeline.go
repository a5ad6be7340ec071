package command

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tair/stock-keeper/internal/inventory/domain"
	"github.com/tair/stock-keeper/pkg/keylock"
	"github.com/tair/stock-keeper/pkg/logger"
)

// Delay is the artificial latency added after every committed mutation.
type Delay time.Duration

// Wait blocks for the delay or until ctx is done. Committed state is not
// affected either way.
func (d Delay) Wait(ctx context.Context) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(time.Duration(d))
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// mutation performs the checked write for one item inside the key lock and
// returns the resulting change.
type mutation func(ctx context.Context) (domain.ChangeEvent, error)

// Pipeline runs mutations: key lock, transactional write, unlock, publish, delay.
// The delay runs after the lock is released so it never blocks other requests.
type Pipeline struct {
	locker     keylock.Locker
	delay      Delay
	publishers []domain.EventPublisher
}

// NewPipeline creates the shared mutation pipeline
func NewPipeline(locker keylock.Locker, delay Delay, publishers []domain.EventPublisher) *Pipeline {
	return &Pipeline{locker: locker, delay: delay, publishers: publishers}
}

func (p *Pipeline) run(ctx context.Context, name string, mutate mutation) error {
	unlock, err := p.locker.Lock(ctx, name)
	if err != nil {
		return domain.NewStorageError(fmt.Errorf("failed to lock item: %w", err))
	}
	event, err := mutate(ctx)
	unlock()
	if err != nil {
		return domain.AsError(err)
	}

	p.publish(ctx, event)
	p.delay.Wait(ctx)
	return nil
}

// publish notifies subscribers. The write is already committed, so delivery
// failures are logged and never surface to the caller.
func (p *Pipeline) publish(ctx context.Context, event domain.ChangeEvent) {
	if len(p.publishers) == 0 {
		return
	}
	event.EventID = uuid.NewString()
	event.Timestamp = time.Now().UTC()

	for _, publisher := range p.publishers {
		if err := publisher.PublishChange(ctx, event); err != nil {
			logger.Warn(ctx).
				Err(err).
				Str("event_type", event.Type).
				Str("item", event.Name).
				Msg("Failed to publish change event")
		}
	}
}
