package keylock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/tair/stock-keeper/pkg/logger"
)

const (
	defaultTTL   = 30 * time.Second
	defaultRetry = 20 * time.Millisecond
	keyPrefix    = "inventory:lock:"
)

// releaseScript deletes the lock only if it still carries our token, so a
// holder whose TTL lapsed cannot free somebody else's lock.
var releaseScript = redis.NewScript(`
if redis.call('get', KEYS[1]) == ARGV[1] then
    return redis.call('del', KEYS[1])
end
return 0
`)

// ErrLockLost is logged when a lock expired before it was released.
var ErrLockLost = errors.New("keylock: lock expired before release")

// Redis is a Locker shared by every replica pointed at the same Redis.
type Redis struct {
	client redis.UniversalClient
	ttl    time.Duration
	retry  time.Duration
}

// NewRedis builds a Redis locker. ttl bounds how long a crashed holder can
// block a key; zero selects 30s.
func NewRedis(client redis.UniversalClient, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Redis{client: client, ttl: ttl, retry: defaultRetry}
}

func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := keyPrefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(r.retry)
	defer ticker.Stop()

	for {
		ok, err := r.client.SetNX(ctx, redisKey, token, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// The request context may already be done; release regardless.
			released, err := releaseScript.Run(context.Background(), r.client, []string{redisKey}, token).Int()
			if err == nil && released == 0 {
				err = ErrLockLost
			}
			if err != nil {
				logger.Logger.Warn().
					Err(err).
					Str("key", key).
					Msg("Failed to release item lock")
			}
		})
	}, nil
}
