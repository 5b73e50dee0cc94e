package lock

import (
	"context"
	"fmt"
	"time"

	"staybook/utils"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// releaseScript deletes the key only if it still carries our token, so an
// expired holder can never release a lock that someone else now owns.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

const retryInterval = 25 * time.Millisecond

// RedisLocker is a lease-based lock shared by every process pointing at the
// same Redis database. ttl bounds how long a crashed holder can block others.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
	logger *zap.Logger
}

// NewRedisLocker returns a locker that gives up after wait. A zero wait
// retries until the caller's context is done.
func NewRedisLocker(client *redis.Client, ttl, wait time.Duration, logger *zap.Logger) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl, wait: wait, logger: logger}
}

func (l *RedisLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	redisKey := utils.LockKeyPrefix + key
	token := uuid.New().String()

	if err := l.acquire(ctx, redisKey, token); err != nil {
		return err
	}
	defer func() {
		// Release even if the caller's context was cancelled mid-flight.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{redisKey}, token).Err(); err != nil && err != redis.Nil {
			l.logger.Warn("failed to release lock", zap.String("key", key), zap.Error(err))
		}
	}()

	return fn(ctx)
}

func (l *RedisLocker) acquire(ctx context.Context, redisKey, token string) error {
	deadline := time.Now().Add(l.wait)
	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return fmt.Errorf("acquire lock %s: %w", redisKey, err)
		}
		if ok {
			return nil
		}
		if l.wait > 0 && !time.Now().Before(deadline) {
			return ErrLockTimeout
		}

		timer := time.NewTimer(retryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
