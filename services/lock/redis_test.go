package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"staybook/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisLockerMutualExclusion(t *testing.T) {
	_, client := newTestRedis(t)
	locker := NewRedisLocker(client, 5*time.Second, 5*time.Second, zap.NewNop())

	var inside, overlaps int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := locker.WithLock(context.Background(), AccommodationKey("acc-1"), func(context.Context) error {
				if atomic.AddInt32(&inside, 1) > 1 {
					atomic.AddInt32(&overlaps, 1)
				}
				time.Sleep(2 * time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Zero(t, overlaps)
}

func TestRedisLockerReleasesKey(t *testing.T) {
	mr, client := newTestRedis(t)
	locker := NewRedisLocker(client, 5*time.Second, time.Second, zap.NewNop())

	err := locker.WithLock(context.Background(), AccommodationKey("acc-1"), func(context.Context) error {
		assert.True(t, mr.Exists(utils.LockKeyPrefix+AccommodationKey("acc-1")))
		return nil
	})
	require.NoError(t, err)
	assert.False(t, mr.Exists(utils.LockKeyPrefix+AccommodationKey("acc-1")))
}

func TestRedisLockerTimesOutWhileHeld(t *testing.T) {
	mr, client := newTestRedis(t)
	require.NoError(t, mr.Set(utils.LockKeyPrefix+"k", "someone-else"))

	locker := NewRedisLocker(client, 5*time.Second, 60*time.Millisecond, zap.NewNop())
	err := locker.WithLock(context.Background(), "k", func(context.Context) error {
		t.Fatal("must not run while another holder owns the key")
		return nil
	})
	assert.ErrorIs(t, err, ErrLockTimeout)

	// A foreign token is left untouched.
	got, _ := mr.Get(utils.LockKeyPrefix + "k")
	assert.Equal(t, "someone-else", got)
}

func TestRedisLockerDoesNotReleaseForeignLease(t *testing.T) {
	mr, client := newTestRedis(t)
	locker := NewRedisLocker(client, 5*time.Second, time.Second, zap.NewNop())

	err := locker.WithLock(context.Background(), "k", func(context.Context) error {
		// Our lease expired and another process took the key.
		mr.Del(utils.LockKeyPrefix + "k")
		require.NoError(t, mr.Set(utils.LockKeyPrefix+"k", "other-token"))
		return nil
	})
	require.NoError(t, err)

	got, _ := mr.Get(utils.LockKeyPrefix + "k")
	assert.Equal(t, "other-token", got)
}

func TestRedisLockerZeroWaitBlocksUntilContextDone(t *testing.T) {
	_, client := newTestRedis(t)
	locker := NewRedisLocker(client, 5*time.Second, 0, zap.NewNop())
	key := AccommodationKey("acc-1")

	held := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = locker.WithLock(context.Background(), key, func(context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	// Still waiting well past a single retry.
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	err := locker.WithLock(ctx, key, func(context.Context) error { return nil })
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrLockTimeout)
	assert.ErrorIs(t, ctx.Err(), context.DeadlineExceeded)

	// Acquired once the holder lets go.
	go func() {
		time.Sleep(50 * time.Millisecond)
		close(release)
	}()
	ran := false
	require.NoError(t, locker.WithLock(context.Background(), key, func(context.Context) error {
		ran = true
		return nil
	}))
	assert.True(t, ran)
}
