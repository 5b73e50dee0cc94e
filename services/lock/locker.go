package lock

import (
	"context"
	"errors"
)

// ErrLockTimeout is returned when a lock could not be acquired within the
// configured wait.
var ErrLockTimeout = errors.New("timed out waiting for lock")

// Locker serialises work on a key across goroutines (MemoryLocker) or across
// processes (RedisLocker).
type Locker interface {
	// WithLock runs fn while holding key. The lock is released when fn returns.
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

func AccommodationKey(accommodationID string) string {
	return "accommodation:" + accommodationID
}

func PaymentKey(paymentID string) string {
	return "payment:" + paymentID
}
