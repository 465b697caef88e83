package redlock

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
)

// ErrLockHeld is returned when the lock key is already owned by another
// caller. Allocation is an interactive operation, so callers surface this as
// a fail-fast Busy error rather than queueing behind the holder.
var ErrLockHeld = fmt.Errorf("lock already held")

// Locker is a single-key advisory lock over redis. The value identifies the
// holder so only the caller that acquired the lock can release or extend it.
type Locker struct {
	client redis.UniversalClient
	key    string
	value  string
}

func NewLocker(client redis.UniversalClient, key, value string) *Locker {
	return &Locker{
		client: client,
		key:    key,
		value:  value,
	}
}

// Lock attempts a single acquisition. The ttl bounds how long a crashed
// holder can keep the key.
func (l *Locker) Lock(ctx context.Context, ttl time.Duration) error {
	success, err := l.client.SetNX(ctx, l.key, l.value, ttl).Result()
	if err != nil {
		return err
	}
	if !success {
		return ErrLockHeld
	}
	return nil
}

// Unlock releases the lock only if this locker still holds it.
func (l *Locker) Unlock(ctx context.Context) error {
	script := "if redis.call('get', KEYS[1]) == ARGV[1] then return redis.call('del', KEYS[1]) else return 0 end"
	result, err := l.client.Eval(ctx, script, []string{l.key}, l.value).Result()
	if err != nil {
		return err
	}
	if result == int64(0) {
		return fmt.Errorf("unlock failed, lock expired or not held for key %s", l.key)
	}
	return nil
}

// WaitLock retries acquisition with exponential backoff until waitTimeout
// elapses. It returns ErrLockHeld if the lock never frees up in time.
func (l *Locker) WaitLock(ctx context.Context, ttl, waitTimeout time.Duration) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 25 * time.Millisecond
	policy.MaxInterval = 250 * time.Millisecond
	policy.MaxElapsedTime = waitTimeout

	return backoff.Retry(func() error {
		if err := l.Lock(ctx, ttl); err != nil {
			if err == ErrLockHeld {
				return err
			}
			return backoff.Permanent(err)
		}
		return nil
	}, backoff.WithContext(policy, ctx))
}
