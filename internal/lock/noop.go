package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// NoopLocker always grants the lock. It exists for single-instance
// development setups without Redis and is only wired when LOCK_DISABLED is
// set explicitly outside production.
type NoopLocker struct{}

func NewNoopLocker() *NoopLocker {
	return &NoopLocker{}
}

func (l *NoopLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return uuid.NewString(), nil
}

func (l *NoopLocker) Release(ctx context.Context, key string, token string) (bool, error) {
	return true, nil
}
