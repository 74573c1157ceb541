package lock

import (
	"context"
	"fmt"
	"time"
)

// ErrUnavailable reports that the lock backend could not be reached. Callers
// must treat this as "do not mutate": the lock fails closed.
var ErrUnavailable = fmt.Errorf("lock backend unavailable")

// Locker is a key-value mutex with expiry. Acquire returns an opaque token
// proving ownership, or an empty token when the key is already held. Release
// deletes the key only while the supplied token still owns it and reports
// whether the deletion happened.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (string, error)
	Release(ctx context.Context, key string, token string) (bool, error)
}

// ShiftKey scopes mutual exclusion to a single shift.
func ShiftKey(shiftID int64) string {
	return fmt.Sprintf("shift:%d", shiftID)
}
