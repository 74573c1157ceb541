package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisLocker(client), srv
}

func TestRedisLockerMutualExclusion(t *testing.T) {
	l, _ := newTestLocker(t)
	ctx := context.Background()

	token, err := l.Acquire(ctx, "shift:1", time.Minute)
	if err != nil || token == "" {
		t.Fatalf("first acquire: token=%q err=%v", token, err)
	}

	held, err := l.Acquire(ctx, "shift:1", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if held != "" {
		t.Fatal("second acquire must report the key as held")
	}

	ok, err := l.Release(ctx, "shift:1", token)
	if err != nil || !ok {
		t.Fatalf("release: ok=%v err=%v", ok, err)
	}

	if token, err = l.Acquire(ctx, "shift:1", time.Minute); err != nil || token == "" {
		t.Fatalf("acquire after release: token=%q err=%v", token, err)
	}
}

func TestRedisLockerReleaseWithStaleToken(t *testing.T) {
	l, _ := newTestLocker(t)
	ctx := context.Background()

	token, err := l.Acquire(ctx, "shift:2", time.Minute)
	if err != nil || token == "" {
		t.Fatalf("acquire: token=%q err=%v", token, err)
	}

	ok, err := l.Release(ctx, "shift:2", "not-the-token")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("release with a stale token must not delete the key")
	}

	// the holder is untouched
	if held, _ := l.Acquire(ctx, "shift:2", time.Minute); held != "" {
		t.Fatal("key was released by the stale token")
	}
	if ok, err := l.Release(ctx, "shift:2", token); err != nil || !ok {
		t.Fatalf("release by the owner: ok=%v err=%v", ok, err)
	}
}

func TestRedisLockerExpiredLockChangesOwner(t *testing.T) {
	l, srv := newTestLocker(t)
	ctx := context.Background()

	stale, err := l.Acquire(ctx, "shift:3", time.Second)
	if err != nil || stale == "" {
		t.Fatalf("acquire: token=%q err=%v", stale, err)
	}

	srv.FastForward(2 * time.Second)

	next, err := l.Acquire(ctx, "shift:3", time.Minute)
	if err != nil || next == "" {
		t.Fatalf("acquire after expiry: token=%q err=%v", next, err)
	}

	// the crashed holder's token must not release the new owner's lock
	ok, err := l.Release(ctx, "shift:3", stale)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expired token released the re-acquired lock")
	}
	if ok, err := l.Release(ctx, "shift:3", next); err != nil || !ok {
		t.Fatalf("release by the new owner: ok=%v err=%v", ok, err)
	}
}
