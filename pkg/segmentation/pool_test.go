package segmentation

import (
	"context"
	"errors"
	"github.com/sirupsen/logrus"
	"io"
	"testing"
	"time"
)

func newTestPool(t *testing.T, size int) *Pool {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	pool := NewPool(log, size)
	pool.acquireTimeout = 50 * time.Millisecond
	t.Cleanup(pool.Close)
	return pool
}

func TestPoolAcquireRelease(t *testing.T) {
	pool := newTestPool(t, 2)

	first, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}
	second, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("second acquire failed: %v", err)
	}

	stats := pool.Stats()
	if stats.InUse != 2 || stats.TotalAcquired != 2 {
		t.Fatalf("stats = %+v, want 2 in use and 2 acquired", stats)
	}

	pool.Release(first)
	pool.Release(second)

	stats = pool.Stats()
	if stats.InUse != 0 || stats.TotalReleased != 2 {
		t.Fatalf("stats after release = %+v, want 0 in use and 2 released", stats)
	}
}

func TestPoolAcquireTimesOutWhenExhausted(t *testing.T) {
	pool := newTestPool(t, 1)

	client, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	defer pool.Release(client)

	if _, err := pool.Acquire(context.Background()); !errors.Is(err, ErrNoSessionAvailable) {
		t.Fatalf("exhausted acquire returned %v, want ErrNoSessionAvailable", err)
	}
	if stats := pool.Stats(); stats.AcquireFailures != 1 {
		t.Fatalf("acquire failures = %d, want 1", stats.AcquireFailures)
	}
}

func TestPoolAcquireHonorsContext(t *testing.T) {
	pool := newTestPool(t, 1)

	client, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	defer pool.Release(client)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := pool.Acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("canceled acquire returned %v, want context.Canceled", err)
	}
}

func TestPoolAcquireAfterClose(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	pool := NewPool(log, 1)
	pool.Close()

	if _, err := pool.Acquire(context.Background()); err == nil {
		t.Fatal("acquire on a closed pool succeeded")
	}
}
