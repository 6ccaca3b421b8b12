// internal/syncer/syncer_test.go
//
// Tests for the read-path orchestration.  The interesting properties:
//
//   - single-flight: N concurrent misses for one key → exactly one loader
//     call, every waiter gets the same value
//   - failures are never cached: the next call after an error retries
//   - tag invalidation forces a reload regardless of remaining TTL

package syncer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yanizio/curator/internal/cachestore"
)

func newSyncer(t *testing.T) *Syncer {
	t.Helper()
	store := cachestore.NewMemory()
	t.Cleanup(store.Close)
	return New(store)
}

func TestFetchOrLoad_HitSkipsLoader(t *testing.T) {
	s := newSyncer(t)
	var calls int32

	load := func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "v", nil
	}

	for i := 0; i < 3; i++ {
		got, err := Fetch(context.Background(), s, "k", time.Minute, nil, load)
		if err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
		if got != "v" {
			t.Fatalf("fetch %d = %q", i, got)
		}
	}

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("loader called %d times, want 1", n)
	}
}

func TestFetchOrLoad_SingleFlight(t *testing.T) {
	s := newSyncer(t)

	var calls int32
	gate := make(chan struct{})

	load := func(ctx context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		<-gate // hold every concurrent caller in one flight
		return 42, nil
	}

	const waiters = 16
	var wg sync.WaitGroup
	errs := make(chan error, waiters)

	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := Fetch(context.Background(), s, "popular", time.Minute, nil, load)
			if err == nil && got != 42 {
				err = errors.New("wrong value")
			}
			errs <- err
		}()
	}

	// Let the goroutines pile up behind the flight, then release it.
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("waiter error: %v", err)
		}
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("loader called %d times under concurrency, want 1", n)
	}
}

func TestFetchOrLoad_FailureNotCached(t *testing.T) {
	s := newSyncer(t)

	var calls int32
	load := func(ctx context.Context) (string, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return "", errors.New("remote down")
		}
		return "recovered", nil
	}

	if _, err := Fetch(context.Background(), s, "k", time.Minute, nil, load); err == nil {
		t.Fatalf("first fetch should fail")
	}

	got, err := Fetch(context.Background(), s, "k", time.Minute, nil, load)
	if err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
	if got != "recovered" {
		t.Fatalf("retry = %q", got)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Fatalf("loader called %d times, want 2 (failure must not be cached)", n)
	}
}

func TestInvalidate_ForcesReload(t *testing.T) {
	s := newSyncer(t)

	var calls int32
	load := func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "v", nil
	}

	if _, err := Fetch(context.Background(), s, "k", time.Hour, []string{"content-items"}, load); err != nil {
		t.Fatalf("seed fetch: %v", err)
	}

	if n := s.Invalidate("content-items"); n != 1 {
		t.Fatalf("invalidated %d entries, want 1", n)
	}

	if _, err := Fetch(context.Background(), s, "k", time.Hour, []string{"content-items"}, load); err != nil {
		t.Fatalf("post-invalidate fetch: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Fatalf("loader called %d times, want 2 (invalidation must force a miss)", n)
	}
}

func TestFetch_MismatchedTypeIsAnError(t *testing.T) {
	store := cachestore.NewMemory()
	t.Cleanup(store.Close)
	s := New(store)

	// Two call sites sharing a key with different value types is a
	// programming error; it must surface, not read as an empty result.
	store.Put("k", "a string", time.Minute, nil)

	got, err := Fetch(context.Background(), s, "k", time.Minute, nil,
		func(ctx context.Context) (int, error) { return 7, nil })
	if err == nil {
		t.Fatalf("mismatched cache type returned %d with nil error", got)
	}
}

func TestFetchOrLoad_CallerCancellationIsAdvisory(t *testing.T) {
	s := newSyncer(t)

	started := make(chan struct{})
	load := func(ctx context.Context) (string, error) {
		close(started)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(100 * time.Millisecond):
			return "finished", nil
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel() // abandoning caller must not kill the shared flight
	}()

	got, err := Fetch(ctx, s, "k", time.Minute, nil, load)
	if err != nil {
		t.Fatalf("flight should survive caller cancellation: %v", err)
	}
	if got != "finished" {
		t.Fatalf("got %q", got)
	}
}
