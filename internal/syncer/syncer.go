// internal/syncer/syncer.go
//
// Fetch-or-serve-from-cache orchestration.
//
// Context
// -------
// Callers never talk to the cache store or the source client directly; the
// Syncer is the single entry point for the read path.  A hit returns the
// cached value with no network call.  A miss (or an expired entry) runs the
// loader under a per-key singleflight, so concurrent requests for the same
// key collapse into one in-flight fetch and all waiters share its outcome.
//
// Failures are never cached: after an error the key stays a miss, so the
// very next call retries the remote.  Caller cancellation is advisory — a
// flight already shared with other waiters runs to completion, which is why
// the loader receives a context detached from any one caller's deadline.
package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yanizio/curator/internal/cachestore"
	"github.com/yanizio/curator/internal/metrics"
)

// Loader produces the value for a key on a cache miss.
type Loader func(ctx context.Context) (any, error)

// Syncer coordinates a Store and per-key flight collapsing.
type Syncer struct {
	store cachestore.Store
	sfg   singleflight.Group
}

// New wraps an existing store.  The store's lifecycle belongs to the caller.
func New(store cachestore.Store) *Syncer {
	return &Syncer{store: store}
}

// FetchOrLoad implements the read-path algorithm described above.  ttl <= 0
// writes an already-expired entry (the load still runs, but nothing is
// kept); tags label the entry for invalidation.
func (s *Syncer) FetchOrLoad(ctx context.Context, key string, ttl time.Duration, tags []string, load Loader) (any, error) {
	if ent, ok := s.store.Get(key); ok {
		metrics.CacheHitsTotal.Inc()
		return ent.Value, nil
	}
	metrics.CacheMissesTotal.Inc()

	v, err, _ := s.sfg.Do(key, func() (any, error) {
		// Double-check after the singleflight barrier: a racing flight may
		// have populated the key while this caller queued.
		if ent, ok := s.store.Get(key); ok {
			return ent.Value, nil
		}

		// Detach the flight from the first caller's deadline; other
		// waiters share this fetch and must not lose it to one caller's
		// cancellation.
		val, err := load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err // never cached; next call is a fresh miss
		}
		s.store.Put(key, val, ttl, tags)
		return val, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Invalidate drops every entry carrying tag and reports the count.
// Subsequent FetchOrLoad calls for affected keys are misses regardless of
// remaining TTL.
func (s *Syncer) Invalidate(tag string) int {
	return s.store.InvalidateByTag(tag)
}

// Fetch is the typed wrapper around FetchOrLoad.  It recovers T from either
// a live in-memory entry or a JSON row served by the durable backing.
func Fetch[T any](ctx context.Context, s *Syncer, key string, ttl time.Duration, tags []string, load func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	v, err := s.FetchOrLoad(ctx, key, ttl, tags, func(ctx context.Context) (any, error) {
		return load(ctx)
	})
	if err != nil {
		return zero, err
	}

	switch val := v.(type) {
	case T:
		return val, nil
	case json.RawMessage:
		var out T
		if err := json.Unmarshal(val, &out); err != nil {
			return zero, err
		}
		return out, nil
	default:
		// A mismatched dynamic type means two call sites share a key with
		// different value types; surfacing it beats serving a zero value.
		return zero, fmt.Errorf("cache entry %q holds %T, want %T", key, v, zero)
	}
}
