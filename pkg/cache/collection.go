package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultTTL is the lifetime of a cached base collection.
	DefaultTTL = 30 * time.Minute

	// DefaultEnrichmentTTL is the lifetime of a cached enrichment result.
	DefaultEnrichmentTTL = 15 * time.Minute
)

// FetchFunc retrieves a complete collection from the backend.
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// Option configures a Collection.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// Collection is a cached, fully assembled backend collection.
type Collection[T any] struct {
	store  Store
	key    Key
	ttl    time.Duration
	fetch  FetchFunc[T]
	now    func() time.Time
	logger zerolog.Logger

	// mu serializes refreshes so concurrent readers share one fetch.
	mu sync.Mutex
}

// NewCollection creates a cached collection. A non-positive ttl uses DefaultTTL.
func NewCollection[T any](store Store, key Key, ttl time.Duration, fetch FetchFunc[T], opts ...Option) *Collection[T] {
	if store == nil {
		panic("cache store cannot be nil")
	}
	if fetch == nil {
		panic("fetch func cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	return &Collection[T]{
		store:  store,
		key:    key,
		ttl:    ttl,
		fetch:  fetch,
		now:    o.now,
		logger: log.With().Str("component", "cache").Str("resource", key.Resource).Logger(),
	}
}

// Key returns the key the collection is stored under.
func (c *Collection[T]) Key() Key {
	return c.key
}

// TTL returns the configured time-to-live.
func (c *Collection[T]) TTL() time.Duration {
	return c.ttl
}

// GetOrFetch returns the cached collection when it is fresh, without any
// network call. Otherwise it fetches, stores the result stamped with the
// current time and returns it.
//
// A failed fetch is not cached: whatever the fetch returned is passed back
// with the error and the next call fetches again.
func (c *Collection[T]) GetOrFetch(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if items, ok := c.fresh(ctx); ok {
		CacheHits.WithLabelValues(c.key.Resource).Inc()
		c.logger.Debug().Int("count", len(items)).Msg("Cache hit")
		return items, nil
	}
	CacheMisses.WithLabelValues(c.key.Resource).Inc()
	c.logger.Debug().Msg("Cache miss")

	return c.refresh(ctx)
}

// Refresh discards the cached collection and fetches it again.
func (c *Collection[T]) Refresh(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.delete(ctx); err != nil {
		return nil, err
	}
	return c.refresh(ctx)
}

// IsStale reports whether the collection would be refetched by GetOrFetch.
// An absent entry is stale.
func (c *Collection[T]) IsStale(ctx context.Context) bool {
	entry, err := c.store.Get(ctx, c.key)
	if err != nil {
		return true
	}
	return entry.IsStale(c.now(), c.ttl)
}

// Invalidate removes the cached collection and its timestamp.
func (c *Collection[T]) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.delete(ctx)
}

// FetchedAt returns when the cached collection was fetched.
func (c *Collection[T]) FetchedAt(ctx context.Context) (time.Time, bool) {
	entry, err := c.store.Get(ctx, c.key)
	if err != nil {
		return time.Time{}, false
	}
	return entry.CachedAt, true
}

// Peek returns the cached collection and its fetch time without fetching,
// whether or not it is stale.
func (c *Collection[T]) Peek(ctx context.Context) ([]T, time.Time, bool) {
	entry, err := c.store.Get(ctx, c.key)
	if err != nil {
		return nil, time.Time{}, false
	}
	items, err := c.decode(entry)
	if err != nil {
		return nil, time.Time{}, false
	}
	return items, entry.CachedAt, true
}

func (c *Collection[T]) fresh(ctx context.Context) ([]T, bool) {
	entry, err := c.store.Get(ctx, c.key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.logger.Warn().Err(err).Msg("Cache read failed")
		}
		return nil, false
	}
	if entry.IsStale(c.now(), c.ttl) {
		return nil, false
	}

	items, err := c.decode(entry)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Discarding unreadable cache entry")
		return nil, false
	}
	return items, true
}

func (c *Collection[T]) refresh(ctx context.Context) ([]T, error) {
	start := c.now()
	items, err := c.fetch(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Int("fetched", len(items)).Msg("Fetch failed, result not cached")
		return items, err
	}
	if items == nil {
		items = []T{}
	}

	data, err := json.Marshal(items)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		c.logger.Warn().Err(err).Msg("Encoding collection for cache failed")
		return items, nil
	}

	entry := &Entry{Data: data, CachedAt: c.now()}
	if err := c.store.Set(ctx, c.key, entry, c.ttl); err != nil {
		c.logger.Warn().Err(err).Msg("Cache write failed")
		return items, nil
	}

	c.logger.Info().
		Int("count", len(items)).
		Dur("ttl", c.ttl).
		Dur("duration", c.now().Sub(start)).
		Msg("Collection cached")
	return items, nil
}

func (c *Collection[T]) delete(ctx context.Context) error {
	if err := c.store.Delete(ctx, c.key); err != nil {
		return fmt.Errorf("invalidate %s: %w", c.key.Resource, err)
	}
	CacheInvalidations.WithLabelValues(c.key.Resource).Inc()
	c.logger.Debug().Msg("Cache invalidated")
	return nil
}

func (c *Collection[T]) decode(entry *Entry) ([]T, error) {
	var items []T
	if err := json.Unmarshal(entry.Data, &items); err != nil {
		CacheErrors.WithLabelValues("decode").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}
