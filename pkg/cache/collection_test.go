package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeClock is a settable clock for TTL tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// countingFetch returns a FetchFunc that yields n items and counts calls.
func countingFetch(n int, calls *atomic.Int32) FetchFunc[item] {
	return func(ctx context.Context) ([]item, error) {
		calls.Add(1)
		items := make([]item, n)
		for i := range items {
			items[i] = item{ID: string(rune('a' + i)), Name: "item"}
		}
		return items, nil
	}
}

func TestCollection_GetOrFetchReusesFreshEntry(t *testing.T) {
	clock := newFakeClock()
	var calls atomic.Int32
	c := NewCollection(NewMemoryStore(), Key{Session: "s", Resource: "items"}, 30*time.Minute,
		countingFetch(3, &calls), WithClock(clock.Now))
	ctx := context.Background()

	first, err := c.GetOrFetch(ctx)
	if err != nil {
		t.Fatalf("GetOrFetch failed: %v", err)
	}
	if len(first) != 3 {
		t.Fatalf("got %d items, want 3", len(first))
	}

	clock.Advance(29 * time.Minute)
	second, err := c.GetOrFetch(ctx)
	if err != nil {
		t.Fatalf("GetOrFetch failed: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("fetch calls = %d, want 1 within TTL", calls.Load())
	}
	if len(second) != 3 || second[0] != first[0] {
		t.Errorf("cached collection differs: %+v", second)
	}

	clock.Advance(2 * time.Minute)
	if !c.IsStale(ctx) {
		t.Error("collection should be stale after 31 minutes")
	}
	if _, err := c.GetOrFetch(ctx); err != nil {
		t.Fatalf("GetOrFetch failed: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("fetch calls = %d, want 2 after TTL", calls.Load())
	}
	if c.IsStale(ctx) {
		t.Error("collection should be fresh after refetch")
	}
}

func TestCollection_IsStale(t *testing.T) {
	clock := newFakeClock()
	var calls atomic.Int32
	c := NewCollection(NewMemoryStore(), Key{Resource: "items"}, 15*time.Minute,
		countingFetch(1, &calls), WithClock(clock.Now))
	ctx := context.Background()

	if !c.IsStale(ctx) {
		t.Error("absent entry should be stale")
	}
	if _, ok := c.FetchedAt(ctx); ok {
		t.Error("FetchedAt should report no entry")
	}

	c.GetOrFetch(ctx)
	fetchedAt, ok := c.FetchedAt(ctx)
	if !ok || !fetchedAt.Equal(clock.Now()) {
		t.Errorf("FetchedAt = %v, %v", fetchedAt, ok)
	}

	clock.Advance(15 * time.Minute)
	if c.IsStale(ctx) {
		t.Error("entry exactly at TTL should not be stale")
	}
	clock.Advance(time.Second)
	if !c.IsStale(ctx) {
		t.Error("entry past TTL should be stale")
	}
}

func TestCollection_InvalidateForcesRefetch(t *testing.T) {
	var calls atomic.Int32
	c := NewCollection(NewMemoryStore(), Key{Resource: "items"}, time.Hour, countingFetch(2, &calls))
	ctx := context.Background()

	c.GetOrFetch(ctx)
	if err := c.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}
	if !c.IsStale(ctx) {
		t.Error("invalidated collection should be stale")
	}
	if _, _, ok := c.Peek(ctx); ok {
		t.Error("Peek should find nothing after Invalidate")
	}

	c.GetOrFetch(ctx)
	if calls.Load() != 2 {
		t.Errorf("fetch calls = %d, want 2", calls.Load())
	}
}

func TestCollection_Refresh(t *testing.T) {
	var calls atomic.Int32
	c := NewCollection(NewMemoryStore(), Key{Resource: "items"}, time.Hour, countingFetch(2, &calls))
	ctx := context.Background()

	c.GetOrFetch(ctx)
	if _, err := c.Refresh(ctx); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("fetch calls = %d, want 2", calls.Load())
	}
}

func TestCollection_FailedFetchNotCached(t *testing.T) {
	fetchErr := errors.New("Error 500: boom")
	var calls atomic.Int32
	fetch := func(ctx context.Context) ([]item, error) {
		calls.Add(1)
		return []item{{ID: "partial"}}, fetchErr
	}

	c := NewCollection(NewMemoryStore(), Key{Resource: "items"}, time.Hour, fetch)
	ctx := context.Background()

	got, err := c.GetOrFetch(ctx)
	if !errors.Is(err, fetchErr) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if len(got) != 1 || got[0].ID != "partial" {
		t.Errorf("partial result not passed through: %+v", got)
	}
	if !c.IsStale(ctx) {
		t.Error("failed fetch must not populate the cache")
	}

	c.GetOrFetch(ctx)
	if calls.Load() != 2 {
		t.Errorf("fetch calls = %d, want 2", calls.Load())
	}
}

func TestCollection_Peek(t *testing.T) {
	clock := newFakeClock()
	var calls atomic.Int32
	c := NewCollection(NewMemoryStore(), Key{Resource: "items"}, time.Minute,
		countingFetch(4, &calls), WithClock(clock.Now))
	ctx := context.Background()

	c.GetOrFetch(ctx)
	clock.Advance(time.Hour)

	items, fetchedAt, ok := c.Peek(ctx)
	if !ok || len(items) != 4 {
		t.Fatalf("Peek = %d items, %v", len(items), ok)
	}
	if !fetchedAt.Equal(clock.Now().Add(-time.Hour)) {
		t.Errorf("fetchedAt = %v", fetchedAt)
	}
	if calls.Load() != 1 {
		t.Error("Peek must not fetch")
	}
}

func TestCollection_EmptyCollection(t *testing.T) {
	fetch := func(ctx context.Context) ([]item, error) { return nil, nil }
	c := NewCollection(NewMemoryStore(), Key{Resource: "items"}, time.Hour, fetch)
	ctx := context.Background()

	got, err := c.GetOrFetch(ctx)
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("GetOrFetch = %v, %v; want empty non-nil", got, err)
	}
	if c.IsStale(ctx) {
		t.Error("empty collection should still be cached")
	}
}

func TestCollection_ConcurrentReadersShareFetch(t *testing.T) {
	var calls atomic.Int32
	fetch := func(ctx context.Context) ([]item, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return []item{{ID: "a"}}, nil
	}
	c := NewCollection(NewMemoryStore(), Key{Resource: "items"}, time.Hour, fetch)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.GetOrFetch(context.Background())
		}()
	}
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("fetch calls = %d, want 1", calls.Load())
	}
}

func TestCollection_CorruptEntryRefetches(t *testing.T) {
	store := NewMemoryStore()
	key := Key{Resource: "items"}
	ctx := context.Background()
	store.Set(ctx, key, &Entry{Data: []byte(`{not json`), CachedAt: time.Now()}, time.Hour)

	var calls atomic.Int32
	c := NewCollection(store, key, time.Hour, countingFetch(1, &calls))
	got, err := c.GetOrFetch(ctx)
	if err != nil || len(got) != 1 {
		t.Fatalf("GetOrFetch = %v, %v", got, err)
	}
	if calls.Load() != 1 {
		t.Errorf("fetch calls = %d, want 1", calls.Load())
	}
}

func TestNewCollection_Defaults(t *testing.T) {
	c := NewCollection(NewMemoryStore(), Key{Resource: "items"}, 0,
		func(ctx context.Context) ([]item, error) { return nil, nil })
	if c.TTL() != DefaultTTL {
		t.Errorf("TTL() = %v, want %v", c.TTL(), DefaultTTL)
	}
}
