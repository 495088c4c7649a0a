package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStore_SetGetDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	key := Key{Session: "s-1", Resource: "users"}

	if _, err := store.Get(ctx, key); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}

	cachedAt := time.Now()
	if err := store.Set(ctx, key, &Entry{Data: []byte(`[1,2]`), CachedAt: cachedAt}, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got.Data) != "[1,2]" || !got.CachedAt.Equal(cachedAt) {
		t.Errorf("unexpected entry: %+v", got)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Get(ctx, key); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss after delete, got %v", err)
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Errorf("deleting a missing key should not fail: %v", err)
	}
}

func TestMemoryStore_SetNil(t *testing.T) {
	if err := NewMemoryStore().Set(context.Background(), Key{Resource: "x"}, nil, time.Minute); err == nil {
		t.Error("expected error for nil entry")
	}
}

func TestMemoryStore_Clear(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for _, key := range []Key{
		{Session: "s-1", Resource: "users"},
		{Session: "s-1", Resource: "user_activity"},
		{Session: "s-2", Resource: "users"},
	} {
		if err := store.Set(ctx, key, &Entry{Data: []byte(`[]`)}, time.Minute); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	if err := store.Clear(ctx, "s-1"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1", store.Len())
	}
	if _, err := store.Get(ctx, Key{Session: "s-2", Resource: "users"}); err != nil {
		t.Errorf("other session entry should survive: %v", err)
	}
}
