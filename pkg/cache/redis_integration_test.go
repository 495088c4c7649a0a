//go:build integration

package cache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedisContainer starts a Redis container for integration testing.
func setupRedisContainer(t *testing.T) *redis.Client {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	t.Cleanup(func() {
		redisClient.Close()
		container.Terminate(ctx)
	})

	return redisClient
}

func TestRedisStoreIntegration(t *testing.T) {
	client := setupRedisContainer(t)

	t.Run("round trip", func(t *testing.T) {
		testStoreRoundTrip(t, NewRedisStore(client))
	})

	t.Run("clear", func(t *testing.T) {
		testStoreClear(t, NewRedisStore(client))
	})
}

func TestCollectionIntegration_SurvivesNewCollection(t *testing.T) {
	store := NewRedisStore(setupRedisContainer(t))
	ctx := context.Background()
	key := Key{Session: "s-1", Resource: "items"}

	var calls atomic.Int32
	first := NewCollection(store, key, 30*time.Minute, countingFetch(5, &calls))
	if _, err := first.GetOrFetch(ctx); err != nil {
		t.Fatalf("GetOrFetch failed: %v", err)
	}

	// A second collection on the same key, as after a dashboard restart.
	second := NewCollection(store, key, 30*time.Minute, countingFetch(5, &calls))
	got, err := second.GetOrFetch(ctx)
	if err != nil {
		t.Fatalf("GetOrFetch failed: %v", err)
	}
	if len(got) != 5 {
		t.Errorf("got %d items, want 5", len(got))
	}
	if calls.Load() != 1 {
		t.Errorf("fetch calls = %d, want 1", calls.Load())
	}

	if err := second.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}
	if !first.IsStale(ctx) {
		t.Error("invalidation should be visible to every collection on the key")
	}
}
