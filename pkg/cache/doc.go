// Package cache holds fully assembled backend collections for the length of
// an operator session, with time-based invalidation.
//
// A Collection binds a Key, a Store, a TTL and the function that fetches the
// complete collection. Reads within the TTL are served without touching the
// network; the first read after the TTL refetches and replaces the entry.
//
// # Basic Usage
//
//	store := cache.NewMemoryStore()
//
//	users := cache.NewCollection(store, cache.Key{Session: sid, Resource: "users"}, cache.DefaultTTL,
//		func(ctx context.Context) ([]entity.User, error) {
//			return pagination.FetchAll(ctx, pagination.DefaultConfig("users"), apiClient.ListUsersPage)
//		})
//
//	all, err := users.GetOrFetch(ctx)
//
// # Stores
//
// MemoryStore keeps entries in process memory and is the default. RedisStore
// keeps one JSON value per key with a Redis expiry equal to the TTL, which
// moves large collections out of the dashboard process. In both stores an
// entry's data and its fetch timestamp are written and removed together.
//
// # Metrics
//
//   - admin_cache_hits_total{resource} - Fresh entries served
//   - admin_cache_misses_total{resource} - Missing or stale entries
//   - admin_cache_invalidations_total{resource} - Explicit invalidations
//   - admin_cache_errors_total{operation} - Store failures
package cache
