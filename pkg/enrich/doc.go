// Package enrich derives one metric per entity of a collection by running a
// bounded pool of concurrent lookups, one unit of work per entity.
//
// Example usage:
//
//	result := enrich.Enrich(ctx, users,
//		func(u entity.User) string { return u.ID },
//		func(ctx context.Context, u entity.User) (int, error) {
//			return apiClient.ContributionCount(ctx, u.ID)
//		},
//		enrich.DefaultConfig())
//
// The engine:
//   - Runs at most MaxConcurrency units at a time (default 20)
//   - Isolates failures: a failed, timed-out or panicking unit is recorded
//     with metric 0 and Failed set, and never aborts the batch
//   - Sends unit results over a channel to a single collector goroutine,
//     which alone owns the result map and the progress counter
//   - Never returns an error; every entity with a non-empty ID is present
//     in the result exactly once
package enrich
