// Package pagination assembles complete collections from skip/limit paginated
// backend endpoints.
//
// Example usage:
//
//	users, err := pagination.FetchAll(ctx, pagination.DefaultConfig("users"),
//		func(ctx context.Context, skip, limit int) ([]entity.User, error) {
//			return apiClient.ListUsersPage(ctx, skip, limit)
//		})
//
// The fetcher:
//   - Requests offsets 0, P, 2P, ... strictly one page at a time
//   - Stops on an empty page or a page shorter than the page size
//   - Issues one trailing request when the collection size is an exact
//     multiple of the page size (the backend reports no total)
//   - Aborts on the first failed page and returns the prefix fetched so far
//     together with the error; it never retries
package pagination
