package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// KeyPrefix starts every cache key.
const KeyPrefix = "admin"

// Key identifies one cached collection.
type Key struct {
	// Session namespaces keys per operator session ("" for the shared default)
	Session string

	// Resource is the collection name (e.g. "users", "user_activity")
	Resource string

	// Query holds parameters that select a variant of the collection
	Query url.Values
}

// String generates a deterministic cache key string.
// Format: admin:session:resource:query1=val1:query2=val2
//
// Example:
//
//	admin:3f6c...:users
func (k Key) String() string {
	parts := []string{KeyPrefix, k.namespace()}

	if resource := strings.Trim(k.Resource, ":"); resource != "" {
		parts = append(parts, resource)
	}

	// Query params sorted for determinism
	if len(k.Query) > 0 {
		queryKeys := make([]string, 0, len(k.Query))
		for key := range k.Query {
			queryKeys = append(queryKeys, key)
		}
		sort.Strings(queryKeys)

		for _, key := range queryKeys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, k.Query.Get(key)))
		}
	}

	return strings.Join(parts, ":")
}

// SessionPrefix returns the prefix shared by every key of a session.
func SessionPrefix(session string) string {
	return Key{Session: session}.String() + ":"
}

func (k Key) namespace() string {
	if k.Session == "" {
		return "default"
	}
	return k.Session
}
