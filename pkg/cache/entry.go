package cache

import (
	"encoding/json"
	"time"
)

// Entry is one cached collection together with the time it was fetched.
// Data and CachedAt are always stored and removed as a unit.
type Entry struct {
	// Data is the JSON-encoded collection
	Data json.RawMessage `json:"data"`

	// CachedAt is when the collection was fetched from the backend
	CachedAt time.Time `json:"cached_at"`
}

// Age returns how long ago the entry was fetched.
func (e *Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.CachedAt)
}

// IsStale reports whether the entry is older than ttl. A nil entry is stale.
func (e *Entry) IsStale(now time.Time, ttl time.Duration) bool {
	if e == nil {
		return true
	}
	return e.Age(now) > ttl
}
