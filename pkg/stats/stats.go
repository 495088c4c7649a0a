// Package stats computes aggregate statistics over cached collections and
// enrichment results. Every function is pure and deterministic.
package stats

import (
	"sort"
	"strings"

	"github.com/Sternrassler/swecha-admin/pkg/enrich"
	"github.com/Sternrassler/swecha-admin/pkg/entity"
)

// Gender buckets produced by NormalizeGender.
const (
	GenderMale    = "male"
	GenderFemale  = "female"
	GenderOther   = "other"
	GenderUnknown = "unknown"
)

// Total returns the number of items in a collection.
func Total[T any](items []T) int {
	return len(items)
}

// ActivityRate returns the percentage of entries with a nonzero metric, or 0
// for an empty result.
func ActivityRate[T any](entries map[string]enrich.Entry[T]) float64 {
	if len(entries) == 0 {
		return 0
	}
	active := 0
	for _, e := range entries {
		if e.Metric != 0 {
			active++
		}
	}
	return float64(active) / float64(len(entries)) * 100
}

// CategoricalBreakdown counts items per bucket. field extracts the raw value
// and normalize maps it to a bucket; a nil normalize uses the raw value. Only
// buckets that occur appear in the result.
func CategoricalBreakdown[T any](items []T, field func(T) string, normalize func(string) string) map[string]int {
	counts := make(map[string]int)
	for _, item := range items {
		bucket := field(item)
		if normalize != nil {
			bucket = normalize(bucket)
		}
		counts[bucket]++
	}
	return counts
}

// NormalizeGender maps free-form gender values onto male, female, other or
// unknown. Placeholders such as "string" or "null" are unknown.
func NormalizeGender(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "male", "m":
		return GenderMale
	case "female", "f":
		return GenderFemale
	case "other", "o":
		return GenderOther
	default:
		return GenderUnknown
	}
}

// GenderBreakdown counts users per normalized gender.
func GenderBreakdown(users []entity.User) map[string]int {
	return CategoricalBreakdown(users, func(u entity.User) string { return u.Gender }, NormalizeGender)
}

// TopN returns the n entries with the highest metric. Ties keep source
// collection order. n larger than the number of entries returns them all.
func TopN[T any](entries map[string]enrich.Entry[T], n int) []enrich.Entry[T] {
	if n <= 0 {
		return []enrich.Entry[T]{}
	}

	ordered := enrich.SortByIndex(entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Metric > ordered[j].Metric
	})

	if n < len(ordered) {
		ordered = ordered[:n]
	}
	return ordered
}

// CountActive returns the number of users flagged active.
func CountActive(users []entity.User) int {
	n := 0
	for _, u := range users {
		if u.IsActive {
			n++
		}
	}
	return n
}

// Percent returns part as a percentage of whole, or 0 when whole is 0.
func Percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// Percentages converts a breakdown into percentages of total.
func Percentages(breakdown map[string]int, total int) map[string]float64 {
	out := make(map[string]float64, len(breakdown))
	for bucket, n := range breakdown {
		out[bucket] = Percent(n, total)
	}
	return out
}

// UserSummary is the statistics block of the users view.
type UserSummary struct {
	Total         int                `json:"total"`
	Active        int                `json:"active"`
	Inactive      int                `json:"inactive"`
	ActivePercent float64            `json:"active_percent"`
	Gender        map[string]int     `json:"gender"`
	GenderPercent map[string]float64 `json:"gender_percent"`
}

// SummarizeUsers computes the user statistics block.
func SummarizeUsers(users []entity.User) UserSummary {
	total := Total(users)
	active := CountActive(users)
	gender := GenderBreakdown(users)
	return UserSummary{
		Total:         total,
		Active:        active,
		Inactive:      total - active,
		ActivePercent: Percent(active, total),
		Gender:        gender,
		GenderPercent: Percentages(gender, total),
	}
}
