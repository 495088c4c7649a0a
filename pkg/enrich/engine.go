package enrich

import (
	"context"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

var (
	unitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "admin_enrich_units_total",
		Help: "Total enrichment units by outcome",
	}, []string{"outcome"}) // "ok", "failed"

	batchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "admin_enrich_batch_duration_seconds",
		Help:    "Duration of enrichment batches in seconds",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
	})
)

const (
	// DefaultMaxConcurrency is the number of units in flight at once.
	DefaultMaxConcurrency = 20

	// DefaultUnitTimeout bounds a single unit of work.
	DefaultUnitTimeout = 10 * time.Second
)

// Config holds enrichment engine configuration.
type Config struct {
	// MaxConcurrency is the maximum number of units running at once
	MaxConcurrency int

	// UnitTimeout bounds each unit; zero disables the per-unit deadline
	UnitTimeout time.Duration

	// OnProgress, when set, is called once per finished unit with the number
	// of finished units and the total. It runs on the collector goroutine.
	OnProgress func(done, total int)
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: DefaultMaxConcurrency,
		UnitTimeout:    DefaultUnitTimeout,
	}
}

// IDFunc returns the identifier of an entity. Entities with an empty ID are skipped.
type IDFunc[T any] func(T) string

// DeriveFunc computes the metric of one entity.
type DeriveFunc[T any] func(ctx context.Context, item T) (int, error)

// Entry is the enrichment result for one entity.
type Entry[T any] struct {
	ID          string `json:"id"`
	Item        T      `json:"item"`
	Metric      int    `json:"metric"`
	HasActivity bool   `json:"has_activity"`

	// Failed marks a unit whose lookup did not succeed. Its metric is 0.
	Failed bool `json:"failed"`

	// Index is the entity's position in the source collection.
	Index int `json:"index"`
}

// Result maps entity ID to its enrichment entry.
type Result[T any] struct {
	Entries  map[string]Entry[T]
	Duration time.Duration
}

// Total returns the number of entries.
func (r *Result[T]) Total() int {
	return len(r.Entries)
}

// Failures returns the number of failed units.
func (r *Result[T]) Failures() int {
	n := 0
	for _, e := range r.Entries {
		if e.Failed {
			n++
		}
	}
	return n
}

// Ordered returns the entries in source collection order.
func (r *Result[T]) Ordered() []Entry[T] {
	return SortByIndex(r.Entries)
}

// SortByIndex returns entries ordered by their source position.
func SortByIndex[T any](entries map[string]Entry[T]) []Entry[T] {
	out := make([]Entry[T], 0, len(entries))
	for _, e := range entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

type unit[T any] struct {
	id    string
	item  T
	index int
}

// Enrich runs derive for every entity with a non-empty ID and collects the
// results. When an ID occurs more than once only its first occurrence is
// enriched. Cancelling ctx makes the remaining units fail fast; Enrich still
// returns one entry per ID.
func Enrich[T any](ctx context.Context, items []T, idOf IDFunc[T], derive DeriveFunc[T], cfg Config) *Result[T] {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = DefaultMaxConcurrency
	}

	start := time.Now()
	logger := log.With().Str("component", "enrich").Logger()

	units := make([]unit[T], 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		id := idOf(item)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		units = append(units, unit[T]{id: id, item: item, index: i})
	}

	total := len(units)
	results := make(chan Entry[T], cfg.MaxConcurrency)
	entries := make(map[string]Entry[T], total)

	// Collector: single owner of entries and the progress counter.
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		done := 0
		for e := range results {
			entries[e.ID] = e
			done++
			if e.Failed {
				unitsTotal.WithLabelValues("failed").Inc()
			} else {
				unitsTotal.WithLabelValues("ok").Inc()
			}
			if cfg.OnProgress != nil {
				cfg.OnProgress(done, total)
			}
		}
	}()

	var g errgroup.Group
	g.SetLimit(cfg.MaxConcurrency)
	for _, u := range units {
		g.Go(func() error {
			results <- runUnit(ctx, u, derive, cfg.UnitTimeout)
			return nil
		})
	}
	g.Wait()
	close(results)
	<-collected

	result := &Result[T]{Entries: entries, Duration: time.Since(start)}
	batchDuration.Observe(result.Duration.Seconds())

	event := logger.Info()
	if failures := result.Failures(); failures > 0 {
		event = logger.Warn().Int("failed", failures)
	}
	event.
		Int("total", total).
		Int("max_concurrency", cfg.MaxConcurrency).
		Dur("duration", result.Duration).
		Msg("Enrichment complete")

	return result
}

// runUnit derives one metric, converting errors, timeouts and panics into a
// failed entry.
func runUnit[T any](ctx context.Context, u unit[T], derive DeriveFunc[T], timeout time.Duration) (entry Entry[T]) {
	entry = Entry[T]{ID: u.id, Item: u.item, Index: u.index}

	defer func() {
		if r := recover(); r != nil {
			log.Warn().Str("component", "enrich").Str("unit_id", u.id).Interface("panic", r).Msg("Enrichment unit panicked")
			entry.Metric, entry.HasActivity, entry.Failed = 0, false, true
		}
	}()

	unitCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		unitCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	// A metric derived successfully is kept even if the deadline passed
	// right after; the timeout only matters to derive calls that honour it.
	metric, err := derive(unitCtx, u.item)
	if err != nil {
		log.Debug().Str("component", "enrich").Str("unit_id", u.id).Err(err).Msg("Enrichment unit failed")
		entry.Failed = true
		return entry
	}

	entry.Metric = metric
	entry.HasActivity = metric > 0
	return entry
}
