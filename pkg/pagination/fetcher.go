package pagination

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

var (
	pagesFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "admin_pages_fetched_total",
		Help: "Total pages fetched from paginated endpoints by resource",
	}, []string{"resource"})

	fetchAbortedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "admin_fetch_aborted_total",
		Help: "Total paginated fetches aborted by a failed page, by resource",
	}, []string{"resource"})
)

// ErrTooManyPages is returned when a fetch reaches Config.MaxPages without
// seeing the end of the collection.
var ErrTooManyPages = errors.New("page limit reached before end of collection")

const (
	// DefaultPageSize is the limit sent with every page request.
	DefaultPageSize = 1000

	// DefaultMaxPages bounds a fetch against a backend that ignores skip.
	DefaultMaxPages = 10000
)

// Config holds fetcher configuration.
type Config struct {
	// Resource labels logs and metrics (e.g. "users").
	Resource string

	// PageSize is the number of items requested per page.
	PageSize int

	// MaxPages is the maximum number of requests for one collection.
	MaxPages int
}

// DefaultConfig returns the default configuration for a resource.
func DefaultConfig(resource string) Config {
	return Config{
		Resource: resource,
		PageSize: DefaultPageSize,
		MaxPages: DefaultMaxPages,
	}
}

// PageFunc fetches the page starting at offset skip with at most limit items.
// A non-nil error aborts the fetch.
type PageFunc[T any] func(ctx context.Context, skip, limit int) ([]T, error)

// FetchAll retrieves every item of a collection in server order.
//
// On failure the items fetched before the failing page are returned together
// with the error; the caller decides whether to use or discard them.
func FetchAll[T any](ctx context.Context, cfg Config, fetch PageFunc[T]) ([]T, error) {
	if fetch == nil {
		return nil, fmt.Errorf("page func is required")
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultMaxPages
	}

	start := time.Now()
	logger := log.With().Str("component", "pagination").Str("resource", cfg.Resource).Logger()

	var items []T
	for page := 0; page < cfg.MaxPages; page++ {
		skip := page * cfg.PageSize

		if err := ctx.Err(); err != nil {
			fetchAbortedTotal.WithLabelValues(cfg.Resource).Inc()
			return items, err
		}

		batch, err := fetch(ctx, skip, cfg.PageSize)
		if err != nil {
			fetchAbortedTotal.WithLabelValues(cfg.Resource).Inc()
			logger.Warn().
				Err(err).
				Int("skip", skip).
				Int("fetched", len(items)).
				Msg("Paginated fetch aborted")
			return items, fmt.Errorf("fetch %s page at skip %d: %w", cfg.Resource, skip, err)
		}
		pagesFetchedTotal.WithLabelValues(cfg.Resource).Inc()

		logger.Debug().
			Int("skip", skip).
			Int("limit", cfg.PageSize).
			Int("count", len(batch)).
			Msg("Page fetched")

		items = append(items, batch...)

		if len(batch) < cfg.PageSize {
			logger.Info().
				Int("total", len(items)).
				Int("pages", page+1).
				Dur("duration", time.Since(start)).
				Msg("Paginated fetch complete")
			if items == nil {
				items = []T{}
			}
			return items, nil
		}
	}

	fetchAbortedTotal.WithLabelValues(cfg.Resource).Inc()
	logger.Warn().Int("max_pages", cfg.MaxPages).Int("fetched", len(items)).Msg("Page limit reached")
	return items, fmt.Errorf("fetch %s: %w (%d pages)", cfg.Resource, ErrTooManyPages, cfg.MaxPages)
}
