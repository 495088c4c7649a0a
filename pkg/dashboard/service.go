// Package dashboard builds the read models the presentation shell renders:
// user statistics, the contributor ranking, searches and page views over the
// cached collections. Writes go straight to the backend and invalidate the
// affected caches.
package dashboard

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/swecha-admin/pkg/client"
	"github.com/Sternrassler/swecha-admin/pkg/enrich"
	"github.com/Sternrassler/swecha-admin/pkg/entity"
	"github.com/Sternrassler/swecha-admin/pkg/session"
	"github.com/Sternrassler/swecha-admin/pkg/stats"
)

// DefaultTopN is the size of the contributor ranking.
const DefaultTopN = 10

// Service serves dashboard views for one session.
type Service struct {
	session *session.Session
	logger  zerolog.Logger
}

// New creates a dashboard service.
func New(s *session.Session) *Service {
	return &Service{
		session: s,
		logger:  log.With().Str("component", "dashboard").Str("session", s.ID()).Logger(),
	}
}

// Session returns the underlying session.
func (d *Service) Session() *session.Session {
	return d.session
}

// Page is a slice of a cached collection.
type Page[T any] struct {
	Items []T `json:"items"`
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// Contributor is one row of the contributor ranking.
type Contributor struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Contributions int    `json:"contributions"`
}

// ActivityReport summarizes the contribution activity of all users.
type ActivityReport struct {
	Users           int           `json:"users"`
	ActiveUsers     int           `json:"active_users"`
	ActivityRate    float64       `json:"activity_rate"`
	FailedLookups   int           `json:"failed_lookups"`
	TopContributors []Contributor `json:"top_contributors"`
}

// CacheStatus describes one cached collection.
type CacheStatus struct {
	Resource  string    `json:"resource"`
	Cached    bool      `json:"cached"`
	Count     int       `json:"count"`
	FetchedAt time.Time `json:"fetched_at,omitempty"`
	Stale     bool      `json:"stale"`
}

// UserStatistics returns totals, active share and gender breakdown over the
// complete user collection.
func (d *Service) UserStatistics(ctx context.Context) (stats.UserSummary, error) {
	if err := d.session.Require(); err != nil {
		return stats.UserSummary{}, err
	}
	users, err := d.session.Users.GetOrFetch(ctx)
	if err != nil {
		return stats.UserSummary{}, err
	}
	return stats.SummarizeUsers(users), nil
}

// ActivityReport enriches every user with their contribution count and ranks
// the top contributors. A non-positive top uses DefaultTopN.
func (d *Service) ActivityReport(ctx context.Context, top int) (*ActivityReport, error) {
	if err := d.session.Require(); err != nil {
		return nil, err
	}
	if top <= 0 {
		top = DefaultTopN
	}

	activity, err := d.session.Activity.GetOrFetch(ctx)
	if err != nil {
		return nil, err
	}

	entries := make(map[string]enrich.Entry[entity.User], len(activity))
	report := &ActivityReport{Users: len(activity)}
	for _, e := range activity {
		entries[e.ID] = e
		if e.HasActivity {
			report.ActiveUsers++
		}
		if e.Failed {
			report.FailedLookups++
		}
	}
	report.ActivityRate = stats.ActivityRate(entries)

	ranked := stats.TopN(entries, top)
	report.TopContributors = make([]Contributor, 0, len(ranked))
	for _, e := range ranked {
		report.TopContributors = append(report.TopContributors, Contributor{
			ID:            e.ID,
			Name:          e.Item.Name,
			Phone:         e.Item.Phone,
			Contributions: e.Metric,
		})
	}

	if report.FailedLookups > 0 {
		d.logger.Warn().Int("failed", report.FailedLookups).Msg("Activity report built with failed lookups")
	}
	return report, nil
}

// SearchUsersByName returns the cached users whose name equals name, ignoring
// case and surrounding spaces.
func (d *Service) SearchUsersByName(ctx context.Context, name string) ([]entity.User, error) {
	if err := d.session.Require(); err != nil {
		return nil, err
	}
	users, err := d.session.Users.GetOrFetch(ctx)
	if err != nil {
		return nil, err
	}

	want := strings.ToLower(strings.TrimSpace(name))
	matches := []entity.User{}
	if want == "" {
		return matches, nil
	}
	for _, u := range users {
		if strings.ToLower(strings.TrimSpace(u.Name)) == want {
			matches = append(matches, u)
		}
	}
	return matches, nil
}

// UsersPage returns a page of the cached user collection.
func (d *Service) UsersPage(ctx context.Context, skip, limit int) (Page[entity.User], error) {
	if err := d.session.Require(); err != nil {
		return Page[entity.User]{}, err
	}
	users, err := d.session.Users.GetOrFetch(ctx)
	if err != nil {
		return Page[entity.User]{}, err
	}
	return paginate(users, skip, limit), nil
}

// RecordsPage returns a page of the cached record collection.
func (d *Service) RecordsPage(ctx context.Context, skip, limit int) (Page[entity.Record], error) {
	if err := d.session.Require(); err != nil {
		return Page[entity.Record]{}, err
	}
	records, err := d.session.Records.GetOrFetch(ctx)
	if err != nil {
		return Page[entity.Record]{}, err
	}
	return paginate(records, skip, limit), nil
}

// Categories returns the cached category list.
func (d *Service) Categories(ctx context.Context) ([]entity.Category, error) {
	if err := d.session.Require(); err != nil {
		return nil, err
	}
	return d.session.Categories.GetOrFetch(ctx)
}

// GetUser fetches one user directly from the backend.
func (d *Service) GetUser(ctx context.Context, id string) (*entity.User, error) {
	if err := d.session.Require(); err != nil {
		return nil, err
	}
	return d.session.Client().GetUser(ctx, id)
}

// CreateUser creates a user and drops the cached users and activity.
func (d *Service) CreateUser(ctx context.Context, req entity.UserCreate) (client.Result, error) {
	return d.write(ctx, d.invalidateUsers, func() (client.Result, error) {
		return d.session.Client().CreateUser(ctx, req)
	})
}

// UpdateUser updates a user and drops the cached users and activity.
func (d *Service) UpdateUser(ctx context.Context, id string, req entity.UserUpdate) (client.Result, error) {
	return d.write(ctx, d.invalidateUsers, func() (client.Result, error) {
		return d.session.Client().UpdateUser(ctx, id, req)
	})
}

// DeleteUser deletes a user and drops the cached users and activity.
func (d *Service) DeleteUser(ctx context.Context, id string) (client.Result, error) {
	return d.write(ctx, d.invalidateUsers, func() (client.Result, error) {
		return d.session.Client().DeleteUser(ctx, id)
	})
}

// CacheInfo reports the state of every cached collection of the session.
func (d *Service) CacheInfo(ctx context.Context) []CacheStatus {
	s := d.session
	return []CacheStatus{
		status(ctx, session.ResourceUsers, s.Users.Peek, s.Users.IsStale),
		status(ctx, session.ResourceRecords, s.Records.Peek, s.Records.IsStale),
		status(ctx, session.ResourceCategories, s.Categories.Peek, s.Categories.IsStale),
		status(ctx, session.ResourceUserActivity, s.Activity.Peek, s.Activity.IsStale),
	}
}

// Refresh drops every cached collection; the next read refetches.
func (d *Service) Refresh(ctx context.Context) error {
	if err := d.session.Require(); err != nil {
		return err
	}
	d.logger.Info().Msg("Cache refresh requested")
	return d.session.InvalidateAll(ctx)
}

func (d *Service) invalidateUsers(ctx context.Context) {
	d.invalidate(ctx, d.session.Users.Invalidate, d.session.Activity.Invalidate)
}

func status[T any](ctx context.Context, resource string,
	peek func(context.Context) ([]T, time.Time, bool), stale func(context.Context) bool) CacheStatus {
	items, fetchedAt, ok := peek(ctx)
	return CacheStatus{
		Resource:  resource,
		Cached:    ok,
		Count:     len(items),
		FetchedAt: fetchedAt,
		Stale:     stale(ctx),
	}
}

func paginate[T any](items []T, skip, limit int) Page[T] {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = len(items)
	}
	page := Page[T]{Skip: skip, Limit: limit, Total: len(items), Items: []T{}}
	if skip >= len(items) {
		return page
	}
	// Clamp before adding so a huge limit cannot overflow.
	n := min(limit, len(items)-skip)
	page.Items = items[skip : skip+n]
	return page
}
