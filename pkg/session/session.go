// Package session holds the state of one logged-in operator: the API client
// with its token, and the cached collections derived from it.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/swecha-admin/pkg/cache"
	"github.com/Sternrassler/swecha-admin/pkg/client"
	"github.com/Sternrassler/swecha-admin/pkg/enrich"
	"github.com/Sternrassler/swecha-admin/pkg/entity"
	"github.com/Sternrassler/swecha-admin/pkg/pagination"
)

var (
	// ErrNotAuthenticated is returned by operations that need a logged-in operator.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrNotAdmin is returned when OTP verification succeeds for an operator
	// without the admin role.
	ErrNotAdmin = errors.New("access denied: admin role required")
)

// AdminRole is the role an operator needs to use the dashboard.
const AdminRole = "admin"

// Resource names used for cache keys, logs and metrics.
const (
	ResourceUsers         = "users"
	ResourceRecords       = "records"
	ResourceCategories    = "categories"
	ResourceUserActivity  = "user_activity"
	ResourceContributions = "contributions"
)

// Config holds session configuration.
type Config struct {
	// CacheTTL is the lifetime of cached base collections
	CacheTTL time.Duration

	// EnrichmentTTL is the lifetime of the cached per-user activity
	EnrichmentTTL time.Duration

	// PageSize is the limit used when assembling paginated collections
	PageSize int

	// Enrich configures the contribution lookup pool
	Enrich enrich.Config
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{
		CacheTTL:      cache.DefaultTTL,
		EnrichmentTTL: cache.DefaultEnrichmentTTL,
		PageSize:      pagination.DefaultPageSize,
		Enrich:        enrich.DefaultConfig(),
	}
}

// Session is one operator session. It is safe for concurrent use.
type Session struct {
	id     string
	client *client.Client
	store  cache.Store
	cfg    Config
	logger zerolog.Logger

	mu   sync.RWMutex
	auth *entity.AuthSession

	opts          []cache.Option
	contribMu     sync.Mutex
	contributions map[string]*cache.Collection[entity.Contribution]

	// Users is the complete user collection.
	Users *cache.Collection[entity.User]

	// Records is the complete record collection.
	Records *cache.Collection[entity.Record]

	// Categories is the category list.
	Categories *cache.Collection[entity.Category]

	// Activity holds one contribution count per cached user.
	Activity *cache.Collection[enrich.Entry[entity.User]]
}

// New creates a session bound to c. Cache entries are namespaced by a fresh
// session ID in store.
func New(c *client.Client, store cache.Store, cfg Config, opts ...cache.Option) *Session {
	if c == nil {
		panic("client cannot be nil")
	}
	if store == nil {
		store = cache.NewMemoryStore()
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = pagination.DefaultPageSize
	}

	s := &Session{
		id:            uuid.NewString(),
		client:        c,
		store:         store,
		cfg:           cfg,
		opts:          opts,
		contributions: make(map[string]*cache.Collection[entity.Contribution]),
	}
	s.logger = log.With().Str("component", "session").Str("session", s.id).Logger()

	s.Users = cache.NewCollection(store, s.key(ResourceUsers), cfg.CacheTTL,
		func(ctx context.Context) ([]entity.User, error) {
			return pagination.FetchAll(ctx, s.pageConfig(ResourceUsers), c.ListUsersPage)
		}, opts...)

	s.Records = cache.NewCollection(store, s.key(ResourceRecords), cfg.CacheTTL,
		func(ctx context.Context) ([]entity.Record, error) {
			return pagination.FetchAll(ctx, s.pageConfig(ResourceRecords), c.ListRecordsPage)
		}, opts...)

	s.Categories = cache.NewCollection(store, s.key(ResourceCategories), cfg.CacheTTL,
		c.ListCategories, opts...)

	s.Activity = cache.NewCollection(store, s.key(ResourceUserActivity), cfg.EnrichmentTTL,
		s.fetchActivity, opts...)

	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Client returns the API client of the session.
func (s *Session) Client() *client.Client {
	return s.client
}

// SendOTP requests a one-time password for phone.
func (s *Session) SendOTP(ctx context.Context, phone string) (client.Result, error) {
	return s.client.SendOTP(ctx, phone)
}

// Login verifies the OTP and admits the operator only if they hold the admin
// role. On success the token is installed on the client.
func (s *Session) Login(ctx context.Context, phone, otp string) (*entity.AuthSession, error) {
	auth, err := s.client.VerifyOTP(ctx, phone, otp)
	if err != nil {
		return nil, err
	}
	if !auth.HasRole(AdminRole) {
		s.logger.Warn().Strs("roles", auth.RoleNames()).Msg("Login rejected: not an admin")
		return nil, ErrNotAdmin
	}
	if auth.AccessToken == "" {
		return nil, fmt.Errorf("verify otp: %w", client.ErrNoToken)
	}

	s.mu.Lock()
	s.auth = auth
	s.mu.Unlock()
	s.client.SetToken(auth.AccessToken)

	s.logger.Info().Str("user_id", auth.UserID).Msg("Operator logged in")
	return auth, nil
}

// UseToken installs an existing access token, for non-interactive use.
func (s *Session) UseToken(token string) {
	s.mu.Lock()
	s.auth = &entity.AuthSession{AccessToken: token, TokenType: "bearer", Roles: []entity.Role{{Name: AdminRole}}}
	s.mu.Unlock()
	s.client.SetToken(token)
}

// Auth returns the current login, or nil.
func (s *Session) Auth() *entity.AuthSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.auth
}

// IsAuthenticated reports whether an operator is logged in.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.auth != nil
}

// Require returns ErrNotAuthenticated when no operator is logged in.
func (s *Session) Require() error {
	if !s.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	return nil
}

// Validate checks the token against the backend. Caches are left untouched.
func (s *Session) Validate(ctx context.Context) bool {
	if !s.IsAuthenticated() {
		return false
	}
	return s.client.TokenValid(ctx)
}

// Logout forgets the token and drops every cached collection of the session.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.auth = nil
	s.mu.Unlock()
	s.client.SetToken("")

	if err := s.store.Clear(ctx, s.id); err != nil {
		return fmt.Errorf("clear session cache: %w", err)
	}
	s.logger.Info().Msg("Operator logged out")
	return nil
}

// InvalidateAll drops every cached collection of the session.
func (s *Session) InvalidateAll(ctx context.Context) error {
	return errors.Join(
		s.Users.Invalidate(ctx),
		s.Records.Invalidate(ctx),
		s.Categories.Invalidate(ctx),
		s.Activity.Invalidate(ctx),
		s.InvalidateContributions(ctx),
	)
}

// MediaContributions returns the cached contribution list of one user for one
// media type. Lists share the enrichment TTL and are created on first use.
func (s *Session) MediaContributions(userID, mediaType string) *cache.Collection[entity.Contribution] {
	key := cache.Key{
		Session:  s.id,
		Resource: ResourceContributions,
		Query:    url.Values{"user_id": []string{userID}, "media_type": []string{mediaType}},
	}

	s.contribMu.Lock()
	defer s.contribMu.Unlock()
	if col, ok := s.contributions[key.String()]; ok {
		return col
	}

	col := cache.NewCollection(s.store, key, s.cfg.EnrichmentTTL,
		func(ctx context.Context) ([]entity.Contribution, error) {
			media, err := s.client.UserMediaContributions(ctx, userID, mediaType)
			if err != nil {
				return nil, err
			}
			return media.Contributions, nil
		}, s.opts...)
	s.contributions[key.String()] = col
	return col
}

// InvalidateContributions drops every cached per-user contribution list.
func (s *Session) InvalidateContributions(ctx context.Context) error {
	s.contribMu.Lock()
	cols := make([]*cache.Collection[entity.Contribution], 0, len(s.contributions))
	for _, col := range s.contributions {
		cols = append(cols, col)
	}
	s.contribMu.Unlock()

	var errs []error
	for _, col := range cols {
		errs = append(errs, col.Invalidate(ctx))
	}
	return errors.Join(errs...)
}

// fetchActivity enriches the cached users with their contribution counts. A
// cancelled run is reported as an error so it is never cached.
func (s *Session) fetchActivity(ctx context.Context) ([]enrich.Entry[entity.User], error) {
	users, err := s.Users.GetOrFetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users for enrichment: %w", err)
	}

	result := enrich.Enrich(ctx, users,
		func(u entity.User) string { return u.ID },
		func(ctx context.Context, u entity.User) (int, error) {
			return s.client.ContributionCount(ctx, u.ID)
		},
		s.cfg.Enrich)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("enrich users: %w", err)
	}
	return result.Ordered(), nil
}

func (s *Session) key(resource string) cache.Key {
	return cache.Key{Session: s.id, Resource: resource}
}

func (s *Session) pageConfig(resource string) pagination.Config {
	cfg := pagination.DefaultConfig(resource)
	cfg.PageSize = s.cfg.PageSize
	return cfg
}
