// Package config loads the dashboard configuration from an optional YAML file
// and environment variables.
package config

import (
	"time"

	"github.com/Sternrassler/swecha-admin/pkg/enrich"
	"github.com/Sternrassler/swecha-admin/pkg/logging"
	"github.com/Sternrassler/swecha-admin/pkg/session"
)

// Cache store kinds.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config is the root application configuration.
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Cache   CacheConfig   `yaml:"cache"`
	Fetch   FetchConfig   `yaml:"fetch"`
	Enrich  EnrichConfig  `yaml:"enrich"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
}

// BackendConfig holds corpus backend settings.
type BackendConfig struct {
	BaseURL   string        `yaml:"base_url"   env:"ADMIN_BACKEND_URL"     env-default:"https://backend2.swecha.org/api/v1"`
	Timeout   time.Duration `yaml:"timeout"    env:"ADMIN_BACKEND_TIMEOUT" env-default:"30s"`
	UserAgent string        `yaml:"user_agent" env:"ADMIN_USER_AGENT"      env-default:"swecha-admin/0.1.0"`
	Token     string        `yaml:"-"          env:"ADMIN_TOKEN"`
}

// CacheConfig holds session cache settings.
type CacheConfig struct {
	Store         string        `yaml:"store"          env:"ADMIN_CACHE_STORE"          env-default:"memory"`
	RedisAddr     string        `yaml:"redis_addr"     env:"ADMIN_REDIS_ADDR"           env-default:"localhost:6379"`
	RedisDB       int           `yaml:"redis_db"       env:"ADMIN_REDIS_DB"             env-default:"0"`
	TTL           time.Duration `yaml:"ttl"            env:"ADMIN_CACHE_TTL"            env-default:"30m"`
	EnrichmentTTL time.Duration `yaml:"enrichment_ttl" env:"ADMIN_CACHE_ENRICHMENT_TTL" env-default:"15m"`
}

// FetchConfig holds pagination settings.
type FetchConfig struct {
	PageSize int `yaml:"page_size" env:"ADMIN_FETCH_PAGE_SIZE" env-default:"1000"`
}

// EnrichConfig holds contribution lookup pool settings.
type EnrichConfig struct {
	MaxConcurrency int           `yaml:"max_concurrency" env:"ADMIN_ENRICH_MAX_CONCURRENCY" env-default:"20"`
	UnitTimeout    time.Duration `yaml:"unit_timeout"    env:"ADMIN_ENRICH_UNIT_TIMEOUT"    env-default:"10s"`
}

// ServerConfig holds HTTP shell settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"             env:"ADMIN_SERVER_ADDR"             env-default:":8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"ADMIN_SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"ADMIN_SERVER_WRITE_TIMEOUT"    env-default:"5m"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"ADMIN_SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Pretty bool   `yaml:"pretty" env:"LOG_PRETTY" env-default:"false"`
}

// Session returns the session configuration derived from c.
func (c *Config) Session() session.Config {
	return session.Config{
		CacheTTL:      c.Cache.TTL,
		EnrichmentTTL: c.Cache.EnrichmentTTL,
		PageSize:      c.Fetch.PageSize,
		Enrich: enrich.Config{
			MaxConcurrency: c.Enrich.MaxConcurrency,
			UnitTimeout:    c.Enrich.UnitTimeout,
		},
	}
}

// Logging returns the logger configuration derived from c.
func (c *Config) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.LogLevel(c.Log.Level)
	cfg.Pretty = c.Log.Pretty
	return cfg
}

// UsesRedis reports whether the session cache is kept in Redis.
func (c *Config) UsesRedis() bool {
	return c.Cache.Store == StoreRedis
}

