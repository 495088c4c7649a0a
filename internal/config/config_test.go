package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Sternrassler/swecha-admin/pkg/cache"
	"github.com/Sternrassler/swecha-admin/pkg/enrich"
	"github.com/Sternrassler/swecha-admin/pkg/pagination"
)

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

// isolate runs the test in an empty directory with CONFIG_PATH unset.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("CONFIG_PATH", "")
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Backend.BaseURL != "https://backend2.swecha.org/api/v1" {
		t.Errorf("BaseURL = %q", cfg.Backend.BaseURL)
	}
	if cfg.Cache.Store != StoreMemory {
		t.Errorf("Store = %q, want memory", cfg.Cache.Store)
	}
	if cfg.Cache.TTL != cache.DefaultTTL {
		t.Errorf("TTL = %v, want %v", cfg.Cache.TTL, cache.DefaultTTL)
	}
	if cfg.Cache.EnrichmentTTL != cache.DefaultEnrichmentTTL {
		t.Errorf("EnrichmentTTL = %v, want %v", cfg.Cache.EnrichmentTTL, cache.DefaultEnrichmentTTL)
	}
	if cfg.Fetch.PageSize != pagination.DefaultPageSize {
		t.Errorf("PageSize = %d", cfg.Fetch.PageSize)
	}
	if cfg.Enrich.MaxConcurrency != enrich.DefaultMaxConcurrency {
		t.Errorf("MaxConcurrency = %d", cfg.Enrich.MaxConcurrency)
	}
	if cfg.Enrich.UnitTimeout != enrich.DefaultUnitTimeout {
		t.Errorf("UnitTimeout = %v", cfg.Enrich.UnitTimeout)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.UsesRedis() {
		t.Error("redis should be off by default")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("ADMIN_BACKEND_URL", "http://localhost:8000/api/v1")
	t.Setenv("ADMIN_CACHE_STORE", "redis")
	t.Setenv("ADMIN_REDIS_ADDR", "redis:6379")
	t.Setenv("ADMIN_ENRICH_MAX_CONCURRENCY", "5")
	t.Setenv("ADMIN_TOKEN", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Backend.BaseURL != "http://localhost:8000/api/v1" {
		t.Errorf("BaseURL = %q", cfg.Backend.BaseURL)
	}
	if !cfg.UsesRedis() || cfg.Cache.RedisAddr != "redis:6379" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Enrich.MaxConcurrency != 5 {
		t.Errorf("MaxConcurrency = %d", cfg.Enrich.MaxConcurrency)
	}
	if cfg.Backend.Token != "secret" {
		t.Errorf("Token not read from env")
	}
}

func TestLoad_YAMLWithEnvPriority(t *testing.T) {
	isolate(t)
	path := writeYAML(t, t.TempDir(), `
backend:
  base_url: "http://yaml-host/api/v1"
  timeout: "5s"
cache:
  ttl: "10m"
fetch:
  page_size: 250
log:
  level: "debug"
  pretty: true
`)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("ADMIN_FETCH_PAGE_SIZE", "500")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Backend.BaseURL != "http://yaml-host/api/v1" {
		t.Errorf("BaseURL = %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v", cfg.Backend.Timeout)
	}
	if cfg.Cache.TTL != 10*time.Minute {
		t.Errorf("TTL = %v", cfg.Cache.TTL)
	}
	if cfg.Fetch.PageSize != 500 {
		t.Errorf("PageSize = %d, env should win over yaml", cfg.Fetch.PageSize)
	}
	if cfg.Cache.EnrichmentTTL != 15*time.Minute {
		t.Errorf("EnrichmentTTL = %v, want default", cfg.Cache.EnrichmentTTL)
	}

	logCfg := cfg.Logging()
	if string(logCfg.Level) != "debug" || !logCfg.Pretty {
		t.Errorf("Logging() = %+v", logCfg)
	}
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	isolate(t)
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	if _, err := Load(); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLoadFile(t *testing.T) {
	isolate(t)
	path := writeYAML(t, t.TempDir(), "enrich:\n  max_concurrency: 7\n")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Enrich.MaxConcurrency != 7 {
		t.Errorf("MaxConcurrency = %d", cfg.Enrich.MaxConcurrency)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Backend: BackendConfig{BaseURL: "https://backend2.swecha.org/api/v1", Timeout: time.Second},
			Cache:   CacheConfig{Store: StoreMemory, TTL: time.Minute, EnrichmentTTL: time.Minute},
			Fetch:   FetchConfig{PageSize: 1000},
			Enrich:  EnrichConfig{MaxConcurrency: 20, UnitTimeout: time.Second},
			Server:  ServerConfig{Addr: ":8080"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad url", func(c *Config) { c.Backend.BaseURL = "backend" }, "backend.base_url"},
		{"zero timeout", func(c *Config) { c.Backend.Timeout = 0 }, "backend.timeout"},
		{"unknown store", func(c *Config) { c.Cache.Store = "memcached" }, "cache.store"},
		{"redis without addr", func(c *Config) { c.Cache.Store = StoreRedis }, "cache.redis_addr"},
		{"zero ttl", func(c *Config) { c.Cache.TTL = 0 }, "cache.ttl"},
		{"zero enrichment ttl", func(c *Config) { c.Cache.EnrichmentTTL = 0 }, "cache.enrichment_ttl"},
		{"zero page size", func(c *Config) { c.Fetch.PageSize = 0 }, "fetch.page_size"},
		{"zero concurrency", func(c *Config) { c.Enrich.MaxConcurrency = 0 }, "enrich.max_concurrency"},
		{"zero unit timeout", func(c *Config) { c.Enrich.UnitTimeout = 0 }, "enrich.unit_timeout"},
		{"no addr", func(c *Config) { c.Server.Addr = "" }, "server.addr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error mentioning %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Session(t *testing.T) {
	cfg := &Config{
		Cache:  CacheConfig{TTL: 20 * time.Minute, EnrichmentTTL: 5 * time.Minute},
		Fetch:  FetchConfig{PageSize: 200},
		Enrich: EnrichConfig{MaxConcurrency: 3, UnitTimeout: 2 * time.Second},
	}

	s := cfg.Session()
	if s.CacheTTL != 20*time.Minute || s.EnrichmentTTL != 5*time.Minute {
		t.Errorf("TTLs = %v, %v", s.CacheTTL, s.EnrichmentTTL)
	}
	if s.PageSize != 200 || s.Enrich.MaxConcurrency != 3 || s.Enrich.UnitTimeout != 2*time.Second {
		t.Errorf("Session() = %+v", s)
	}
}
