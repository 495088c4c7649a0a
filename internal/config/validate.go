package config

import (
	"fmt"
	"net/url"
	"time"
)

// Validate performs business-rule validation on the loaded configuration.
// Load calls it automatically.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("backend.base_url must be an http(s) URL (got %q)", c.Backend.BaseURL)
	}
	if err := positive("backend.timeout", c.Backend.Timeout); err != nil {
		return err
	}

	switch c.Cache.Store {
	case StoreMemory:
	case StoreRedis:
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redis_addr is required for the redis store")
		}
	default:
		return fmt.Errorf("cache.store must be %q or %q (got %q)", StoreMemory, StoreRedis, c.Cache.Store)
	}
	if err := positive("cache.ttl", c.Cache.TTL); err != nil {
		return err
	}
	if err := positive("cache.enrichment_ttl", c.Cache.EnrichmentTTL); err != nil {
		return err
	}

	if c.Fetch.PageSize <= 0 {
		return fmt.Errorf("fetch.page_size must be > 0 (got %d)", c.Fetch.PageSize)
	}
	if c.Enrich.MaxConcurrency <= 0 {
		return fmt.Errorf("enrich.max_concurrency must be > 0 (got %d)", c.Enrich.MaxConcurrency)
	}
	if err := positive("enrich.unit_timeout", c.Enrich.UnitTimeout); err != nil {
		return err
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	return nil
}

func positive(name string, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%s must be > 0 (got %v)", name, d)
	}
	return nil
}
