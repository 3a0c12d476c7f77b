package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/Sternrassler/bgg-stats/pkg/logging"
	"github.com/Sternrassler/bgg-stats/pkg/pagination"
)

// Validate checks the configuration for values the components would reject
// or that would break the catalog's request discipline.
func (c *Config) Validate() error {
	if err := c.validateBGG(); err != nil {
		return err
	}
	if err := c.validateCollection(); err != nil {
		return err
	}
	if err := c.validateRedis(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

func (c *Config) validateBGG() error {
	if c.BGG.BaseURL == "" {
		return errors.New("bgg.base_url is required")
	}
	u, err := url.Parse(c.BGG.BaseURL)
	if err != nil {
		return fmt.Errorf("bgg.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("bgg.base_url must be http or https (got %q)", c.BGG.BaseURL)
	}
	if c.BGG.UserAgent == "" {
		return errors.New("bgg.user_agent is required")
	}
	if c.BGG.Timeout <= 0 {
		return fmt.Errorf("bgg.timeout must be > 0 (got %s)", c.BGG.Timeout)
	}
	if c.BGG.RequestPause < 0 {
		return fmt.Errorf("bgg.request_pause must be >= 0 (got %s)", c.BGG.RequestPause)
	}
	if c.BGG.QueuedRetryPause < 0 {
		return fmt.Errorf("bgg.queued_retry_pause must be >= 0 (got %s)", c.BGG.QueuedRetryPause)
	}
	return nil
}

func (c *Config) validateCollection() error {
	if c.Collection.BatchSize < 1 || c.Collection.BatchSize > pagination.DefaultBatchSize {
		return fmt.Errorf("collection.batch_size must be between 1 and %d (got %d)", pagination.DefaultBatchSize, c.Collection.BatchSize)
	}
	if c.Collection.TopN < 1 {
		return fmt.Errorf("collection.top_n must be > 0 (got %d)", c.Collection.TopN)
	}
	return nil
}

func (c *Config) validateRedis() error {
	if !c.Redis.Enabled {
		return nil
	}
	if c.Redis.Addr == "" {
		return errors.New("redis.addr is required when redis is enabled")
	}
	if c.Redis.LockTTL <= 0 {
		return fmt.Errorf("redis.lock_ttl must be > 0 (got %s)", c.Redis.LockTTL)
	}
	// The shared lock is held across the pause, the queued retry pause and
	// the request itself; expiring earlier lets another replica in.
	if held := c.MaxSlotHold(); c.Redis.LockTTL <= held {
		return fmt.Errorf("redis.lock_ttl must exceed bgg.timeout + bgg.request_pause + bgg.queued_retry_pause (got %s, need > %s)", c.Redis.LockTTL, held)
	}
	return nil
}

// MaxSlotHold is the longest a single request keeps the outbound slot.
func (c *Config) MaxSlotHold() time.Duration {
	return c.BGG.Timeout + c.BGG.RequestPause + c.BGG.QueuedRetryPause
}

func (c *Config) validateServer() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if c.Server.RateLimitPerMinute < 0 {
		return fmt.Errorf("server.rate_limit_per_minute must be >= 0 (got %d)", c.Server.RateLimitPerMinute)
	}
	return nil
}
