// Package config loads bggstats configuration from defaults, an optional
// YAML file and BGGSTATS_* environment variables, in that order.
package config

import (
	"time"

	"github.com/Sternrassler/bgg-stats/pkg/client"
	"github.com/Sternrassler/bgg-stats/pkg/collection"
	"github.com/Sternrassler/bgg-stats/pkg/logging"
	"github.com/Sternrassler/bgg-stats/pkg/pagination"
	"github.com/Sternrassler/bgg-stats/pkg/ratelimit"
	"github.com/Sternrassler/bgg-stats/pkg/stats"
)

// DefaultUserAgent identifies bggstats to BoardGameGeek.
const DefaultUserAgent = "bggstats/1.0 (+https://github.com/Sternrassler/bgg-stats)"

// Config is the complete application configuration.
type Config struct {
	BGG        BGGConfig        `koanf:"bgg"`
	Collection CollectionConfig `koanf:"collection"`
	Redis      RedisConfig      `koanf:"redis"`
	Log        LogConfig        `koanf:"log"`
	Server     ServerConfig     `koanf:"server"`
}

// BGGConfig configures the catalog client and pacer.
type BGGConfig struct {
	BaseURL          string        `koanf:"base_url"`
	UserAgent        string        `koanf:"user_agent"`
	Timeout          time.Duration `koanf:"timeout"`
	RequestPause     time.Duration `koanf:"request_pause"`
	QueuedRetryPause time.Duration `koanf:"queued_retry_pause"`

	// BreakerFailures opens the circuit after this many consecutive
	// transport failures. 0 disables the breaker.
	BreakerFailures uint32        `koanf:"breaker_failures"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout"`
}

// CollectionConfig configures batching and view sizes.
type CollectionConfig struct {
	BatchSize int `koanf:"batch_size"`
	TopN      int `koanf:"top_n"`
}

// RedisConfig enables the shared pacer state for multi-replica deployments.
type RedisConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Addr     string        `koanf:"addr"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"`
	LockTTL  time.Duration `koanf:"lock_ttl"`
}

// LogConfig configures zerolog.
type LogConfig struct {
	Level  string `koanf:"level"`
	Pretty bool   `koanf:"pretty"`
}

// ServerConfig configures the JSON API server.
type ServerConfig struct {
	Addr               string        `koanf:"addr"`
	RateLimitPerMinute int           `koanf:"rate_limit_per_minute"`
	ShutdownTimeout    time.Duration `koanf:"shutdown_timeout"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	breaker := client.DefaultBreakerConfig()
	return &Config{
		BGG: BGGConfig{
			BaseURL:          client.DefaultBaseURL,
			UserAgent:        DefaultUserAgent,
			Timeout:          client.DefaultTimeout,
			RequestPause:     ratelimit.DefaultPause,
			QueuedRetryPause: client.DefaultQueuedRetryPause,
			BreakerFailures:  breaker.ConsecutiveFailures,
			BreakerTimeout:   breaker.OpenTimeout,
		},
		Collection: CollectionConfig{
			BatchSize: pagination.DefaultBatchSize,
			TopN:      stats.DefaultTopN,
		},
		Redis: RedisConfig{
			Enabled: false,
			Addr:    "localhost:6379",
			DB:      0,
			LockTTL: ratelimit.DefaultLockTTL,
		},
		Log: LogConfig{
			Level:  string(logging.LevelInfo),
			Pretty: false,
		},
		Server: ServerConfig{
			Addr:               ":8080",
			RateLimitPerMinute: 60,
			ShutdownTimeout:    10 * time.Second,
		},
	}
}

// ClientConfig maps the bgg section to a client configuration.
func (c *Config) ClientConfig() client.Config {
	cfg := client.DefaultConfig(c.BGG.UserAgent)
	cfg.BaseURL = c.BGG.BaseURL
	cfg.Timeout = c.BGG.Timeout
	cfg.QueuedRetryPause = c.BGG.QueuedRetryPause
	cfg.MaxBatchSize = c.Collection.BatchSize
	cfg.Breaker.ConsecutiveFailures = c.BGG.BreakerFailures
	cfg.Breaker.OpenTimeout = c.BGG.BreakerTimeout
	return cfg
}

// AggregatorConfig maps the collection section to an aggregator configuration.
func (c *Config) AggregatorConfig() collection.Config {
	return collection.Config{
		BatchSize: c.Collection.BatchSize,
		TopN:      c.Collection.TopN,
	}
}

// LoggingConfig maps the log section to a logger configuration. The level
// must have passed Validate.
func (c *Config) LoggingConfig() logging.Config {
	level, _ := logging.ParseLevel(c.Log.Level)
	cfg := logging.DefaultConfig()
	cfg.Level = level
	cfg.Pretty = c.Log.Pretty
	return cfg
}
