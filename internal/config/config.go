// Package config defines the top-level configuration for the market data
// service and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by MARKETD_* environment
// variables.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Gamma    GammaConfig    `toml:"gamma"`
	Clob     ClobConfig     `toml:"clob"`
	Data     DataConfig     `toml:"data"`
	Goldsky  GoldskyConfig  `toml:"goldsky"`
	Cache    CacheConfig    `toml:"cache"`
	Redis    RedisConfig    `toml:"redis"`
	LogLevel string         `toml:"log_level"`
}

// ServerConfig holds the HTTP server parameters.
type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// GammaConfig holds the Gamma (markets/events) REST API endpoint.
type GammaConfig struct {
	Host string `toml:"host"`
}

// ClobConfig holds the CLOB (order book / price history) REST API endpoint.
type ClobConfig struct {
	Host string `toml:"host"`
}

// DataConfig holds the data API (positions, activity, leaderboard) endpoint.
type DataConfig struct {
	Host string `toml:"host"`
}

// GoldskyConfig holds the two subgraph endpoints queried by the batch
// aggregator.
type GoldskyConfig struct {
	OrderbookURL    string `toml:"orderbook_url"`
	OpenInterestURL string `toml:"open_interest_url"`
	APIKey          string `toml:"api_key"`
	BatchSize       int    `toml:"batch_size"`
}

// CacheConfig selects and tunes the response cache backend.
type CacheConfig struct {
	Backend    string   `toml:"backend"` // "memory" or "redis"
	TTL        duration `toml:"ttl"`
	MaxEntries int      `toml:"max_entries"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding ("5m", "30s").
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// RedisConfig holds Redis connection parameters, used only when the cache
// backend is "redis".
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	PoolSize int    `toml:"pool_size"`
}

// Defaults returns a Config populated with sane defaults for every field.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 8080,
		},
		Gamma: GammaConfig{
			Host: "https://gamma-api.polymarket.com",
		},
		Clob: ClobConfig{
			Host: "https://clob.polymarket.com",
		},
		Data: DataConfig{
			Host: "https://data-api.polymarket.com",
		},
		Goldsky: GoldskyConfig{
			BatchSize: 200,
		},
		Cache: CacheConfig{
			Backend:    "memory",
			TTL:        duration{5 * time.Minute},
			MaxEntries: 50,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 10,
		},
		LogLevel: "info",
	}
}

// Validate checks the configuration for structural problems and returns an
// error describing the first one found.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d out of range", c.Server.Port)
	}
	for name, host := range map[string]string{
		"gamma.host": c.Gamma.Host,
		"clob.host":  c.Clob.Host,
		"data.host":  c.Data.Host,
	} {
		if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
			return fmt.Errorf("config: %s must be an http(s) URL, got %q", name, host)
		}
	}
	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("config: cache.backend must be \"memory\" or \"redis\", got %q", c.Cache.Backend)
	}
	if c.Cache.Backend == "redis" && c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr required when cache.backend is \"redis\"")
	}
	if c.Cache.TTL.Duration <= 0 {
		return fmt.Errorf("config: cache.ttl must be positive")
	}
	if c.Cache.MaxEntries <= 0 {
		return fmt.Errorf("config: cache.max_entries must be positive")
	}
	if c.Goldsky.BatchSize <= 0 {
		return fmt.Errorf("config: goldsky.batch_size must be positive")
	}
	return nil
}
