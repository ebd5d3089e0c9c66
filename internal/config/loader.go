package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies MARKETD_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
//
// A missing config file is not an error: defaults plus environment overrides
// are enough to run against the public upstream endpoints.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known MARKETD_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject endpoints and secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Server ──
	setInt(&cfg.Server.Port, "MARKETD_SERVER_PORT")
	setStrSlice(&cfg.Server.CORSOrigins, "MARKETD_SERVER_CORS_ORIGINS")

	// ── Upstreams ──
	setStr(&cfg.Gamma.Host, "MARKETD_GAMMA_HOST")
	setStr(&cfg.Clob.Host, "MARKETD_CLOB_HOST")
	setStr(&cfg.Data.Host, "MARKETD_DATA_HOST")
	setStr(&cfg.Goldsky.OrderbookURL, "MARKETD_GOLDSKY_ORDERBOOK_URL")
	setStr(&cfg.Goldsky.OpenInterestURL, "MARKETD_GOLDSKY_OPEN_INTEREST_URL")
	setStr(&cfg.Goldsky.APIKey, "MARKETD_GOLDSKY_API_KEY")
	setInt(&cfg.Goldsky.BatchSize, "MARKETD_GOLDSKY_BATCH_SIZE")

	// ── Cache ──
	setStr(&cfg.Cache.Backend, "MARKETD_CACHE_BACKEND")
	setDuration(&cfg.Cache.TTL, "MARKETD_CACHE_TTL")
	setInt(&cfg.Cache.MaxEntries, "MARKETD_CACHE_MAX_ENTRIES")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "MARKETD_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "MARKETD_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "MARKETD_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "MARKETD_REDIS_POOL_SIZE")

	// ── Logging ──
	setStr(&cfg.LogLevel, "MARKETD_LOG_LEVEL")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStrSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		*dst = out
	}
}
