package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Environment string `toml:"environment"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`

	// web origins allowed by CORS, the app and tooling are matched by user agent
	AllowedOrigins []string `toml:"allowed_origins"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// storage
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	RedisHost      string `toml:"redis_host"`
	RedisPort      string `toml:"redis_port"`

	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// gamification
	CatalogCacheTTLMs            int64 `toml:"catalog_cache_ttl_ms"`
	CatalogCacheSizeMB           int   `toml:"catalog_cache_size_mb"`
	FinishRateLimitAllowedPerMin int   `toml:"finish_rate_limit_allowed_per_min"`
	SessionSnapshotTTLHours      int   `toml:"session_snapshot_ttl_hours"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		if t.Development == nil {
			return nil, errors.New("development config missing")
		}
		return t.Development, nil
	case "prod", "production":
		if t.Production == nil {
			return nil, errors.New("production config missing")
		}
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

// Load reads the TOML file at path and returns the section for env, with
// defaults applied to the unset gamification knobs.
func Load(env, path string) (*Config, error) {
	var tomlConfig Toml
	if _, err := toml.DecodeFile(path, &tomlConfig); err != nil {
		return nil, fmt.Errorf("decode config file [%s]: %w", path, err)
	}

	cfg, err := tomlConfig.Get(env)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.CatalogCacheTTLMs <= 0 {
		c.CatalogCacheTTLMs = 300000
	}
	if c.CatalogCacheSizeMB <= 0 {
		c.CatalogCacheSizeMB = 64
	}
	if c.FinishRateLimitAllowedPerMin <= 0 {
		c.FinishRateLimitAllowedPerMin = 30
	}
	if c.SessionSnapshotTTLHours <= 0 {
		c.SessionSnapshotTTLHours = 24
	}
}
