package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/movelens/movelens/internal/core"
)

// Config is the fully merged application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Store   StoreConfig   `mapstructure:"store"`
	Cache   CacheConfig   `mapstructure:"cache"`
	PokeAPI PokeAPIConfig `mapstructure:"pokeapi"`
	Engine  core.Tuning   `mapstructure:"engine"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Health  HealthConfig  `mapstructure:"health"`
	Debug   DebugConfig   `mapstructure:"debug"`

	// RateLimits maps an upstream host to requests per minute.
	RateLimits      map[string]int `mapstructure:"rate_limits"`
	RateLimitMargin float64        `mapstructure:"rate_limit_margin"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// AdminToken enables POST /admin/signal when non-empty.
	AdminToken string `mapstructure:"admin_token"`
}

// StoreConfig selects the libsql database. URL (a Turso remote) wins over Path.
type StoreConfig struct {
	Driver    string `mapstructure:"driver"`
	Path      string `mapstructure:"path"`
	URL       string `mapstructure:"url"`
	AuthToken string `mapstructure:"auth_token"`
}

// CacheConfig sets payload TTLs for the persistent cache and the size of
// the in-memory analysis cache.
type CacheConfig struct {
	SpeciesTTL time.Duration `mapstructure:"species_ttl"`
	MoveTTL    time.Duration `mapstructure:"move_ttl"`
	ResultTTL  time.Duration `mapstructure:"result_ttl"`
	ResultSize int           `mapstructure:"result_size"`
}

type PokeAPIConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UseCache  bool          `mapstructure:"use_cache"`
	UserAgent string        `mapstructure:"user_agent"`
}

type LoggingConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `mapstructure:"level"`
	// Profile is simple, structured or enterprise.
	Profile string `mapstructure:"profile"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type DebugConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// PprofEnabled mounts /debug/pprof. Never enable in production.
	PprofEnabled bool `mapstructure:"pprof_enabled"`
}

var supportedDrivers = map[string]bool{"libsql": true}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if c.Metrics.Enabled && (c.Metrics.Port < 0 || c.Metrics.Port > 65535) {
		errs = append(errs, fmt.Errorf("metrics.port out of range: %d", c.Metrics.Port))
	}
	if driver := strings.TrimSpace(c.Store.Driver); driver != "" && !supportedDrivers[driver] {
		errs = append(errs, fmt.Errorf("store.driver unsupported: %s", driver))
	}
	if c.Cache.ResultSize <= 0 {
		errs = append(errs, fmt.Errorf("cache.result_size must be positive: %d", c.Cache.ResultSize))
	}
	for name, ttl := range map[string]time.Duration{
		"cache.species_ttl": c.Cache.SpeciesTTL,
		"cache.move_ttl":    c.Cache.MoveTTL,
		"cache.result_ttl":  c.Cache.ResultTTL,
	} {
		if ttl < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative: %s", name, ttl))
		}
	}
	if u, err := url.Parse(c.PokeAPI.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("pokeapi.base_url must be an absolute URL: %q", c.PokeAPI.BaseURL))
	}
	if c.RateLimitMargin < 0 || c.RateLimitMargin > 1 {
		errs = append(errs, fmt.Errorf("rate_limit_margin must be within [0,1]: %g", c.RateLimitMargin))
	}
	for host, perMinute := range c.RateLimits {
		if perMinute <= 0 {
			errs = append(errs, fmt.Errorf("rate_limits[%s] must be positive: %d", host, perMinute))
		}
	}

	return errors.Join(errs...)
}
