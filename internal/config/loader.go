// Package config loads movelens configuration in three layers: embedded
// defaults, the user config file, then MOVELENS_* environment variables and
// runtime overrides.
package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	gfconfig "github.com/fulmenhq/gofulmen/config"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/movelens/movelens/internal/appid"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// keyDelimiter keeps dotted host names under rate_limits intact.
const keyDelimiter = "::"

var (
	configMu     sync.RWMutex
	appConfig    *Config
	explicitPath string
)

// SetConfigFile pins the user config file, bypassing XDG discovery.
func SetConfigFile(path string) {
	configMu.Lock()
	defer configMu.Unlock()
	explicitPath = strings.TrimSpace(path)
}

// GetConfig returns the config from the last successful Load.
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

// Load merges all layers, validates the result and makes it the current
// config. Later runtimeOverrides win. Safe to call again on reload.
func Load(ctx context.Context, runtimeOverrides ...map[string]any) (*Config, error) {
	identity, err := appid.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve app identity: %w", err)
	}

	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelimiter))

	defaults := map[string]any{}
	if err := yaml.Unmarshal(defaultsYAML, &defaults); err != nil {
		return nil, fmt.Errorf("parse embedded defaults: %w", err)
	}
	if err := v.MergeConfigMap(defaults); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	if path := userConfigFile(identity); path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	env, err := envOverrides(envPrefix(identity))
	if err != nil {
		return nil, err
	}
	for _, overrides := range append([]map[string]any{env}, runtimeOverrides...) {
		if len(overrides) == 0 {
			continue
		}
		if err := v.MergeConfigMap(overrides); err != nil {
			return nil, fmt.Errorf("apply overrides: %w", err)
		}
	}

	cfg, err := decode(v.AllSettings())
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.Store.URL) == "" && strings.TrimSpace(cfg.Store.Path) == "" {
		cfg.Store.Path = DefaultStorePath()
	}
	cfg.Engine = cfg.Engine.WithDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	configMu.Lock()
	appConfig = cfg
	configMu.Unlock()
	return cfg, nil
}

func decode(settings map[string]any) (*Config, error) {
	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.StringToFloat64HookFunc(),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("create decoder: %w", err)
	}
	if err := decoder.Decode(settings); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func envPrefix(identity *appid.Identity) string {
	prefix := "MOVELENS_"
	if identity != nil && strings.TrimSpace(identity.EnvPrefix) != "" {
		prefix = identity.EnvPrefix
	}
	if !strings.HasSuffix(prefix, "_") {
		prefix += "_"
	}
	return prefix
}

// envBindings maps environment variable suffixes to config paths.
// Durations travel as strings and are converted by the decode hook.
var envBindings = []gfconfig.EnvVarSpec{
	{Name: "HOST", Path: []string{"server", "host"}, Type: gfconfig.EnvString},
	{Name: "PORT", Path: []string{"server", "port"}, Type: gfconfig.EnvInt},
	{Name: "READ_TIMEOUT", Path: []string{"server", "read_timeout"}, Type: gfconfig.EnvString},
	{Name: "WRITE_TIMEOUT", Path: []string{"server", "write_timeout"}, Type: gfconfig.EnvString},
	{Name: "IDLE_TIMEOUT", Path: []string{"server", "idle_timeout"}, Type: gfconfig.EnvString},
	{Name: "SHUTDOWN_TIMEOUT", Path: []string{"server", "shutdown_timeout"}, Type: gfconfig.EnvString},
	{Name: "ADMIN_TOKEN", Path: []string{"server", "admin_token"}, Type: gfconfig.EnvString},

	{Name: "LOG_LEVEL", Path: []string{"logging", "level"}, Type: gfconfig.EnvString},
	{Name: "LOG_PROFILE", Path: []string{"logging", "profile"}, Type: gfconfig.EnvString},

	{Name: "DB_DRIVER", Path: []string{"store", "driver"}, Type: gfconfig.EnvString},
	{Name: "DB_PATH", Path: []string{"store", "path"}, Type: gfconfig.EnvString},
	{Name: "DB_URL", Path: []string{"store", "url"}, Type: gfconfig.EnvString},
	{Name: "DB_AUTH_TOKEN", Path: []string{"store", "auth_token"}, Type: gfconfig.EnvString},

	{Name: "CACHE_SPECIES_TTL", Path: []string{"cache", "species_ttl"}, Type: gfconfig.EnvString},
	{Name: "CACHE_MOVE_TTL", Path: []string{"cache", "move_ttl"}, Type: gfconfig.EnvString},
	{Name: "CACHE_RESULT_TTL", Path: []string{"cache", "result_ttl"}, Type: gfconfig.EnvString},
	{Name: "CACHE_RESULT_SIZE", Path: []string{"cache", "result_size"}, Type: gfconfig.EnvInt},

	{Name: "POKEAPI_BASE_URL", Path: []string{"pokeapi", "base_url"}, Type: gfconfig.EnvString},
	{Name: "POKEAPI_TIMEOUT", Path: []string{"pokeapi", "timeout"}, Type: gfconfig.EnvString},
	{Name: "POKEAPI_USE_CACHE", Path: []string{"pokeapi", "use_cache"}, Type: gfconfig.EnvBool},
	{Name: "POKEAPI_USER_AGENT", Path: []string{"pokeapi", "user_agent"}, Type: gfconfig.EnvString},

	{Name: "ENGINE_VIABILITY_THRESHOLD", Path: []string{"engine", "viability_threshold"}, Type: gfconfig.EnvString},
	{Name: "ENGINE_STRONG_POWER", Path: []string{"engine", "strong_power"}, Type: gfconfig.EnvInt},
	{Name: "ENGINE_SWEEPER_SPEED", Path: []string{"engine", "sweeper_speed"}, Type: gfconfig.EnvInt},
	{Name: "ENGINE_TANK_BULK", Path: []string{"engine", "tank_bulk"}, Type: gfconfig.EnvInt},
	{Name: "ENGINE_BIAS_MARGIN", Path: []string{"engine", "bias_margin"}, Type: gfconfig.EnvInt},
	{Name: "ENGINE_MAX_CANDIDATES", Path: []string{"engine", "max_candidates"}, Type: gfconfig.EnvInt},
	{Name: "ENGINE_FETCH_BATCH_SIZE", Path: []string{"engine", "fetch_batch_size"}, Type: gfconfig.EnvInt},

	{Name: "METRICS_ENABLED", Path: []string{"metrics", "enabled"}, Type: gfconfig.EnvBool},
	{Name: "METRICS_PORT", Path: []string{"metrics", "port"}, Type: gfconfig.EnvInt},
	{Name: "HEALTH_ENABLED", Path: []string{"health", "enabled"}, Type: gfconfig.EnvBool},
	{Name: "DEBUG_ENABLED", Path: []string{"debug", "enabled"}, Type: gfconfig.EnvBool},
	{Name: "DEBUG_PPROF_ENABLED", Path: []string{"debug", "pprof_enabled"}, Type: gfconfig.EnvBool},
}

func getEnvSpecs(identity *appid.Identity) []gfconfig.EnvVarSpec {
	prefix := envPrefix(identity)
	specs := make([]gfconfig.EnvVarSpec, 0, len(envBindings))
	for _, b := range envBindings {
		b.Name = prefix + b.Name
		specs = append(specs, b)
	}
	return specs
}

// envOverrides reads the bound variables plus RATE_LIMIT_MARGIN, which
// gofulmen has no float type for.
func envOverrides(prefix string) (map[string]any, error) {
	overrides, err := gfconfig.LoadEnvOverrides(getEnvSpecs(&appid.Identity{EnvPrefix: prefix}))
	if err != nil {
		return nil, fmt.Errorf("load environment overrides: %w", err)
	}

	if raw := strings.TrimSpace(os.Getenv(prefix + "RATE_LIMIT_MARGIN")); raw != "" {
		margin, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%sRATE_LIMIT_MARGIN: %w", prefix, err)
		}
		if overrides == nil {
			overrides = map[string]any{}
		}
		overrides["rate_limit_margin"] = margin
	}
	return overrides, nil
}
