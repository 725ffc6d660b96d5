// Package config loads service settings from defaults, an optional config
// file, an optional .env file and the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix selects the variables mapped onto config keys. A double
// underscore separates sections: TIMETABLE_HTTP__ADDR sets http.addr.
const EnvPrefix = "TIMETABLE_"

// databaseURLVar is honoured on its own for compatibility with hosted
// platforms that inject it.
const databaseURLVar = "DATABASE_URL"

type Config struct {
	Database DatabaseConfig `koanf:"database"`
	HTTP     HTTPConfig     `koanf:"http"`
	Import   ImportConfig   `koanf:"import"`
	Log      LogConfig      `koanf:"log"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

// DatabaseConfig points at PostgreSQL or SQLite. An empty URL is allowed;
// data routes then answer with a configuration error.
type DatabaseConfig struct {
	URL          string `koanf:"url"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	SlowQueryMs  int    `koanf:"slow_query_ms"`
}

func (c *DatabaseConfig) SetDefaults() {
	if c.MaxOpenConns == 0 {
		c.MaxOpenConns = 10
	}
	if c.SlowQueryMs == 0 {
		c.SlowQueryMs = 50
	}
}

func (c DatabaseConfig) Validate() error {
	if c.MaxOpenConns < 0 {
		return fmt.Errorf("database.max_open_conns must not be negative")
	}
	if c.SlowQueryMs < 0 {
		return fmt.Errorf("database.slow_query_ms must not be negative")
	}
	return nil
}

// HTTPConfig configures the listener and the middleware stack.
type HTTPConfig struct {
	Addr string `koanf:"addr"`
	// SlowRequestMs is the latency above which requests are logged at warn.
	SlowRequestMs int `koanf:"slow_request_ms"`
	// RateLimitPerSecond caps requests per client IP; zero disables limiting.
	RateLimitPerSecond int    `koanf:"rate_limit_per_second"`
	CORSOrigin         string `koanf:"cors_origin"`
}

func (c *HTTPConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.SlowRequestMs == 0 {
		c.SlowRequestMs = 200
	}
	if c.CORSOrigin == "" {
		c.CORSOrigin = "*"
	}
}

func (c HTTPConfig) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("http.addr is required")
	}
	if c.RateLimitPerSecond < 0 {
		return fmt.Errorf("http.rate_limit_per_second must not be negative")
	}
	if c.SlowRequestMs < 0 {
		return fmt.Errorf("http.slow_request_ms must not be negative")
	}
	return nil
}

type ImportConfig struct {
	// MaxBodyBytes bounds the JSON body of an import request, base64 included.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`
}

func (c *ImportConfig) SetDefaults() {
	if c.MaxBodyBytes == 0 {
		c.MaxBodyBytes = 20 << 20
	}
}

func (c ImportConfig) Validate() error {
	if c.MaxBodyBytes < 0 {
		return fmt.Errorf("import.max_body_bytes must not be negative")
	}
	return nil
}

// LogConfig selects level and output format ("json" or "console").
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

func (c *LogConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "json"
	}
}

func (c LogConfig) Validate() error {
	switch c.Level {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("unknown log level %s", c.Level)
	}
	if c.Format != "json" && c.Format != "console" {
		return fmt.Errorf("unknown log format %s", c.Format)
	}
	return nil
}

type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

func (c *MetricsConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = "/metrics"
	}
}

func (c MetricsConfig) Validate() error {
	if !strings.HasPrefix(c.Path, "/") {
		return fmt.Errorf("metrics.path must start with /")
	}
	return nil
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	cfg := Config{Metrics: MetricsConfig{Enabled: true}}
	cfg.SetDefaults()
	return cfg
}

func (c *Config) SetDefaults() {
	c.Database.SetDefaults()
	c.HTTP.SetDefaults()
	c.Import.SetDefaults()
	c.Log.SetDefaults()
	c.Metrics.SetDefaults()
}

func (c Config) Validate() error {
	return errors.Join(
		c.Database.Validate(),
		c.HTTP.Validate(),
		c.Import.Validate(),
		c.Log.Validate(),
		c.Metrics.Validate(),
	)
}

// LoadDotEnv exports the variables in path into the process environment
// without overriding ones already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load builds the configuration. path may be empty, in which case only
// defaults and the environment apply.
// PRE: path is empty or names a .yaml, .yml or .json file
// POST: Returns a validated Config or the first loading error
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, err
	}
	// an empty DATABASE_URL leaves the file or TIMETABLE_ value in place
	if err := k.Load(env.ProviderWithValue(databaseURLVar, ".", func(key, value string) (string, any) {
		if key != databaseURLVar || value == "" {
			return "", nil
		}
		return "database.url", value
	}), nil); err != nil {
		return nil, err
	}

	cfg := Defaults()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
}

// envKey maps TIMETABLE_HTTP__RATE_LIMIT_PER_SECOND to http.rate_limit_per_second.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Getenv is os.Getenv with a fallback, for the few settings read before
// the config file is known.
func Getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
