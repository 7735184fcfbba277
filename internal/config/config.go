// Package config loads settings from defaults, an optional YAML file and
// TASKMARKET_* environment variables, in increasing priority.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	EnvPrefix      = "TASKMARKET_"
	PathEnvVar     = EnvPrefix + "CONFIG"
	DefaultPath    = "taskmarket.yaml"
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Storage StorageConfig `koanf:"storage"`
	Cache   CacheConfig   `koanf:"cache"`
	Ranking RankingConfig `koanf:"ranking"`
	Logging LoggingConfig `koanf:"logging"`
	Metrics MetricsConfig `koanf:"metrics"`
}

type StorageConfig struct {
	Driver      string `koanf:"driver" validate:"oneof=memory file sqlite postgres"`
	Path        string `koanf:"path" validate:"required_if=Driver file"`
	SQLitePath  string `koanf:"sqlite_path" validate:"required_if=Driver sqlite"`
	PostgresURL string `koanf:"postgres_url" validate:"required_if=Driver postgres"`
	MaxConns    int    `koanf:"max_conns" validate:"gte=0"`
}

type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	TTL        time.Duration `koanf:"ttl" validate:"gte=0"`
	MaxEntries int64         `koanf:"max_entries" validate:"gte=0"`
	RedisURL   string        `koanf:"redis_url"`
}

type RankingConfig struct {
	Workers         int `koanf:"workers" validate:"gte=0"`
	DefaultPageSize int `koanf:"default_page_size" validate:"gte=1"`
	MaxPageSize     int `koanf:"max_page_size" validate:"gtefield=DefaultPageSize"`
}

type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr" validate:"required_if=Enabled true"`
}

func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Driver:     DriverFile,
			Path:       ".",
			SQLitePath: ".taskmarket/taskmarket.db",
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        time.Hour,
			MaxEntries: 100_000,
		},
		Ranking: RankingConfig{
			DefaultPageSize: 15,
			MaxPageSize:     100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Addr: ":9090",
		},
	}
}

// Load layers defaults, the config file and the environment, then validates.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

func findConfigFile() string {
	if path := os.Getenv(PathEnvVar); path != "" {
		return path
	}
	if _, err := os.Stat(DefaultPath); err == nil {
		return DefaultPath
	}
	return ""
}

// envKey maps TASKMARKET_STORAGE_SQLITE_PATH to storage.sqlite_path: the
// first segment is the section, the rest is the field name.
func envKey(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	if key == "config" {
		return ""
	}
	section, field, ok := strings.Cut(key, "_")
	if !ok {
		return key
	}
	return section + "." + field
}
