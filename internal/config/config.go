// Package config loads the service configuration from config.toml and AVIFD_ environment variables.
package config

import (
	"avifd/internal/adapters/cache"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig
	Handler HandlerConfig
	Log     LogConfig
	Cache   CacheConfig
}

type ServerConfig struct {
	Address         string
	StaticDir       string
	ShutdownTimeout time.Duration
}

type HandlerConfig struct {
	// Timeout bounds a single conversion, zero means no deadline.
	Timeout time.Duration
}

type LogConfig struct {
	Level zerolog.Level
}

type CacheConfig struct {
	Mode        string
	Shards      int
	MaxEntries  int
	Deduplicate bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0:8080")
	v.SetDefault("server.static_dir", "./static")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("handler.timeout", "0s")
	v.SetDefault("log.level", "info")
	v.SetDefault("cache.mode", cache.ModeMemory)
	v.SetDefault("cache.shards", 16)
	v.SetDefault("cache.max_entries", 1024)
	v.SetDefault("cache.deduplicate", false)
}

// Load reads config.toml from dir if present. Missing files fall back to defaults.
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.SetEnvPrefix("AVIFD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("could not read config file: %w", err)
		}
	}

	return parse(v)
}

func parse(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	cfg.Server.Address = v.GetString("server.address")
	cfg.Server.StaticDir = v.GetString("server.static_dir")

	var err error
	cfg.Server.ShutdownTimeout, err = time.ParseDuration(v.GetString("server.shutdown_timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid server.shutdown_timeout: %w", err)
	}

	cfg.Handler.Timeout, err = time.ParseDuration(v.GetString("handler.timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid handler.timeout: %w", err)
	}
	if cfg.Handler.Timeout < 0 {
		return nil, fmt.Errorf("handler.timeout must not be negative, got %s", cfg.Handler.Timeout)
	}

	cfg.Log.Level, err = zerolog.ParseLevel(v.GetString("log.level"))
	if err != nil {
		return nil, fmt.Errorf("invalid log.level: %w", err)
	}

	cfg.Cache.Mode = v.GetString("cache.mode")
	cfg.Cache.Shards = v.GetInt("cache.shards")
	cfg.Cache.MaxEntries = v.GetInt("cache.max_entries")
	cfg.Cache.Deduplicate = v.GetBool("cache.deduplicate")

	switch cfg.Cache.Mode {
	case cache.ModeMemory:
	case cache.ModeSharded:
		if cfg.Cache.Shards <= 0 {
			return nil, fmt.Errorf("cache.shards must be positive, got %d", cfg.Cache.Shards)
		}
	case cache.ModeLRU:
		if cfg.Cache.MaxEntries <= 0 {
			return nil, fmt.Errorf("cache.max_entries must be positive, got %d", cfg.Cache.MaxEntries)
		}
	default:
		return nil, fmt.Errorf("unknown cache.mode %q", cfg.Cache.Mode)
	}

	return cfg, nil
}
