package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable the config reads.
const EnvPrefix = "LEARNER_HOURS_"

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" envPrefix:"SERVER_"`
	DB        DBConfig        `yaml:"db" envPrefix:"DB_"`
	Log       LogConfig       `yaml:"log" envPrefix:"LOG_"`
	Transport TransportConfig `yaml:"transport" envPrefix:"TRANSPORT_"`
	Auth      AuthConfig      `yaml:"auth" envPrefix:"AUTH_"`
	Store     StoreConfig     `yaml:"store" envPrefix:"STORE_"`
	Redis     RedisConfig     `yaml:"redis" envPrefix:"REDIS_"`
	Offline   OfflineConfig   `yaml:"offline" envPrefix:"OFFLINE_"`
}

type ServerConfig struct {
	Host string `yaml:"host" env:"HOST"`
	Port int    `yaml:"port" env:"PORT"`
}

type DBConfig struct {
	Path string `yaml:"path" env:"PATH"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LEVEL"`
	// Path enables a size-capped log file in addition to stderr.
	Path string `yaml:"path" env:"PATH"`
}

type TransportConfig struct {
	// Mode is "http" or "stdio".
	Mode string `yaml:"mode" env:"MODE"`
}

type AuthConfig struct {
	Enabled bool   `yaml:"enabled" env:"ENABLED"`
	Token   string `yaml:"token" env:"TOKEN"`
}

type StoreConfig struct {
	// Driver is one of sqlite, bbolt, redis, memory.
	Driver   string `yaml:"driver" env:"DRIVER"`
	Key      string `yaml:"key" env:"KEY"`
	BoltPath string `yaml:"bolt_path" env:"BOLT_PATH"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
}

type OfflineConfig struct {
	Prefix   string   `yaml:"prefix" env:"PREFIX"`
	Version  string   `yaml:"version" env:"VERSION"`
	Manifest []string `yaml:"manifest" env:"MANIFEST" envSeparator:","`
	// AssetsDir serves static assets in-process. Origin is used when it is empty.
	AssetsDir string `yaml:"assets_dir" env:"ASSETS_DIR"`
	Origin    string `yaml:"origin" env:"ORIGIN"`
	Watch     bool   `yaml:"watch" env:"WATCH"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "learner-hours.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Transport: TransportConfig{
			Mode: "http",
		},
		Store: StoreConfig{
			Driver:   "sqlite",
			Key:      "learner-hours",
			BoltPath: "learner-hours.bolt",
		},
		Redis: RedisConfig{
			Addr: "127.0.0.1:6379",
		},
		Offline: OfflineConfig{
			Prefix:    "learner-hours",
			Version:   "v1",
			AssetsDir: "web",
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
// Environment variables win over the file.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv(EnvPrefix + "CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late at startup.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case "sqlite", "bbolt", "redis", "memory":
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	switch c.Transport.Mode {
	case "http", "stdio":
	default:
		return fmt.Errorf("unknown transport mode %q", c.Transport.Mode)
	}
	if strings.TrimSpace(c.Store.Key) == "" {
		return fmt.Errorf("store key is required")
	}
	if c.Auth.Enabled && c.Auth.Token == "" {
		return fmt.Errorf("auth token is required when auth is enabled")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
