package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the server configuration, sourced from the environment
type Config struct {
	Host string `env:"WWALL_HOST" envDefault:"0.0.0.0"`
	Port int    `env:"WWALL_PORT" envDefault:"8080"`

	// BaseURL is the externally visible URL of this server, used to build
	// OAuth redirect URIs
	BaseURL string `env:"WWALL_BASE_URL" envDefault:"http://localhost:8080"`

	// StorageType selects the storage backend: "memory" or "redis"
	StorageType string `env:"WWALL_STORAGE_TYPE" envDefault:"memory"`
	RedisURL    string `env:"WWALL_REDIS_URL" envDefault:"redis://localhost:6379"`

	SessionDuration time.Duration `env:"WWALL_SESSION_DURATION" envDefault:"168h"`

	GoogleClientID       string `env:"WWALL_GOOGLE_CLIENT_ID"`
	GoogleClientSecret   string `env:"WWALL_GOOGLE_CLIENT_SECRET"`
	FacebookClientID     string `env:"WWALL_FACEBOOK_CLIENT_ID"`
	FacebookClientSecret string `env:"WWALL_FACEBOOK_CLIENT_SECRET"`
}

// Load parses configuration from environment variables
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config from environment: %w", err)
	}
	if cfg.StorageType != "memory" && cfg.StorageType != "redis" {
		return Config{}, fmt.Errorf("unknown storage type %q", cfg.StorageType)
	}
	return cfg, nil
}

// Addr returns the listen address in host:port form
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
