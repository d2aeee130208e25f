// Package config loads server configuration.
//
// Precedence, lowest first: built-in defaults, the optional YAML file,
// environment variables. Command-line flags in cmd/server override last.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	PubNub   PubNubConfig   `yaml:"pubnub"`
	Roster   RosterConfig   `yaml:"roster"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port           string   `yaml:"port" env:"FORMATION_PORT"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"FORMATION_ALLOWED_ORIGINS" envSeparator:","`
}

type DatabaseConfig struct {
	// Driver is "sqlite3" (cgo), "sqlite" (pure Go) or "memory".
	Driver string `yaml:"driver" env:"FORMATION_DB_DRIVER"`
	Path   string `yaml:"path" env:"FORMATION_DB_PATH"`
}

// RedisConfig enables the Redis sequencer when URL is set.
type RedisConfig struct {
	URL string `yaml:"url" env:"FORMATION_REDIS_URL"`
}

// PubNubConfig enables PubNub notifications when PublishKey is set.
type PubNubConfig struct {
	PublishKey   string `yaml:"publish_key" env:"PUBNUB_PUBLISH_KEY"`
	SubscribeKey string `yaml:"subscribe_key" env:"PUBNUB_SUBSCRIBE_KEY"`
	SecretKey    string `yaml:"secret_key" env:"PUBNUB_SECRET_KEY"`
	UUID         string `yaml:"uuid" env:"PUBNUB_UUID"`
}

type RosterConfig struct {
	Admin         string        `yaml:"admin" env:"FORMATION_ADMIN"`
	OfferTimeout  time.Duration `yaml:"offer_timeout" env:"FORMATION_OFFER_TIMEOUT"`
	SweepInterval time.Duration `yaml:"sweep_interval" env:"FORMATION_SWEEP_INTERVAL"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Pretty bool   `yaml:"pretty" env:"LOG_PRETTY"`
}

const (
	DriverMemory = "memory"
	DriverCGO    = "sqlite3"
	DriverPure   = "sqlite"
)

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8080",
			AllowedOrigins: []string{"*"},
		},
		Database: DatabaseConfig{
			Driver: DriverCGO,
			Path:   "./formations.db",
		},
		Roster: RosterConfig{
			OfferTimeout:  24 * time.Hour,
			SweepInterval: time.Minute,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads defaults, then path if it exists, then the environment.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server port is required")
	}
	switch c.Database.Driver {
	case DriverMemory:
	case DriverCGO, DriverPure:
		if c.Database.Path == "" {
			return errors.New("database path is required")
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Roster.OfferTimeout <= 0 {
		return errors.New("offer timeout must be positive")
	}
	if c.Roster.SweepInterval <= 0 {
		return errors.New("sweep interval must be positive")
	}
	return nil
}
