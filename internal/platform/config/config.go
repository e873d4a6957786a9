// Copyright (c) 2026 RootLink. All rights reserved.

/*
Package config handles client-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. A '.env' file in the
working directory is loaded first when present.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Once loaded, configuration is read-only and passed to constructors.
*/
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StorageFile   = "file"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

// # Configuration Schema

// Config holds all runtime configuration for the console and the mock API.
type Config struct {

	// Console settings
	ConsoleAddr string `env:"CONSOLE_ADDR" envDefault:"127.0.0.1:5173"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Remote API
	APIBaseURL string        `env:"API_BASE_URL" envDefault:"http://localhost:8080/api"`
	APITimeout time.Duration `env:"API_TIMEOUT"  envDefault:"15s"`

	// Durable session storage
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"file"`
	StoragePath   string `env:"STORAGE_PATH"`
	RedisURL      string `env:"REDIS_URL"`

	// Mock API (development only)
	MockAddr      string        `env:"MOCK_ADDR"       envDefault:"127.0.0.1:8080"`
	MockJWTSecret string        `env:"MOCK_JWT_SECRET" envDefault:"dev-secret"`
	MockTokenTTL  time.Duration `env:"MOCK_TOKEN_TTL"  envDefault:"2h"`
}

// # Configuration Loading

// Load reads an optional env file and parses environment variables into a [Config].
//
// envFiles defaults to ".env"; a missing file is not an error.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: failed to load %s: %w", file, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// finalize fills derived defaults and checks cross-field constraints.
func (c *Config) finalize() error {
	if _, err := url.ParseRequestURI(c.APIBaseURL); err != nil {
		return fmt.Errorf("config: invalid API_BASE_URL %q: %w", c.APIBaseURL, err)
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("config: API_TIMEOUT must be positive, got %s", c.APITimeout)
	}

	switch c.StorageDriver {
	case StorageFile:
		if c.StoragePath == "" {
			dir, err := os.UserConfigDir()
			if err != nil {
				return fmt.Errorf("config: cannot resolve user config dir, set STORAGE_PATH: %w", err)
			}
			c.StoragePath = filepath.Join(dir, "rootlink", "session.json")
		}
	case StorageRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("config: REDIS_URL is required when STORAGE_DRIVER=redis")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("config: unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	return nil
}

// Origin returns scheme://host of the API base URL.
//
// Durable session keys are namespaced by it, the way browser storage is
// scoped to an origin.
func (c *Config) Origin() string {
	parsed, err := url.Parse(c.APIBaseURL)
	if err != nil {
		return c.APIBaseURL
	}
	return parsed.Scheme + "://" + parsed.Host
}

// IsDevelopment reports whether the console is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
