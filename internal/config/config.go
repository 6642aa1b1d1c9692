package config

import (
	"os"
	"runtime"
	"strconv"

	"rarefy/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Engine   EngineConfig
}

// DatabaseConfig holds database connection settings. Persistence is
// optional: with an empty URL the CLI and API run without a repository.
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port string
}

// EngineConfig holds rarefaction engine defaults
type EngineConfig struct {
	// Workers bounds concurrent iterations; 0 means GOMAXPROCS.
	Workers int
	// DefaultIterations applies when a run request leaves iterations unset.
	DefaultIterations int
	// DefaultSeed applies when a run request leaves the seed unset.
	DefaultSeed int64
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL:     getEnvOrDefault("DATABASE_URL", ""),
			SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Engine: EngineConfig{
			Workers:           getEnvIntOrDefault("RAREFY_WORKERS", 0),
			DefaultIterations: getEnvIntOrDefault("RAREFY_ITERATIONS", 100),
			DefaultSeed:       int64(getEnvIntOrDefault("RAREFY_SEED", 42)),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Engine.Workers < 0 {
		return errors.ConfigInvalid("RAREFY_WORKERS must not be negative")
	}
	if config.Engine.DefaultIterations < 1 {
		return errors.ConfigInvalid("RAREFY_ITERATIONS must be at least 1")
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT must not be empty")
	}
	return nil
}

// EffectiveWorkers resolves the worker count, defaulting to GOMAXPROCS.
func (c EngineConfig) EffectiveWorkers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
