package config

import (
	"os"
	"strconv"

	"sentinel/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig
	Data    DataConfig
	Filters FilterConfig
	Log     LogConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// DataConfig holds dataset source settings
type DataConfig struct {
	File string
	// Watch re-stats the file on every load and reparses when it changed.
	Watch bool
	// StrictNormalization fails the load when a metric has zero spread.
	StrictNormalization bool
}

// FilterConfig holds the default rank window shown on first page load
type FilterConfig struct {
	DefaultMinRank int
	DefaultMaxRank int
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
}

// DefaultDatasetFile is used when DATASET_FILE is not set
const DefaultDatasetFile = "data/military_power_2024.csv"

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:  *loadServerConfig(),
		Data:    *loadDataConfig(),
		Filters: *loadFilterConfig(),
		Log:     LogConfig{Level: getEnvOrDefault("LOG_LEVEL", "INFO")},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		File:                getEnvOrDefault("DATASET_FILE", DefaultDatasetFile),
		Watch:               getEnvBoolOrDefault("DATASET_WATCH", true),
		StrictNormalization: getEnvBoolOrDefault("STRICT_NORMALIZATION", false),
	}
}

func loadFilterConfig() *FilterConfig {
	return &FilterConfig{
		DefaultMinRank: getEnvIntOrDefault("DEFAULT_MIN_RANK", 1),
		DefaultMaxRank: getEnvIntOrDefault("DEFAULT_MAX_RANK", 10),
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Data.File == "" {
		return errors.ConfigInvalid("dataset file is required")
	}
	if config.Filters.DefaultMinRank < 1 {
		return errors.ConfigInvalid("DEFAULT_MIN_RANK must be at least 1")
	}
	if config.Filters.DefaultMinRank > config.Filters.DefaultMaxRank {
		return errors.ConfigInvalid("DEFAULT_MIN_RANK must not exceed DEFAULT_MAX_RANK")
	}
	return nil
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

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
