package config

import (
	"os"
	"strconv"
	"time"

	"inequalitymap/internal/errors"
)

// DefaultDataURL is the published spreadsheet export the dashboard was built around
const DefaultDataURL = "https://docs.google.com/spreadsheets/d/e/2PACX-1vTtpT3y3Opo5yIBBbA4i3SNYzp-soN8836j3KnCgbn3yx1dF9WEpkHAe2FhnlrPKkiajlWL-7kbo_Xv/pub?gid=1245097650&single=true&output=csv"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	Data      DataConfig
	Pages     PagesConfig
	Profiling ProfilingConfig
	LogLevel  string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// DataConfig holds dataset source settings
type DataConfig struct {
	URL            string
	File           string // local CSV/XLSX; wins over URL when set
	FetchTimeout   time.Duration
	RoundPrecision int
}

// PagesConfig toggles optional navigation entries
type PagesConfig struct {
	ShowEvaluation bool
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:    *loadServerConfig(),
		Data:      *loadDataConfig(),
		Pages:     *loadPagesConfig(),
		Profiling: *loadProfilingConfig(),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		URL:            getEnvOrDefault("DATA_URL", DefaultDataURL),
		File:           getEnvOrDefault("DATA_FILE", ""),
		FetchTimeout:   getEnvDurationOrDefault("DATA_FETCH_TIMEOUT", 30*time.Second),
		RoundPrecision: getEnvIntOrDefault("ROUND_PRECISION", 2),
	}
}

func loadPagesConfig() *PagesConfig {
	return &PagesConfig{
		ShowEvaluation: getEnvBoolOrDefault("SHOW_EVALUATION_PAGE", true),
	}
}

func loadProfilingConfig() *ProfilingConfig {
	return &ProfilingConfig{
		Port:    getEnvOrDefault("PPROF_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Data.URL == "" && config.Data.File == "" {
		return errors.ConfigInvalid("one of DATA_URL or DATA_FILE is required")
	}
	if config.Data.RoundPrecision < 0 || config.Data.RoundPrecision > 6 {
		return errors.ConfigInvalid("ROUND_PRECISION must be between 0 and 6")
	}
	if config.Data.FetchTimeout < 0 {
		return errors.ConfigInvalid("DATA_FETCH_TIMEOUT must not be negative")
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

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
