package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"dashviz/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	Upload    UploadConfig
	Inference InferenceConfig
	Dashboard DashboardConfig
	Session   SessionConfig
	Log       LogConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// UploadConfig holds upload limits
type UploadConfig struct {
	MaxSizeMB int
}

// InferenceConfig holds the type promotion thresholds used at load time
type InferenceConfig struct {
	NumericThreshold  float64
	TemporalThreshold float64
}

// DashboardConfig holds dashboard layout defaults
type DashboardConfig struct {
	Columns int
}

// SessionConfig holds in-memory session retention settings
type SessionConfig struct {
	IdleMinutes int
}

// IdleTimeout returns how long an unused session is kept.
func (c SessionConfig) IdleTimeout() time.Duration {
	return time.Duration(c.IdleMinutes) * time.Minute
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
}

// MaxUploadBytes returns the upload limit in bytes.
func (c UploadConfig) MaxUploadBytes() int64 {
	return int64(c.MaxSizeMB) << 20
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "debug"),
		},
		Upload: UploadConfig{
			MaxSizeMB: getEnvIntOrDefault("MAX_UPLOAD_MB", 50),
		},
		Inference: InferenceConfig{
			NumericThreshold:  getEnvFloatOrDefault("NUMERIC_THRESHOLD", 0.5),
			TemporalThreshold: getEnvFloatOrDefault("TEMPORAL_THRESHOLD", 0.5),
		},
		Dashboard: DashboardConfig{
			Columns: getEnvIntOrDefault("DASHBOARD_COLUMNS", 2),
		},
		Session: SessionConfig{
			IdleMinutes: getEnvIntOrDefault("SESSION_IDLE_MINUTES", 60),
		},
		Log: LogConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "INFO"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	switch config.Server.GinMode {
	case "debug", "release", "test":
	default:
		return errors.ConfigInvalid(fmt.Sprintf("GIN_MODE must be debug, release or test, got %q", config.Server.GinMode))
	}
	if config.Upload.MaxSizeMB <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	for name, v := range map[string]float64{
		"NUMERIC_THRESHOLD":  config.Inference.NumericThreshold,
		"TEMPORAL_THRESHOLD": config.Inference.TemporalThreshold,
	} {
		if v < 0 || v >= 1 {
			return errors.ConfigInvalid(fmt.Sprintf("%s must be in [0, 1), got %v", name, v))
		}
	}
	if config.Dashboard.Columns < 1 || config.Dashboard.Columns > 4 {
		return errors.ConfigInvalid("DASHBOARD_COLUMNS must be between 1 and 4")
	}
	if config.Session.IdleMinutes <= 0 {
		return errors.ConfigInvalid("SESSION_IDLE_MINUTES must be positive")
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

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
