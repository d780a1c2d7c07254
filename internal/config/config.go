package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"bayesplay/internal"
	"bayesplay/internal/errors"
	"bayesplay/internal/quadrature"
)

// Config represents the complete application configuration
type Config struct {
	Server      ServerConfig
	Integration IntegrationConfig
	Log         LogConfig
	Export      ExportConfig
	Profiling   ProfilingConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string
	GinMode         string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// IntegrationConfig holds the quadrature tolerances shared by every
// prior, model and posterior built by the application.
type IntegrationConfig struct {
	RelTol          float64
	AbsTol          float64
	MaxSubdivisions int
}

// LogConfig holds logging settings
type LogConfig struct {
	Level slog.Level
}

// ExportConfig holds file export settings
type ExportConfig struct {
	Dir string
}

// ProfilingConfig holds pprof server settings
type ProfilingConfig struct {
	Enabled bool
	Port    string
}

// Load reads an optional .env file, then configuration from environment
// variables, and validates it.
func Load() (*Config, error) {
	// a missing .env is normal outside development
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads configuration from environment variables only.
func FromEnv() (*Config, error) {
	def := quadrature.DefaultConfig()

	config := &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("PORT", "8080"),
			GinMode:         getEnvOrDefault("GIN_MODE", "release"),
			RequestTimeout:  getEnvDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Integration: IntegrationConfig{
			RelTol:          getEnvFloatOrDefault("BAYESPLAY_REL_TOL", def.RelTol),
			AbsTol:          getEnvFloatOrDefault("BAYESPLAY_ABS_TOL", def.AbsTol),
			MaxSubdivisions: getEnvIntOrDefault("BAYESPLAY_MAX_SUBDIVISIONS", def.MaxSubdivisions),
		},
		Log: LogConfig{
			Level: internal.ParseLevel(os.Getenv("LOG_LEVEL")),
		},
		Export: ExportConfig{
			Dir: getEnvOrDefault("EXPORT_DIR", "."),
		},
		Profiling: ProfilingConfig{
			Enabled: getEnvOrDefault("PROFILING_ENABLED", "false") == "true",
			Port:    getEnvOrDefault("PROFILING_PORT", "6060"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

// Quadrature converts the integration settings into a quadrature config
// that logs failures through logger.
func (c IntegrationConfig) Quadrature(logger *slog.Logger) quadrature.Config {
	cfg := quadrature.DefaultConfig()
	cfg.RelTol = c.RelTol
	cfg.AbsTol = c.AbsTol
	cfg.MaxSubdivisions = c.MaxSubdivisions
	cfg.Logger = logger
	return cfg
}

func validateConfig(config *Config) error {
	in := config.Integration
	if in.RelTol < 0 || in.AbsTol < 0 {
		return errors.ConfigInvalid("integration tolerances must not be negative")
	}
	if in.RelTol == 0 && in.AbsTol == 0 {
		return errors.ConfigInvalid("one of BAYESPLAY_REL_TOL or BAYESPLAY_ABS_TOL must be positive")
	}
	if in.MaxSubdivisions < 1 {
		return errors.ConfigInvalid(fmt.Sprintf("BAYESPLAY_MAX_SUBDIVISIONS must be at least 1, got %d", in.MaxSubdivisions))
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	switch config.Server.GinMode {
	case "debug", "release", "test":
	default:
		return errors.ConfigInvalid(fmt.Sprintf("GIN_MODE %q is not one of debug, release, test", config.Server.GinMode))
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

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
