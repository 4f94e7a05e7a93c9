package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"ngsrerun/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server ServerConfig
	Plate  PlateConfig
	Paths  PathConfig
	Upload UploadConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// PlateConfig holds the target plate geometry for rerun manifests
type PlateConfig struct {
	Rows int
	Cols int
}

// PathConfig holds file system paths
type PathConfig struct {
	WorkDir string
}

// UploadConfig bounds uploaded file handling
type UploadConfig struct {
	MaxSizeMB int64
}

// Load reads configuration from a .env file (when present) and the
// environment, then validates it.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env is optional; real env always wins

	config := &Config{
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Plate: PlateConfig{
			Rows: getEnvIntOrDefault("PLATE_ROWS", 16),
			Cols: getEnvIntOrDefault("PLATE_COLS", 24),
		},
		Paths: PathConfig{
			WorkDir: getEnvOrDefault("WORK_DIR", "./work"),
		},
		Upload: UploadConfig{
			MaxSizeMB: int64(getEnvIntOrDefault("MAX_UPLOAD_MB", 50)),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Plate.Rows < 1 || config.Plate.Cols < 1 {
		return errors.ConfigInvalid("plate dimensions must be positive")
	}
	if config.Paths.WorkDir == "" {
		return errors.ConfigInvalid("work directory is required")
	}
	if config.Upload.MaxSizeMB < 1 {
		return errors.ConfigInvalid("max upload size must be at least 1MB")
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
