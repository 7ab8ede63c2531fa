package config

import (
	"os"
	"strconv"

	"drugwatch/internal/errors"
)

// Source selects the metrics provider backing the router
type Source string

const (
	SourcePostgres Source = "postgres"
	SourceExcel    Source = "excel"
)

// Config represents the complete application configuration
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Detection DetectionConfig
	Paths     PathConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// DetectionConfig holds detection tuning settings
type DetectionConfig struct {
	ThresholdPreset string  // standard, strict, sensitive
	EB05Threshold   float64 // bayes signal cutoff
	DefaultLimit    int     // max results per query
}

// PathConfig holds file system paths
type PathConfig struct {
	Source    Source // which metrics provider to construct
	ExcelFile string // case metrics workbook for the excel source
	ReportDir string // where exported reports land
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL:     getEnvOrDefault("DATABASE_URL", ""),
			SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
		},
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "release"),
		},
		Detection: DetectionConfig{
			ThresholdPreset: getEnvOrDefault("THRESHOLD_PRESET", "standard"),
			EB05Threshold:   getEnvFloatOrDefault("EB05_THRESHOLD", 2.0),
			DefaultLimit:    getEnvIntOrDefault("DEFAULT_LIMIT", 25),
		},
		Paths: PathConfig{
			Source:    Source(getEnvOrDefault("DATA_SOURCE", string(SourceExcel))),
			ExcelFile: getEnvOrDefault("EXCEL_FILE", ""),
			ReportDir: getEnvOrDefault("REPORT_DIR", "./reports"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validateConfig(config *Config) error {
	switch config.Paths.Source {
	case SourcePostgres:
		if config.Database.URL == "" {
			return errors.ConfigInvalid("DATABASE_URL is required for the postgres source")
		}
	case SourceExcel:
		if config.Paths.ExcelFile == "" {
			return errors.ConfigInvalid("EXCEL_FILE is required for the excel source")
		}
	default:
		return errors.ConfigInvalid("DATA_SOURCE must be postgres or excel")
	}
	if config.Detection.DefaultLimit <= 0 {
		return errors.ConfigInvalid("DEFAULT_LIMIT must be positive")
	}
	if config.Detection.EB05Threshold <= 0 {
		return errors.ConfigInvalid("EB05_THRESHOLD must be positive")
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
