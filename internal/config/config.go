// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      int
	LogLevel  string
	LogPretty bool
	DevMode   bool
	DataDir   string // Base directory for the run database (always absolute)

	// Engine defaults, overridable per request
	ForecastWorkers   int
	DormancyThreshold int
	TopN              int
	HoldoutSize       int

	// Run history retention
	RunRetentionDays int

	// Archiving; empty bucket disables the archive service entirely
	S3Bucket    string
	S3Region    string
	S3Prefix    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Resolve the data directory to an absolute path and make sure it
	// exists before anything opens a database in it.
	dataDir := getEnv("DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		Port:              getEnvAsInt("PORT", 8900),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogPretty:         getEnvAsBool("LOG_PRETTY", false),
		DevMode:           getEnvAsBool("DEV_MODE", false),
		DataDir:           absDataDir,
		ForecastWorkers:   getEnvAsInt("FORECAST_WORKERS", defaultWorkers()),
		DormancyThreshold: getEnvAsInt("DORMANCY_THRESHOLD", 3),
		TopN:              getEnvAsInt("TOP_N", 20),
		HoldoutSize:       getEnvAsInt("HOLDOUT_SIZE", 3),
		RunRetentionDays:  getEnvAsInt("RUN_RETENTION_DAYS", 90),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3Region:          getEnv("S3_REGION", ""),
		S3Prefix:          getEnv("S3_PREFIX", ""),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3AccessKey:       getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:       getEnv("S3_SECRET_KEY", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is usable
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.ForecastWorkers < 1 {
		return fmt.Errorf("forecast workers must be at least 1, got %d", c.ForecastWorkers)
	}
	if c.DormancyThreshold < 1 {
		return fmt.Errorf("dormancy threshold must be at least 1, got %d", c.DormancyThreshold)
	}
	if c.TopN < 1 {
		return fmt.Errorf("top N must be at least 1, got %d", c.TopN)
	}
	if c.HoldoutSize < 1 {
		return fmt.Errorf("holdout size must be at least 1, got %d", c.HoldoutSize)
	}
	if c.RunRetentionDays < 1 {
		return fmt.Errorf("run retention must be at least 1 day, got %d", c.RunRetentionDays)
	}
	return nil
}

// ArchiveEnabled reports whether an S3 bucket is configured.
func (c *Config) ArchiveEnabled() bool {
	return c.S3Bucket != ""
}

// RetentionDuration converts the retention setting to a duration.
func (c *Config) RetentionDuration() time.Duration {
	return time.Duration(c.RunRetentionDays) * 24 * time.Hour
}

// DatabasePath returns the path of the run database file.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "salescast.db")
}

func defaultWorkers() int {
	workers := runtime.NumCPU()
	if workers < 2 {
		workers = 2
	}
	return workers
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
