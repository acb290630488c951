// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir          string   // Base directory for all databases (always absolute)
	Port             int      // HTTP listen port
	LogLevel         string   // debug, info, warn, error
	DevMode          bool     // Disables response compression, enables verbose output
	BaseCurrency     string   // Currency all prices are normalized into before matching
	DisplayCurrency  string   // Secondary currency shown alongside the base currency
	RateCurrencies   []string // Currency codes synced from the exchange rate API
	RateSyncSchedule string   // Cron expression for the exchange rate sync job
	Backup           *BackupConfig
}

// BackupConfig holds S3 backup configuration.
// Backups are disabled unless a bucket is configured.
type BackupConfig struct {
	Bucket      string
	Endpoint    string // Custom endpoint for S3-compatible storage (R2, MinIO). Empty = AWS.
	Region      string
	Schedule    string // Cron expression for the backup job
	KeepBackups int    // Number of archives retained during rotation
}

// Enabled reports whether cloud backups are configured.
func (b *BackupConfig) Enabled() bool {
	return b != nil && b.Bucket != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Determine data directory with fallback logic:
	// 1. Check MATCHD_DATA_DIR environment variable
	// 2. If not set, default to ./data
	// 3. Always resolve to absolute path
	// 4. Ensure directory exists
	dataDir := getEnv("MATCHD_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:          absDataDir,
		Port:             getEnvAsInt("MATCHD_PORT", 8080),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		DevMode:          getEnvAsBool("DEV_MODE", false),
		BaseCurrency:     strings.ToUpper(getEnv("BASE_CURRENCY", "USD")),
		DisplayCurrency:  strings.ToUpper(getEnv("DISPLAY_CURRENCY", "GEL")),
		RateCurrencies:   getEnvAsList("RATE_CURRENCIES", []string{"USD", "EUR", "GBP", "GEL"}),
		RateSyncSchedule: getEnv("RATE_SYNC_SCHEDULE", "@every 1h"),
		Backup:           loadBackupConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.BaseCurrency == "" {
		return fmt.Errorf("base currency must not be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	return nil
}

// loadBackupConfig loads S3 backup configuration.
// Credentials come from the standard AWS env var / shared config chain.
func loadBackupConfig() *BackupConfig {
	return &BackupConfig{
		Bucket:      getEnv("BACKUP_S3_BUCKET", ""),
		Endpoint:    getEnv("BACKUP_S3_ENDPOINT", ""),
		Region:      getEnv("BACKUP_S3_REGION", "auto"),
		Schedule:    getEnv("BACKUP_SCHEDULE", "0 3 * * *"),
		KeepBackups: getEnvAsInt("BACKUP_KEEP", 7),
	}
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

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
