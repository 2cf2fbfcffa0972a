package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Default feed: the public Google careers job listing feed.
const defaultFeedURL = "https://www.google.com/about/careers/applications/jobs/feed.xml"

// Config holds all configuration for the radar. Everything has a
// default; the job must be runnable with zero environment.
type Config struct {
	// Feed settings
	FeedURL             string `json:"feed_url"`
	FetchTimeoutSeconds int    `json:"fetch_timeout_seconds"`

	// Artifact store settings
	StoreType   string `json:"store_type"` // "local" or "cloud-storage"
	OutputDir   string `json:"output_dir"`
	StoreBucket string `json:"store_bucket"`
	StorePrefix string `json:"store_prefix"`

	// Slack settings (optional breakage alerts)
	SlackWebhookURL string `json:"-"` // Don't expose in JSON

	// Server settings
	Port string `json:"port"`
	Host string `json:"host"`

	// Cron schedule for the server mode; empty disables scheduling
	CronSchedule string `json:"cron_schedule"`
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	config := &Config{
		FeedURL:             getEnvOrDefault("FEED_URL", defaultFeedURL),
		FetchTimeoutSeconds: getEnvOrDefaultInt("FETCH_TIMEOUT_SECONDS", 60),
		StoreType:           getEnvOrDefault("STORE_TYPE", "local"),
		OutputDir:           getEnvOrDefault("OUTPUT_DIR", "data"),
		StoreBucket:         getEnvOrDefault("STORE_BUCKET", "language-needs-radar"),
		StorePrefix:         getEnvOrDefault("STORE_PREFIX", "radar"),
		SlackWebhookURL:     getEnvOrDefault("SLACK_WEBHOOK_URL", ""),
		Port:                getEnvOrDefault("PORT", "8080"),
		Host:                getEnvOrDefault("HOST", "0.0.0.0"),
		CronSchedule:        getEnvOrDefault("RADAR_CRON", ""),
	}

	return config, config.validate()
}

// validate checks that configuration values are usable
func (c *Config) validate() error {
	if c.FeedURL == "" {
		return &ConfigError{Field: "FEED_URL", Message: "feed URL must not be empty"}
	}
	if c.FetchTimeoutSeconds <= 0 {
		return &ConfigError{Field: "FETCH_TIMEOUT_SECONDS", Message: "timeout must be positive"}
	}
	if c.StoreType != "local" && c.StoreType != "cloud-storage" {
		return &ConfigError{Field: "STORE_TYPE", Message: `store type must be "local" or "cloud-storage"`}
	}
	return nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default if not set
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
