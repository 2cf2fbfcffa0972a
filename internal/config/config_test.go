package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with empty environment failed: %v", err)
	}

	if !strings.Contains(cfg.FeedURL, "google.com") {
		t.Errorf("FeedURL default = %q", cfg.FeedURL)
	}
	if cfg.FetchTimeoutSeconds != 60 {
		t.Errorf("FetchTimeoutSeconds default = %d, want 60", cfg.FetchTimeoutSeconds)
	}
	if cfg.StoreType != "local" {
		t.Errorf("StoreType default = %q, want local", cfg.StoreType)
	}
	if cfg.OutputDir != "data" {
		t.Errorf("OutputDir default = %q, want data", cfg.OutputDir)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port default = %q, want 8080", cfg.Port)
	}
	if cfg.SlackWebhookURL != "" {
		t.Errorf("SlackWebhookURL default = %q, want empty", cfg.SlackWebhookURL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FEED_URL", "https://example.com/jobs.xml")
	t.Setenv("OUTPUT_DIR", "/tmp/out")
	t.Setenv("FETCH_TIMEOUT_SECONDS", "15")
	t.Setenv("STORE_TYPE", "cloud-storage")
	t.Setenv("STORE_BUCKET", "my-bucket")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.FeedURL != "https://example.com/jobs.xml" {
		t.Errorf("FeedURL = %q", cfg.FeedURL)
	}
	if cfg.OutputDir != "/tmp/out" {
		t.Errorf("OutputDir = %q", cfg.OutputDir)
	}
	if cfg.FetchTimeoutSeconds != 15 {
		t.Errorf("FetchTimeoutSeconds = %d", cfg.FetchTimeoutSeconds)
	}
	if cfg.StoreType != "cloud-storage" || cfg.StoreBucket != "my-bucket" {
		t.Errorf("Store config = %q / %q", cfg.StoreType, cfg.StoreBucket)
	}
}

func TestLoadInvalidStoreType(t *testing.T) {
	t.Setenv("STORE_TYPE", "ftp")

	_, err := Load()
	if err == nil {
		t.Fatal("Expected validation error for unknown store type")
	}
	configErr, ok := err.(*ConfigError)
	if !ok {
		t.Fatalf("Expected *ConfigError, got %T", err)
	}
	if configErr.Field != "STORE_TYPE" {
		t.Errorf("ConfigError field = %q", configErr.Field)
	}
}

func TestLoadInvalidTimeout(t *testing.T) {
	t.Setenv("FETCH_TIMEOUT_SECONDS", "-1")

	if _, err := Load(); err == nil {
		t.Fatal("Expected validation error for negative timeout")
	}
}

func TestLoadMalformedIntFallsBack(t *testing.T) {
	t.Setenv("FETCH_TIMEOUT_SECONDS", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.FetchTimeoutSeconds != 60 {
		t.Errorf("FetchTimeoutSeconds = %d, want default 60", cfg.FetchTimeoutSeconds)
	}
}
