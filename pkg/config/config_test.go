package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config should be valid: %v", err)
	}
	if cfg.Model.Ngrams != 1 || !cfg.Model.Tfidf || cfg.Model.RandomState != 24 {
		t.Errorf("Unexpected model defaults %+v", cfg.Model)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Model.Type = "svm"
	cfg.Model.Ngrams = 2
	cfg.Model.Params = map[string]any{"C": 2.5, "kernel": "linear"}
	cfg.Storage.Redis.TTL = "24h"

	if err := cfg.SaveConfig(path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if loaded.Model.Type != "svm" || loaded.Model.Ngrams != 2 {
		t.Errorf("Model section not restored: %+v", loaded.Model)
	}
	if loaded.Model.Params["C"] != 2.5 || loaded.Model.Params["kernel"] != "linear" {
		t.Errorf("Params not restored: %v", loaded.Model.Params)
	}
	ttl, err := loaded.Storage.Redis.Expiration()
	if err != nil || ttl != 24*time.Hour {
		t.Errorf("Expiration = %v, %v", ttl, err)
	}

	opts := loaded.Model.ModelOptions()
	if opts.Ngrams != 2 || !opts.Tfidf {
		t.Errorf("ModelOptions = %+v", opts)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("model: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(bad); err == nil {
		t.Error("Expected error for malformed yaml")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv(EnvRedisURL, "redis://cache:6380")
	t.Setenv(EnvStorageBackend, "REDIS")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Storage.Redis.URL != "redis://cache:6380" {
		t.Errorf("Redis URL = %s", cfg.Storage.Redis.URL)
	}
	if cfg.Storage.Backend != "redis" {
		t.Errorf("Backend = %s", cfg.Storage.Backend)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %s", cfg.Logging.Level)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown model", func(c *Config) { c.Model.Type = "forest" }, "model type"},
		{"zero ngrams", func(c *Config) { c.Model.Ngrams = 0 }, "ngrams"},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "s3" }, "storage backend"},
		{"empty dir", func(c *Config) { c.Storage.Dir = "" }, "storage dir"},
		{"empty redis url", func(c *Config) {
			c.Storage.Backend = "redis"
			c.Storage.Redis.URL = ""
		}, "redis url"},
		{"bad ttl", func(c *Config) { c.Storage.Redis.TTL = "soon" }, "ttl"},
		{"negative ttl", func(c *Config) { c.Storage.Redis.TTL = "-1h" }, "ttl"},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }, "logging level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}
