package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/redditscore/textclf/pkg/models"
)

// Environment variables that override file values
const (
	EnvRedisURL       = "TEXTCLF_REDIS_URL"
	EnvStorageBackend = "TEXTCLF_STORAGE_BACKEND"
	EnvLogLevel       = "TEXTCLF_LOG_LEVEL"
)

// Config represents textclf configuration
type Config struct {
	// Model construction defaults
	Model ModelConfig `yaml:"model"`

	// Where trained models are kept
	Storage StorageConfig `yaml:"storage"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging"`
}

// ModelConfig selects the model variant and its options
type ModelConfig struct {
	// Variant: "multinomial", "bernoulli" or "svm"
	Type string `yaml:"type"`

	Ngrams      int   `yaml:"ngrams"`
	Tfidf       bool  `yaml:"tfidf"`
	RandomState int64 `yaml:"random_state"`

	// Estimator hyperparameters, e.g. alpha or C
	Params map[string]any `yaml:"params,omitempty"`
}

// StorageConfig contains model storage settings
type StorageConfig struct {
	// Backend selection: "file" or "redis"
	Backend string `yaml:"backend"`

	// File backend directory
	Dir string `yaml:"dir"`

	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig contains Redis backend settings
type RedisConfig struct {
	URL         string `yaml:"url"`
	DatabaseNum int    `yaml:"database_num"`
	KeyPrefix   string `yaml:"key_prefix"`
	TTL         string `yaml:"ttl"` // Duration string like "720h", empty = no expiry
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// DefaultConfig returns textclf default configuration
func DefaultConfig() *Config {
	defaults := models.DefaultConfig()
	return &Config{
		Model: ModelConfig{
			Type:        string(models.KindMultinomial),
			Ngrams:      defaults.Ngrams,
			Tfidf:       defaults.Tfidf,
			RandomState: defaults.RandomState,
		},
		Storage: StorageConfig{
			Backend: "file",
			Dir:     "models",
			Redis: RedisConfig{
				URL:       "redis://localhost:6379",
				KeyPrefix: "textclf",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from file, then applies environment overrides.
// An empty path yields the defaults plus overrides.
func LoadConfig(configPath string) (*Config, error) {
	// Best-effort: load .env from current directory
	_ = godotenv.Load()

	config := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}

		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	config.applyEnv()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvRedisURL)); v != "" {
		c.Storage.Redis.URL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvStorageBackend)); v != "" {
		c.Storage.Backend = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
}

// SaveConfig saves configuration to file
func (c *Config) SaveConfig(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if !validKind(c.Model.Type) {
		return fmt.Errorf("invalid model type: %s", c.Model.Type)
	}

	if c.Model.Ngrams < 1 {
		return fmt.Errorf("model ngrams must be >= 1")
	}

	switch c.Storage.Backend {
	case "file":
		if c.Storage.Dir == "" {
			return fmt.Errorf("storage dir cannot be empty for the file backend")
		}
	case "redis":
		if c.Storage.Redis.URL == "" {
			return fmt.Errorf("storage redis url cannot be empty for the redis backend")
		}
	default:
		return fmt.Errorf("invalid storage backend: %s", c.Storage.Backend)
	}

	if _, err := c.Storage.Redis.Expiration(); err != nil {
		return err
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	validLevel := false
	for _, level := range validLevels {
		if c.Logging.Level == level {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid logging level: %s", c.Logging.Level)
	}

	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("invalid logging format: %s", c.Logging.Format)
	}

	return nil
}

// Expiration parses the TTL, zero meaning keys never expire
func (r RedisConfig) Expiration() (time.Duration, error) {
	if r.TTL == "" {
		return 0, nil
	}
	ttl, err := time.ParseDuration(r.TTL)
	if err != nil {
		return 0, fmt.Errorf("invalid redis ttl %q: %w", r.TTL, err)
	}
	if ttl < 0 {
		return 0, fmt.Errorf("redis ttl must not be negative")
	}
	return ttl, nil
}

// ModelOptions converts the model section into wrapper options
func (m ModelConfig) ModelOptions() *models.Config {
	return &models.Config{
		Ngrams:      m.Ngrams,
		Tfidf:       m.Tfidf,
		RandomState: m.RandomState,
	}
}

func validKind(name string) bool {
	for _, kind := range models.Kinds() {
		if string(kind) == name {
			return true
		}
	}
	return false
}
