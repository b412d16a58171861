// Package store keeps trained models by name on disk or in Redis.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/redditscore/textclf/pkg/config"
	"github.com/redditscore/textclf/pkg/models"
)

// ErrNotFound is returned when no model is stored under a name
var ErrNotFound = errors.New("model not found")

// Store is a named collection of trained models
type Store interface {
	Put(ctx context.Context, name string, c models.Classifier) error
	Get(ctx context.Context, name string) (models.Classifier, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]string, error)
	Close() error
}

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// checkName rejects names that could escape the store namespace
func checkName(name string) error {
	if !validName.MatchString(name) {
		return fmt.Errorf("invalid model name %q", name)
	}
	return nil
}

// Open creates the backend selected by the storage configuration
func Open(cfg config.StorageConfig) (Store, error) {
	switch cfg.Backend {
	case "file", "":
		return NewFileStore(cfg.Dir)
	case "redis":
		ttl, err := cfg.Redis.Expiration()
		if err != nil {
			return nil, err
		}
		return NewRedisStore(&RedisOptions{
			URL:         cfg.Redis.URL,
			DatabaseNum: cfg.Redis.DatabaseNum,
			KeyPrefix:   cfg.Redis.KeyPrefix,
			TTL:         ttl,
		})
	}
	return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
}
