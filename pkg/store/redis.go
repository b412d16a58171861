package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/redditscore/textclf/pkg/models"
)

// RedisOptions configures a RedisStore
type RedisOptions struct {
	URL         string
	DatabaseNum int
	KeyPrefix   string

	// TTL expires stored models; zero keeps them forever
	TTL time.Duration
}

// RedisStore keeps encoded models under <prefix>:model:<name>, with the
// names indexed in the set <prefix>:models
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection
func NewRedisStore(opts *RedisOptions) (*RedisStore, error) {
	opt, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}
	opt.DB = opts.DatabaseNum

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return NewRedisStoreFromClient(client, opts.KeyPrefix, opts.TTL), nil
}

// NewRedisStoreFromClient wraps an existing client
func NewRedisStoreFromClient(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "textclf"
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (rs *RedisStore) modelKey(name string) string {
	return fmt.Sprintf("%s:model:%s", rs.prefix, name)
}

func (rs *RedisStore) indexKey() string {
	return rs.prefix + ":models"
}

// Put implements Store
func (rs *RedisStore) Put(ctx context.Context, name string, c models.Classifier) error {
	if err := checkName(name); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := models.Encode(&buf, c); err != nil {
		return err
	}

	pipe := rs.client.TxPipeline()
	pipe.Set(ctx, rs.modelKey(name), buf.Bytes(), rs.ttl)
	pipe.SAdd(ctx, rs.indexKey(), name)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store model %s: %w", name, err)
	}

	slog.Debug("store: put", "backend", "redis", "name", name, "bytes", buf.Len())
	return nil
}

// Get implements Store
func (rs *RedisStore) Get(ctx context.Context, name string) (models.Classifier, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}

	data, err := rs.client.Get(ctx, rs.modelKey(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch model %s: %w", name, err)
	}

	return models.Decode(bytes.NewReader(data))
}

// Delete implements Store
func (rs *RedisStore) Delete(ctx context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}

	pipe := rs.client.TxPipeline()
	del := pipe.Del(ctx, rs.modelKey(name))
	pipe.SRem(ctx, rs.indexKey(), name)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete model %s: %w", name, err)
	}
	if del.Val() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

// List implements Store. Names whose key has expired are pruned from the index.
func (rs *RedisStore) List(ctx context.Context) ([]string, error) {
	members, err := rs.client.SMembers(ctx, rs.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	var names []string
	for _, name := range members {
		n, err := rs.client.Exists(ctx, rs.modelKey(name)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to list models: %w", err)
		}
		if n == 0 {
			if err := rs.client.SRem(ctx, rs.indexKey(), name).Err(); err != nil {
				slog.Warn("store: failed to prune expired model from index", "name", name, "error", err)
			}
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Close implements Store
func (rs *RedisStore) Close() error {
	return rs.client.Close()
}

var _ Store = (*RedisStore)(nil)
