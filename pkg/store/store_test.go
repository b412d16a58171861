package store

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/redditscore/textclf/pkg/config"
	"github.com/redditscore/textclf/pkg/models"
)

var (
	docs   = []string{"free prize now", "free money offer", "meeting at noon", "see the report"}
	labels = []string{"spam", "spam", "ham", "ham"}
)

func trainedModel(t *testing.T) models.Classifier {
	t.Helper()
	m, err := models.NewMultinomialModel(&models.Config{Ngrams: 2, Tfidf: true, RandomState: 24}, nil)
	if err != nil {
		t.Fatalf("NewMultinomialModel failed: %v", err)
	}
	if err := m.Fit(docs, labels); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	return m
}

// exerciseStore runs the shared Put/Get/List/Delete scenario against a backend
func exerciseStore(t *testing.T, s Store) {
	ctx := context.Background()
	m := trainedModel(t)
	want, err := m.Predict(docs)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Put(ctx, "spam-v1", m); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Put(ctx, "alpha", m); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	names, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"alpha", "spam-v1"}) {
		t.Errorf("List = %v", names)
	}

	got, err := s.Get(ctx, "spam-v1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	pred, err := got.Predict(docs)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if !reflect.DeepEqual(pred, want) {
		t.Errorf("Predictions %v, expected %v", pred, want)
	}

	if err := s.Delete(ctx, "alpha"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(ctx, "alpha"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, "alpha"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound deleting twice, got %v", err)
	}

	if err := s.Put(ctx, "../escape", m); err == nil {
		t.Error("Expected error for invalid name")
	}
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	defer s.Close()

	exerciseStore(t, s)
}

func TestOpen(t *testing.T) {
	cfg := config.DefaultConfig().Storage
	cfg.Dir = t.TempDir()

	s, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, ok := s.(*FileStore); !ok {
		t.Errorf("Expected *FileStore, got %T", s)
	}

	cfg.Backend = "s3"
	if _, err := Open(cfg); err == nil {
		t.Error("Expected error for unknown backend")
	}
}

func TestRedisStore(t *testing.T) {
	if !isRedisAvailable() {
		t.Skip("Redis not available, skipping Redis store tests")
	}

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   1, // Use test database
	})
	prefix := "textclf_test_" + time.Now().Format("150405.000")
	s := NewRedisStoreFromClient(client, prefix, time.Minute)
	defer func() {
		ctx := context.Background()
		keys, _ := client.Keys(ctx, prefix+":*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		s.Close()
	}()

	exerciseStore(t, s)

	ttl, err := client.TTL(context.Background(), s.modelKey("spam-v1")).Result()
	if err != nil {
		t.Fatalf("TTL failed: %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("Expected TTL within a minute, got %v", ttl)
	}

	// An expired key leaves its name in the index until List prunes it
	ctx := context.Background()
	if err := s.Put(ctx, "stale", trainedModel(t)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := client.Del(ctx, s.modelKey("stale")).Err(); err != nil {
		t.Fatalf("Del failed: %v", err)
	}
	names, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	for _, name := range names {
		if name == "stale" {
			t.Error("Expired model should not be listed")
		}
	}
	member, err := client.SIsMember(ctx, s.indexKey(), "stale").Result()
	if err != nil {
		t.Fatalf("SIsMember failed: %v", err)
	}
	if member {
		t.Error("Expired model should be pruned from the index")
	}
}

// Helper function to check if Redis is available
func isRedisAvailable() bool {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   1, // Use test database
	})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := client.Ping(ctx).Err()
	return err == nil
}
