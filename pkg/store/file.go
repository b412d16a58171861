package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/redditscore/textclf/pkg/models"
)

const modelExt = ".model"

// FileStore keeps one <name>.model file per model in a directory
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create model directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the file backing a model name
func (fs *FileStore) Path(name string) string {
	return filepath.Join(fs.dir, name+modelExt)
}

// Put implements Store
func (fs *FileStore) Put(ctx context.Context, name string, c models.Classifier) error {
	if err := checkName(name); err != nil {
		return err
	}
	return models.Save(c, fs.Path(name))
}

// Get implements Store
func (fs *FileStore) Get(ctx context.Context, name string) (models.Classifier, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	c, err := models.Load(fs.Path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return c, err
}

// Delete implements Store
func (fs *FileStore) Delete(ctx context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	err := os.Remove(fs.Path(name))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return err
}

// List implements Store
func (fs *FileStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read model directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), modelExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), modelExt))
	}
	sort.Strings(names)
	return names, nil
}

// Close implements Store
func (fs *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
