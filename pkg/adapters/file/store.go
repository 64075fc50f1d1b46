package file

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/quoteflow/pkg/domain"
)

const ext = ".json"

// Store implements ports.BlobStore using the local filesystem.
// Each key is stored as one JSON file in a configured directory.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".quoteflow/answers".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".quoteflow", "answers")
	}
	return &Store{BasePath: basePath}
}

// Keys may contain characters that are not valid in file names (e.g. "api:abc"),
// so they are path-escaped.
func (s *Store) path(key string) string {
	return filepath.Join(s.BasePath, url.PathEscape(key)+ext)
}

// Put writes the blob atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure store directory: %w", err)
	}

	destPath := s.path(key)

	// Same directory keeps the rename on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-*"+ext+".part")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}

	// Cannot rename an open file on Windows.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing blob for overwrite: %w", err)
		}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// Get reads the blob stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("key cannot be empty")
	}

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read blob file: %w", err)
	}
	return data, nil
}

// Delete removes the blob file.
func (s *Store) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete blob file: %w", err)
	}
	return nil
}

// List returns all stored keys.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list blobs: %w", err)
	}

	var keys []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ext) {
			continue
		}
		key, err := url.PathUnescape(strings.TrimSuffix(name, ext))
		if err != nil {
			continue
		}
		keys = append(keys, key)
	}
	return keys, nil
}
