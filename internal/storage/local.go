package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps one folder per bucket under root.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

func (s *LocalStore) objectPath(bucket, path string) (string, error) {
	if bucket == "" || path == "" || strings.Contains(bucket, "..") || strings.ContainsAny(bucket, `/\`) {
		return "", ErrInvalidPath
	}
	clean := filepath.Clean(path)
	if filepath.IsAbs(clean) || clean == "." || strings.HasPrefix(clean, "..") {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.root, bucket, clean), nil
}

func (s *LocalStore) EnsureBuckets(_ context.Context, buckets ...string) error {
	for _, bucket := range buckets {
		if err := os.MkdirAll(filepath.Join(s.root, bucket), 0o755); err != nil {
			return fmt.Errorf("failed to create bucket folder %s: %w", bucket, err)
		}
	}
	return nil
}

func (s *LocalStore) Upload(_ context.Context, bucket, path string, data []byte, _ string) error {
	full, err := s.objectPath(bucket, path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("failed to create folder: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("failed to write object: %w", err)
	}
	return nil
}

func (s *LocalStore) Download(_ context.Context, bucket, path string) ([]byte, error) {
	full, err := s.objectPath(bucket, path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to read object: %w", err)
	}
	return data, nil
}

func (s *LocalStore) Remove(_ context.Context, bucket, path string) error {
	full, err := s.objectPath(bucket, path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrObjectNotFound
		}
		return fmt.Errorf("failed to remove object: %w", err)
	}
	return nil
}
