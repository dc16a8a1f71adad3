package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// LocalStore writes blobs into a directory on disk.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) Put(_ context.Context, name string, data []byte) (string, error) {
	key := NewKey(name)
	if err := os.WriteFile(filepath.Join(s.dir, key), data, 0o644); err != nil {
		return "", fmt.Errorf("write blob: %w", err)
	}
	return refForKey(key), nil
}

func (s *LocalStore) Get(_ context.Context, ref string) (Blob, error) {
	key, err := KeyFromRef(ref)
	if err != nil {
		return Blob{}, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, key))
	if errors.Is(err, os.ErrNotExist) {
		return Blob{}, ErrNotFound
	}
	if err != nil {
		return Blob{}, fmt.Errorf("read blob: %w", err)
	}
	return Blob{Data: data, ContentType: contentTypeFor(key, data)}, nil
}

// Delete treats a missing file as already deleted.
func (s *LocalStore) Delete(_ context.Context, ref string) error {
	key, err := KeyFromRef(ref)
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(s.dir, key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove blob: %w", err)
	}
	return nil
}
