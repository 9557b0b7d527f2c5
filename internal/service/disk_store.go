package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DiskStore writes images below a local directory that the HTTP server
// exposes at /images.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating images dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

func (d *DiskStore) Save(_ context.Context, key string, data []byte, _ string) (string, error) {
	if key != filepath.Base(key) {
		return "", fmt.Errorf("invalid image key %q", key)
	}

	path := filepath.Join(d.dir, key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("writing image: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("writing image: %w", err)
	}

	return "/images/" + key, nil
}
