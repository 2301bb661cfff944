package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// diskStore implements Service on the local filesystem, writing under the
// public uploads directory so files are served as static assets.
type diskStore struct {
	dir       string
	urlPrefix string
}

func newDiskStore(cfg ServiceConfig) (*diskStore, error) {
	if err := os.MkdirAll(cfg.UploadsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}

	prefix := cfg.URLPrefix
	if prefix == "" {
		prefix = "/uploads/"
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	return &diskStore{dir: cfg.UploadsDir, urlPrefix: prefix}, nil
}

// Save writes the object to disk and returns its public path.
func (d *diskStore) Save(ctx context.Context, key string, mimeType string, body io.Reader) (string, error) {
	name := path.Base(key)

	f, err := os.Create(filepath.Join(d.dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write upload file: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close upload file: %w", err)
	}

	return d.urlPrefix + name, nil
}

// Delete removes the file behind a public upload path. path.Base guards
// against traversal through a crafted URL.
func (d *diskStore) Delete(ctx context.Context, url string) error {
	if !strings.HasPrefix(url, d.urlPrefix) {
		return nil
	}

	name := path.Base(strings.TrimPrefix(url, d.urlPrefix))
	if name == "" || name == "." || name == "/" {
		return nil
	}

	err := os.Remove(filepath.Join(d.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete upload file: %w", err)
	}

	return nil
}
