package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

type LocalStore struct {
	dir       string
	publicURL string
}

func NewLocalStore(dir, publicURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage/local: mkdir %s: %w", dir, err)
	}
	return &LocalStore{dir: dir, publicURL: publicURL}, nil
}

func (s *LocalStore) Dir() string { return s.dir }

func (s *LocalStore) PublicURL() string { return s.publicURL }

func (s *LocalStore) Save(_ context.Context, filename string, r io.Reader) (string, error) {
	name, err := ObjectName(filename)
	if err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("storage/local: create %s: %w", name, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("storage/local: write %s: %w", name, err)
	}
	return joinURL(s.publicURL, name), nil
}

func (s *LocalStore) Delete(_ context.Context, url string) error {
	if url == "" {
		return nil
	}
	name := path.Base(url)
	if name == "." || name == "/" || strings.Contains(name, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage/local: delete %s: %w", name, err)
	}
	return nil
}
