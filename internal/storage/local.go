package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

type localStore struct {
	dir     string
	baseURL string
}

// NewLocalStore keeps artifacts on disk under dir and serves them from
// baseURL (the /audio route).
func NewLocalStore(dir, baseURL string) (ArtifactStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create audio dir: %w", err)
	}

	return &localStore{dir: dir, baseURL: baseURL}, nil
}

func (s *localStore) Save(ctx context.Context, name string, r io.Reader, contentType string) (string, error) {
	name = filepath.Base(name)

	out, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create artifact: %w", err)
	}

	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", fmt.Errorf("write artifact: %w", err)
	}

	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close artifact: %w", err)
	}

	return s.baseURL + "/" + name, nil
}

func (s *localStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	// filepath.Base strips any traversal in a client-supplied name
	name = filepath.Base(name)

	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("open artifact %q: %w", name, err)
	}

	return f, nil
}
