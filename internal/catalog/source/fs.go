package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FS reads documents from a local directory.
type FS struct {
	dir      string
	maxBytes int64
}

func NewFS(dir string, maxBytes int64) (*FS, error) {
	if dir == "" {
		return nil, errors.New("catalog directory required")
	}
	if maxBytes <= 0 {
		return nil, errors.New("catalog document limit must be positive")
	}
	return &FS{dir: dir, maxBytes: maxBytes}, nil
}

func (s *FS) Kind() string { return "fs" }

func (s *FS) Fetch(ctx context.Context, name string) ([]byte, error) {
	base, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.dir, base))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open %s: %w", base, err)
	}
	defer f.Close()
	return ReadLimited(f, s.maxBytes)
}
