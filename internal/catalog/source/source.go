// Package source loads catalog documents from the configured storage.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

var (
	ErrNotFound    = errors.New("catalog document not found")
	ErrTooLarge    = errors.New("catalog document too large")
	ErrInvalidName = errors.New("invalid catalog document name")
)

// Source fetches catalog documents by file name.
type Source interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
	Kind() string
}

// New builds the source selected by cfg.Catalog.Source.
func New(ctx context.Context, cfg config.Config, logg *logger.Logger) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Catalog.Source)) {
	case config.CatalogSourceFS:
		return NewFS(cfg.Catalog.Dir, cfg.Catalog.MaxDocumentBytes())
	case config.CatalogSourceS3:
		return NewS3(ctx, cfg.S3, cfg.Catalog.MaxDocumentBytes())
	case config.CatalogSourceGCS:
		return NewGCS(ctx, cfg.GCS, cfg.Catalog.MaxDocumentBytes(), logg)
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Catalog.Source)
	}
}

// cleanName strips any directory component from a caller supplied name.
func cleanName(name string) (string, error) {
	base := filepath.Base(strings.TrimSpace(name))
	switch base {
	case "", ".", "..", string(filepath.Separator):
		return "", ErrInvalidName
	}
	return base, nil
}

// ReadLimited reads r fully, failing with ErrTooLarge past max bytes.
func ReadLimited(r io.Reader, max int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > max {
		return nil, ErrTooLarge
	}
	return data, nil
}
