package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/storage/gcs"
)

type objectOpener interface {
	Open(ctx context.Context, object string) (io.ReadCloser, int64, error)
}

// GCS reads documents from a Cloud Storage bucket under a prefix.
type GCS struct {
	client   objectOpener
	prefix   string
	maxBytes int64
}

func NewGCS(ctx context.Context, cfg config.GCSConfig, maxBytes int64, logg *logger.Logger) (*GCS, error) {
	client, err := gcs.NewClient(ctx, cfg, logg)
	if err != nil {
		return nil, err
	}
	return newGCS(client, cfg.Prefix, maxBytes), nil
}

func newGCS(client objectOpener, prefix string, maxBytes int64) *GCS {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &GCS{client: client, prefix: prefix, maxBytes: maxBytes}
}

func (s *GCS) Kind() string { return "gcs" }

func (s *GCS) Fetch(ctx context.Context, name string) ([]byte, error) {
	base, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	body, size, err := s.client.Open(ctx, s.prefix+base)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open object %s: %w", base, err)
	}
	defer body.Close()
	if size > s.maxBytes {
		return nil, ErrTooLarge
	}
	return ReadLimited(body, s.maxBytes)
}
