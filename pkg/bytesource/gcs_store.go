//go:build gcp

package bytesource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// GCSStore is a Google Cloud Storage backed Store, keyed by module-relative path.
type GCSStore struct {
	client *storage.Client
	bucket string
	prefix string
}

// GCSStoreConfig holds configuration for GCSStore.
type GCSStoreConfig struct {
	Bucket string
	Prefix string
}

// NewGCSStore creates a new GCS-backed artifact store.
func NewGCSStore(ctx context.Context, cfg GCSStoreConfig) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	return &GCSStore{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

func (s *GCSStore) object(path string) *storage.ObjectHandle {
	return s.client.Bucket(s.bucket).Object(s.prefix + path)
}

func (s *GCSStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	r, err := s.object(path).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs get failed for %s: %w", path, err)
	}
	return r, nil
}

func (s *GCSStore) Put(ctx context.Context, path string, data []byte) error {
	w := s.object(path).NewWriter(ctx)
	w.ContentType = "application/octet-stream"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("gcs write failed for %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs close failed for %s: %w", path, err)
	}
	return nil
}

func (s *GCSStore) Exists(ctx context.Context, path string) (bool, error) {
	_, err := s.object(path).Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("gcs attrs error for %s: %w", path, err)
	}
	return true, nil
}

func (s *GCSStore) Delete(ctx context.Context, path string) error {
	err := s.object(path).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("gcs delete failed for %s: %w", path, err)
	}
	return nil
}

func (s *GCSStore) List(ctx context.Context, prefix string) ([]string, error) {
	var out []string
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: s.prefix + prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("gcs list failed for %s: %w", prefix, err)
		}
		out = append(out, strings.TrimPrefix(attrs.Name, s.prefix))
	}
	return out, nil
}

// Close closes the GCS client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}
