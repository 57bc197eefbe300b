package bytesource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Backend names an artifact storage backend.
type Backend string

const (
	BackendFS  Backend = "fs"
	BackendS3  Backend = "s3"
	BackendGCS Backend = "gcs"
)

// NewStoreFromEnv builds an artifact byte source from environment variables.
//
// Environment variables:
//   - ONTOLOGY_ARTIFACT_BACKEND: "fs" (default), "s3", or "gcs"
//   - ONTOLOGY_ARTIFACT_DIR: base directory for the filesystem backend (default: "data/artifacts")
//
// For S3:
//   - ONTOLOGY_ARTIFACT_S3_BUCKET (required)
//   - ONTOLOGY_ARTIFACT_S3_REGION (falls back to AWS_REGION, then "us-east-1")
//   - ONTOLOGY_ARTIFACT_S3_ENDPOINT (optional, MinIO/LocalStack)
//   - ONTOLOGY_ARTIFACT_S3_PREFIX (optional)
//
// For GCS:
//   - ONTOLOGY_ARTIFACT_GCS_BUCKET (required)
//   - ONTOLOGY_ARTIFACT_GCS_PREFIX (optional)
func NewStoreFromEnv(ctx context.Context) (Store, error) {
	backend := Backend(os.Getenv("ONTOLOGY_ARTIFACT_BACKEND"))
	if backend == "" {
		backend = BackendFS
	}

	switch backend {
	case BackendFS:
		return newFileStoreFromEnv()
	case BackendS3:
		return newS3StoreFromEnv(ctx)
	case BackendGCS:
		return newGCSStoreFromEnv(ctx)
	default:
		return nil, fmt.Errorf("unsupported artifact backend: %s", backend)
	}
}

func newFileStoreFromEnv() (Store, error) {
	dir := os.Getenv("ONTOLOGY_ARTIFACT_DIR")
	if dir == "" {
		dir = filepath.Join("data", "artifacts")
	}
	return NewFileStore(dir)
}

func newS3StoreFromEnv(ctx context.Context) (Store, error) {
	bucket := os.Getenv("ONTOLOGY_ARTIFACT_S3_BUCKET")
	if bucket == "" {
		return nil, fmt.Errorf("ONTOLOGY_ARTIFACT_S3_BUCKET is required for S3 storage")
	}

	region := os.Getenv("ONTOLOGY_ARTIFACT_S3_REGION")
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	if region == "" {
		region = "us-east-1"
	}

	cfg := S3StoreConfig{
		Bucket:   bucket,
		Region:   region,
		Endpoint: os.Getenv("ONTOLOGY_ARTIFACT_S3_ENDPOINT"),
		Prefix:   os.Getenv("ONTOLOGY_ARTIFACT_S3_PREFIX"),
	}

	return NewS3Store(ctx, cfg)
}
