//go:build gcp

package bytesource

import (
	"context"
	"fmt"
	"os"
)

func newGCSStoreFromEnv(ctx context.Context) (Store, error) {
	bucket := os.Getenv("ONTOLOGY_ARTIFACT_GCS_BUCKET")
	if bucket == "" {
		return nil, fmt.Errorf("ONTOLOGY_ARTIFACT_GCS_BUCKET is required for GCS storage")
	}

	cfg := GCSStoreConfig{
		Bucket: bucket,
		Prefix: os.Getenv("ONTOLOGY_ARTIFACT_GCS_PREFIX"),
	}

	return NewGCSStore(ctx, cfg)
}
