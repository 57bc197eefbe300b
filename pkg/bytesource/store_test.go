package bytesource

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_RoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "schemas/person.json", []byte(`{"type":"object"}`)))

	exists, err := store.Exists(ctx, "schemas/person.json")
	require.NoError(t, err)
	assert.True(t, exists)

	rc, err := store.Open(ctx, "schemas/person.json")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, `{"type":"object"}`, string(data))
}

func TestFileStore_MissingArtifact(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open(context.Background(), "nope.txt")
	assert.ErrorContains(t, err, "artifact not found")
}

func TestFileStore_RejectsPathEscape(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	err = store.Put(context.Background(), "../escape.txt", []byte("x"))
	assert.ErrorContains(t, err, "escapes store root")
}

func TestFileStore_List(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "artifacts/a.txt", []byte("a")))
	require.NoError(t, store.Put(ctx, "artifacts/nested/b.txt", []byte("b")))

	paths, err := store.List(ctx, "artifacts")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"artifacts/a.txt", "artifacts/nested/b.txt"}, paths)
}

func TestFileStore_Delete(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "gone.txt", []byte("x")))
	require.NoError(t, store.Delete(ctx, "gone.txt"))

	exists, err := store.Exists(ctx, "gone.txt")
	require.NoError(t, err)
	assert.False(t, exists)

	// deleting again is not an error
	require.NoError(t, store.Delete(ctx, "gone.txt"))
}

func TestNewStoreFromEnv_Default(t *testing.T) {
	os.Unsetenv("ONTOLOGY_ARTIFACT_BACKEND")
	dir := t.TempDir()
	t.Setenv("ONTOLOGY_ARTIFACT_DIR", dir)

	store, err := NewStoreFromEnv(context.Background())
	require.NoError(t, err)

	fs, ok := store.(*FileStore)
	require.True(t, ok)
	assert.Equal(t, dir, fs.baseDir)
}

func TestNewStoreFromEnv_S3MissingBucket(t *testing.T) {
	t.Setenv("ONTOLOGY_ARTIFACT_BACKEND", "s3")
	os.Unsetenv("ONTOLOGY_ARTIFACT_S3_BUCKET")

	_, err := NewStoreFromEnv(context.Background())
	assert.ErrorContains(t, err, "ONTOLOGY_ARTIFACT_S3_BUCKET is required")
}

func TestNewStoreFromEnv_UnsupportedBackend(t *testing.T) {
	t.Setenv("ONTOLOGY_ARTIFACT_BACKEND", "azure")

	_, err := NewStoreFromEnv(context.Background())
	assert.ErrorContains(t, err, "unsupported artifact backend")
}

func TestOpenAutoMode_DetectsText(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "notes.txt", []byte("hello world")))
	require.NoError(t, store.Put(ctx, "blob.bin", []byte{0xff, 0xfe, 0x00, 0x01, 0x80}))

	rc, isText, err := OpenAutoMode(ctx, store, "notes.txt")
	require.NoError(t, err)
	defer rc.Close()
	assert.True(t, isText)

	rc2, isText2, err := OpenAutoMode(ctx, store, "blob.bin")
	require.NoError(t, err)
	defer rc2.Close()
	assert.False(t, isText2)
}
