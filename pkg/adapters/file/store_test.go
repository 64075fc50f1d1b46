package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/quoteflow/pkg/adapters/file"
	"github.com/aretw0/quoteflow/pkg/domain"
	"github.com/aretw0/quoteflow/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.BlobStore = (*file.Store)(nil)

func TestFileStore_Contract(t *testing.T) {
	store := file.New(t.TempDir())
	ports.RunBlobStoreContract(t, store)
}

func TestFileStore_EscapesKeys(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "api:session/1", []byte(`{}`)))

	_, err := os.Stat(filepath.Join(dir, "api:session%2F1.json"))
	assert.NoError(t, err, "key should be path-escaped on disk")

	keys, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"api:session/1"}, keys)
}

func TestFileStore_NoTempLeftovers(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Put(ctx, "api", []byte(`{"n":1}`)))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStore_ListMissingDir(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "missing"))
	keys, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, keys)

	_, err = store.Get(context.Background(), "api")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
