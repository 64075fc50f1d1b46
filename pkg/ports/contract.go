package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/quoteflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunBlobStoreContract runs a suite of tests to verify that a BlobStore implementation
// adheres to the defined interface contract.
func RunBlobStoreContract(t *testing.T, store BlobStore) {
	ctx := context.Background()
	key := "contract-test-" + time.Now().Format("20060102150405")

	t.Run("Put and Get", func(t *testing.T) {
		payload := []byte(`{"circuit":{"serviceType":"single"}}`)

		err := store.Put(ctx, key, payload)
		require.NoError(t, err, "Put should not return error")

		loaded, err := store.Get(ctx, key)
		require.NoError(t, err, "Get should not return error")
		assert.Equal(t, payload, loaded)
	})

	t.Run("Put Replaces", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, key, []byte(`{"v":1}`)))
		require.NoError(t, store.Put(ctx, key, []byte(`{"v":2}`)))

		loaded, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, `{"v":2}`, string(loaded))
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.Get(ctx, "non-existent-"+key)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, key, []byte(`{}`)))

		err := store.Delete(ctx, key)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Get(ctx, key)
		assert.ErrorIs(t, err, domain.ErrNotFound, "Get after Delete should return ErrNotFound")

		assert.NoError(t, store.Delete(ctx, key), "Deleting a missing key is not an error")
	})

	t.Run("List", func(t *testing.T) {
		k1 := key + "-1"
		k2 := key + "-2"
		_ = store.Put(ctx, k1, []byte(`{}`))
		_ = store.Put(ctx, k2, []byte(`{}`))

		defer func() {
			_ = store.Delete(ctx, k1)
			_ = store.Delete(ctx, k2)
		}()

		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, k1)
		assert.Contains(t, keys, k2)
	})
}
