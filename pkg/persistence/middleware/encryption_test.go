package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/quoteflow/pkg/domain"
	"github.com/aretw0/quoteflow/pkg/persistence/middleware"
	"github.com/aretw0/quoteflow/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ports.RunBlobStoreContract(t, mw(NewMockStore()))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := NewMockStore()
	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	ctx := context.Background()

	plain := []byte(`{"contact":{"email":"jane@example.com"}}`)
	require.NoError(t, secure.Put(ctx, "api", plain))

	stored := underlying.data["api"]
	assert.False(t, strings.Contains(string(stored), "jane@example.com"), "underlying blob must not contain plaintext")
	assert.Contains(t, string(stored), "__encrypted__")

	loaded, err := secure.Get(ctx, "api")
	require.NoError(t, err)
	assert.Equal(t, plain, loaded)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := NewMockStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	ctx := context.Background()

	oldStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlying)
	require.NoError(t, oldStore.Put(ctx, "api", []byte(`{"v":"old"}`)))

	newStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlying)

	loaded, err := newStore.Get(ctx, "api")
	require.NoError(t, err, "fallback key should decrypt")
	assert.JSONEq(t, `{"v":"old"}`, string(loaded))

	require.NoError(t, newStore.Put(ctx, "api", []byte(`{"v":"new"}`)))

	_, err = oldStore.Get(ctx, "api")
	assert.Error(t, err, "old key alone must not decrypt new data")
}

func TestEncryptionMiddleware_RejectsPlainBlob(t *testing.T) {
	underlying := NewMockStore()
	underlying.data["api"] = []byte(`{"circuit":{}}`)

	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	_, err := secure.Get(context.Background(), "api")
	assert.Error(t, err)
}

func TestEncryptionMiddleware_PropagatesNotFound(t *testing.T) {
	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(NewMockStore())
	_, err := secure.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	})
}
