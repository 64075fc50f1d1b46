package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/quoteflow/pkg/adapters/redis"
	"github.com/aretw0/quoteflow/pkg/domain"
	"github.com/aretw0/quoteflow/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunBlobStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "api", []byte(`{"circuit":{}}`)))

	keys, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, keys, "api")

	mr.FastForward(2 * time.Second)

	_, err = store.Get(ctx, "api")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// The index is pruned against wall-clock time, not miniredis time.
	time.Sleep(1200 * time.Millisecond)

	keys, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "my-session", []byte(`{}`)))

	assert.True(t, mr.Exists("custom:app:my-session"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")

	keys, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, keys, "my-session")
}
