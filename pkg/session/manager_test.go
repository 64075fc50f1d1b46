package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/quoteflow/pkg/adapters/memory"
	"github.com/aretw0/quoteflow/pkg/adapters/redis"
	"github.com/aretw0/quoteflow/pkg/domain"
	"github.com/aretw0/quoteflow/pkg/ports"
	"github.com/aretw0/quoteflow/pkg/quote"
	"github.com/aretw0/quoteflow/pkg/session"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_CreateAndReload(t *testing.T) {
	blobs := memory.NewStore()
	mgr := session.NewManager(blobs)
	ctx := context.Background()

	id, err := mgr.Create(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	err = mgr.WithSession(ctx, id, func(ctx context.Context, s *session.Session) error {
		assert.Nil(t, s.Quote())
		s.SetQuote(&quote.Quote{Plans: map[string][]quote.Plan{"etherway": {{Name: "1 Year"}}}})
		return s.Answers.Set(ctx, domain.PathServiceType, domain.ServiceDual)
	})
	require.NoError(t, err)

	err = mgr.WithSession(ctx, id, func(_ context.Context, s *session.Session) error {
		assert.True(t, domain.IsDual(s.Answers))
		require.NotNil(t, s.Quote())
		assert.Equal(t, "1 Year", s.Quote().Plans["etherway"][0].Name)
		return nil
	})
	require.NoError(t, err)

	ids, err := mgr.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{id}, ids, "pricing blobs are not listed as sessions")

	require.NoError(t, mgr.Delete(ctx, id))
	err = mgr.WithSession(ctx, id, func(context.Context, *session.Session) error { return nil })
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	keys, err := blobs.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestManager_UnknownSession(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	called := false
	err := mgr.WithSession(context.Background(), "nope", func(context.Context, *session.Session) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.False(t, called)
}

func TestManager_ClearQuote(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()
	id, err := mgr.Create(ctx)
	require.NoError(t, err)

	require.NoError(t, mgr.WithSession(ctx, id, func(_ context.Context, s *session.Session) error {
		s.SetQuote(&quote.Quote{})
		return nil
	}))
	require.NoError(t, mgr.WithSession(ctx, id, func(_ context.Context, s *session.Session) error {
		s.SetQuote(nil)
		return nil
	}))
	require.NoError(t, mgr.WithSession(ctx, id, func(_ context.Context, s *session.Session) error {
		assert.Nil(t, s.Quote())
		return nil
	}))
}

func TestManager_ErrorSkipsQuoteSave(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()
	id, err := mgr.Create(ctx)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = mgr.WithSession(ctx, id, func(_ context.Context, s *session.Session) error {
		s.SetQuote(&quote.Quote{})
		return boom
	})
	assert.ErrorIs(t, err, boom)

	require.NoError(t, mgr.WithSession(ctx, id, func(_ context.Context, s *session.Session) error {
		assert.Nil(t, s.Quote())
		return nil
	}))
}

// failingStore rejects every write.
type failingStore struct{ ports.BlobStore }

func (failingStore) Put(context.Context, string, []byte) error { return errors.New("disk full") }

func TestManager_CreateFailsWithoutStorage(t *testing.T) {
	mgr := session.NewManager(failingStore{memory.NewStore()})
	_, err := mgr.Create(context.Background())
	assert.Error(t, err)
}

func TestManager_SerialisesSameSession(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()
	id, err := mgr.Create(ctx)
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		active  int
		overlap bool
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := mgr.WithSession(ctx, id, func(context.Context, *session.Session) error {
				mu.Lock()
				active++
				if active > 1 {
					overlap = true
				}
				mu.Unlock()

				time.Sleep(5 * time.Millisecond)

				mu.Lock()
				active--
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.False(t, overlap)
}

func TestManager_LockLifecycle(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		id, err := mgr.Create(ctx)
		require.NoError(t, err)
		require.NoError(t, mgr.Delete(ctx, id))
	}
	assert.Zero(t, session.LockCount(mgr), "locks are released once unused")
}

func TestManager_DistributedLock(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := redis.NewFromClient(client)
	locker := redis.NewLocker(client, redis.DefaultPrefix)

	a := session.NewManager(store, session.WithLocker(locker), session.WithLockTTL(time.Second))
	b := session.NewManager(store, session.WithLocker(locker), session.WithLockTTL(time.Second))
	ctx := context.Background()

	id, err := a.Create(ctx)
	require.NoError(t, err)

	require.NoError(t, a.WithSession(ctx, id, func(ctx context.Context, s *session.Session) error {
		return s.Answers.Set(ctx, domain.PathSecureDelivery, true)
	}))
	require.NoError(t, b.WithSession(ctx, id, func(_ context.Context, s *session.Session) error {
		assert.True(t, domain.IsTrue(s.Answers, domain.PathSecureDelivery), "replicas share answers")
		return nil
	}))
}
