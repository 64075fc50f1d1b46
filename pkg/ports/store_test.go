package ports_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/quoteflow/pkg/domain"
	"github.com/aretw0/quoteflow/pkg/ports"
)

// mockBlobStore is a minimal BlobStore used to check the contract suite itself.
type mockBlobStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMockBlobStore() *mockBlobStore {
	return &mockBlobStore{data: make(map[string][]byte)}
}

func (m *mockBlobStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), b...), nil
}

func (m *mockBlobStore) Put(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *mockBlobStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *mockBlobStore) List(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys, nil
}

func TestBlobStore_Contract(t *testing.T) {
	ports.RunBlobStoreContract(t, newMockBlobStore())
}
