package middleware_test

import (
	"context"

	"github.com/aretw0/quoteflow/pkg/domain"
)

// MockStore is a simple map-based store for testing middleware.
type MockStore struct {
	data map[string][]byte
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string][]byte),
	}
}

func (s *MockStore) Put(ctx context.Context, key string, data []byte) error {
	s.data[key] = data
	return nil
}

func (s *MockStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, ok := s.data[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return b, nil
}

func (s *MockStore) Delete(ctx context.Context, key string) error {
	delete(s.data, key)
	return nil
}

func (s *MockStore) List(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}
