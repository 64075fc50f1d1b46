package ports

import "context"

// BlobStore is a key/value store for serialized answer trees.
// It mirrors the browser key/value storage the wizard was first built on:
// values are opaque bytes and writes replace the previous value wholesale.
type BlobStore interface {
	// Get retrieves the blob stored under key.
	// Returns domain.ErrNotFound if the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores data under key, replacing any previous value.
	Put(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns every key currently stored.
	List(ctx context.Context) ([]string, error)
}
