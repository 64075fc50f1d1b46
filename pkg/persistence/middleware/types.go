package middleware

import "github.com/aretw0/quoteflow/pkg/ports"

// Middleware allows wrapping a BlobStore to add behavior.
type Middleware func(ports.BlobStore) ports.BlobStore

// Chain applies middlewares so that the first one listed is the outermost.
func Chain(store ports.BlobStore, mws ...Middleware) ports.BlobStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
