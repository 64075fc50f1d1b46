package ports

import (
	"context"
	"time"
)

// UnlockFunc is a function that releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker coordinates access to a session across multiple replicas.
// The session manager takes the lock around every answer mutation and around quote submission.
type DistributedLocker interface {
	// Lock acquires a lock for key (usually a session ID).
	// It blocks until the lock is acquired or ctx is canceled.
	// The returned UnlockFunc MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
