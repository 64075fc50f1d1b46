package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/quoteflow/internal/logging"
	"github.com/aretw0/quoteflow/pkg/answers"
	"github.com/aretw0/quoteflow/pkg/domain"
	"github.com/aretw0/quoteflow/pkg/ports"
	"github.com/aretw0/quoteflow/pkg/quote"
	"github.com/google/uuid"
)

// DefaultPrefix namespaces session keys in the blob store.
const DefaultPrefix = "session:"

// DefaultLockTTL is how long a distributed session lock lives without being released.
const DefaultLockTTL = 30 * time.Second

const quoteSuffix = ":quote"

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Session is the state of one wizard run, valid for the duration of WithSession.
type Session struct {
	ID      string
	Answers *answers.Store

	quote        *quote.Quote
	quoteChanged bool
}

// Quote returns the last pricing received, or nil.
func (s *Session) Quote() *quote.Quote {
	return s.quote
}

// SetQuote replaces the stored pricing. Nil clears it.
func (s *Session) SetQuote(q *quote.Quote) {
	s.quote = q
	s.quoteChanged = true
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	blobs  ports.BlobStore
	prefix string

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithPrefix overrides DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(m *Manager) {
		m.prefix = prefix
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a session manager persisting into blobs.
func NewManager(blobs ports.BlobStore, opts ...Option) *Manager {
	m := &Manager{
		blobs:   blobs,
		prefix:  DefaultPrefix,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) key(id string) string {
	return m.prefix + id
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Create starts a session with default answers and returns its id.
func (m *Manager) Create(ctx context.Context) (string, error) {
	id := uuid.NewString()
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		store := m.answersFor(id)
		store.ResetToDefault(ctx)
		if store.Degraded() {
			return fmt.Errorf("create session %s: answer storage unavailable", id)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	m.logger.Info("session created", "session_id", id)
	return id, nil
}

// WithSession loads the session, runs fn under the session lock and persists the pricing
// if fn changed it. Answers persist as they are written.
// It returns domain.ErrSessionNotFound for unknown ids.
func (m *Manager) WithSession(ctx context.Context, id string, fn func(context.Context, *Session) error) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		s, err := m.open(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(ctx, s); err != nil {
			return err
		}
		if s.quoteChanged {
			return m.saveQuote(ctx, id, s.quote)
		}
		return nil
	})
}

// Delete removes the session answers and pricing.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		if err := m.blobs.Delete(ctx, m.key(id)); err != nil {
			return err
		}
		return m.blobs.Delete(ctx, m.key(id)+quoteSuffix)
	})
}

// List returns the ids of every persisted session, sorted.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	keys, err := m.blobs.List(ctx)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, k := range keys {
		if !strings.HasPrefix(k, m.prefix) || strings.HasSuffix(k, quoteSuffix) {
			continue
		}
		ids = append(ids, strings.TrimPrefix(k, m.prefix))
	}
	sort.Strings(ids)
	return ids, nil
}

// Store returns the underlying blob store.
func (m *Manager) Store() ports.BlobStore {
	return m.blobs
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"error", err,
				)
			}
		}()
	}

	return fn(ctx)
}

func (m *Manager) answersFor(id string) *answers.Store {
	return answers.New(m.blobs, answers.WithKey(m.key(id)), answers.WithLogger(m.logger.With("session_id", id)))
}

func (m *Manager) open(ctx context.Context, id string) (*Session, error) {
	if _, err := m.blobs.Get(ctx, m.key(id)); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
		}
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	store := m.answersFor(id)
	store.LoadOrDefault(ctx)

	s := &Session{ID: id, Answers: store}

	raw, err := m.blobs.Get(ctx, m.key(id)+quoteSuffix)
	switch {
	case errors.Is(err, domain.ErrNotFound):
	case err != nil:
		m.logger.Warn("failed to load session pricing", "session_id", id, "error", err)
	default:
		var q quote.Quote
		if err := json.Unmarshal(raw, &q); err != nil {
			m.logger.Warn("discarding corrupt session pricing", "session_id", id, "error", err)
		} else {
			s.quote = &q
		}
	}
	return s, nil
}

func (m *Manager) saveQuote(ctx context.Context, id string, q *quote.Quote) error {
	key := m.key(id) + quoteSuffix
	if q == nil {
		return m.blobs.Delete(ctx, key)
	}
	data, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("encode session pricing: %w", err)
	}
	return m.blobs.Put(ctx, key, data)
}
