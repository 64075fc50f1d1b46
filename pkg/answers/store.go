package answers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/aretw0/quoteflow/internal/logging"
	"github.com/aretw0/quoteflow/pkg/domain"
	"github.com/aretw0/quoteflow/pkg/ports"
	"github.com/mitchellh/mapstructure"
)

// DefaultKey is the blob key the answer tree is persisted under.
const DefaultKey = "api"

// Store is the Answer Store. It is safe for concurrent use, although the wizard
// only ever has one writer per session.
type Store struct {
	mu       sync.RWMutex
	tree     map[string]any
	blobs    ports.BlobStore
	key      string
	logger   *slog.Logger
	degraded bool
}

// Option configures a Store.
type Option func(*Store)

// WithKey sets the blob key. Session managers use one key per session.
func WithKey(key string) Option {
	return func(s *Store) {
		s.key = key
	}
}

// WithLogger sets the logger used to report persistence failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a store holding the default answer tree. Call LoadOrDefault to restore
// a previous session. A nil blobs store keeps the answers in memory only.
func New(blobs ports.BlobStore, opts ...Option) *Store {
	s := &Store{
		tree:   domain.DefaultAnswers(),
		blobs:  blobs,
		key:    DefaultKey,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FromTree creates a store from an answer tree supplied by a caller, merged over
// the defaults the same way a persisted blob is. Numbers are normalised as in Set.
func FromTree(blobs ports.BlobStore, tree map[string]any, opts ...Option) (*Store, error) {
	s := New(blobs, opts...)
	if tree == nil {
		return s, nil
	}
	v, err := normalize(tree)
	if err != nil {
		return nil, err
	}
	loaded, ok := v.(map[string]any)
	if !ok {
		return nil, errors.New("answer tree must be an object")
	}
	s.tree = Merge(domain.DefaultAnswers(), loaded)
	return s, nil
}

// Get returns the value at path. It reports false when any segment is missing
// or an intermediate value is not an object.
func (s *Store) Get(path string) (any, bool) {
	segs, err := splitPath(path)
	if err != nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := lookup(s.tree, segs)
	if !ok {
		return nil, false
	}
	return deepCopy(v), true
}

// Set writes value at path, creating intermediate objects as needed, and persists the tree.
func (s *Store) Set(ctx context.Context, path string, value any) error {
	segs, err := splitPath(path)
	if err != nil {
		return err
	}
	v, err := normalize(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	assign(s.tree, segs, v)
	s.persistLocked(ctx)
	return nil
}

// LoadOrDefault restores the persisted tree merged over the defaults.
// Absent, unreadable or corrupt blobs leave the defaults in place.
// It reports whether a previous session with real answers was restored.
// Only the store's own key is read; there is no fallback copy.
func (s *Store) LoadOrDefault(ctx context.Context) bool {
	defaults := domain.DefaultAnswers()

	loaded := s.read(ctx, s.key)

	s.mu.Lock()
	defer s.mu.Unlock()

	if loaded == nil {
		s.tree = defaults
		return false
	}

	s.tree = Merge(domain.DefaultAnswers(), loaded)
	return !reflect.DeepEqual(s.tree, defaults)
}

// ResetToDefault replaces the tree with fresh defaults and persists it.
func (s *Store) ResetToDefault(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tree = domain.DefaultAnswers()
	s.persistLocked(ctx)
}

// Tree returns a deep copy of the answer tree.
func (s *Store) Tree() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return deepCopy(s.tree).(map[string]any)
}

// Cleaned returns the tree without null or empty leaves, as sent to the quote API.
func (s *Store) Cleaned() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return RemoveEmpty(s.tree)
}

// Snapshot decodes the tree into the typed answer set.
func (s *Store) Snapshot() (domain.AnswerSet, error) {
	var out domain.AnswerSet
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return out, err
	}
	if err := dec.Decode(s.Tree()); err != nil {
		return out, fmt.Errorf("decode answer set: %w", err)
	}
	return out, nil
}

// Degraded reports whether persistence has been disabled after a failure.
func (s *Store) Degraded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.degraded
}

// Key returns the blob key the store persists under.
func (s *Store) Key() string {
	return s.key
}

func (s *Store) read(ctx context.Context, key string) map[string]any {
	if s.blobs == nil {
		return nil
	}
	raw, err := s.blobs.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("failed to read saved answers", "key", key, "error", err)
		}
		return nil
	}
	v, err := decode(raw)
	if err != nil {
		s.logger.Warn("discarding corrupt saved answers", "key", key, "error", err)
		return nil
	}
	tree, ok := v.(map[string]any)
	if !ok {
		s.logger.Warn("discarding saved answers that are not an object", "key", key)
		return nil
	}
	return tree
}

func (s *Store) persistLocked(ctx context.Context) {
	if s.blobs == nil || s.degraded {
		return
	}

	data, err := json.Marshal(s.tree)
	if err == nil {
		err = s.blobs.Put(ctx, s.key, data)
	}
	if err != nil {
		s.degraded = true
		s.logger.Error("answer persistence failed, continuing in memory", "key", s.key, "error", err)
	}
}
