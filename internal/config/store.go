package config

import (
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/aretw0/quoteflow/pkg/adapters/badger"
	"github.com/aretw0/quoteflow/pkg/adapters/file"
	"github.com/aretw0/quoteflow/pkg/adapters/memory"
	"github.com/aretw0/quoteflow/pkg/adapters/redis"
	"github.com/aretw0/quoteflow/pkg/adapters/sqlite"
	"github.com/aretw0/quoteflow/pkg/persistence/middleware"
	"github.com/aretw0/quoteflow/pkg/ports"
)

// Backend is an opened blob store plus what comes with it.
type Backend struct {
	Store ports.BlobStore
	// Locker is set for drivers shared between replicas.
	Locker ports.DistributedLocker
	Close  func() error
}

// OpenStore opens the configured blob store and wraps it with the PII and
// encryption middleware when enabled. Masking runs before encryption.
func OpenStore(cfg StoreConfig, logger *slog.Logger) (*Backend, error) {
	b := &Backend{Close: func() error { return nil }}

	switch cfg.Driver {
	case "memory":
		b.Store = memory.NewStore()
	case "file":
		b.Store = file.New(cfg.Path)
	case "redis":
		var opts []redis.Option
		if cfg.TTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.TTL))
		}
		rs := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, opts...)
		b.Store = rs
		b.Locker = redis.NewLocker(rs.Client(), redis.DefaultPrefix)
		b.Close = rs.Close
	case "badger":
		bs, err := badger.Open(badger.Config{Path: cfg.Path, SyncWrites: true, Logger: logger})
		if err != nil {
			return nil, err
		}
		b.Store = bs
		b.Close = bs.Close
	case "sqlite":
		ss, err := sqlite.NewStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		b.Store = ss
		b.Close = ss.Close
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}

	var mws []middleware.Middleware
	if cfg.MaskPII {
		mws = append(mws, middleware.NewPIIMiddleware(middleware.DefaultPIIPatterns))
	}
	if cfg.EncryptionKey != "" {
		enc, err := encryptionConfig(cfg)
		if err != nil {
			_ = b.Close()
			return nil, err
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(enc))
	}
	b.Store = middleware.Chain(b.Store, mws...)
	return b, nil
}

func encryptionConfig(cfg StoreConfig) (middleware.EncryptionConfig, error) {
	active, err := decodeKey(cfg.EncryptionKey)
	if err != nil {
		return middleware.EncryptionConfig{}, fmt.Errorf("store.encryption_key: %w", err)
	}
	out := middleware.EncryptionConfig{ActiveKey: active}
	for i, k := range cfg.FallbackKeys {
		key, err := decodeKey(k)
		if err != nil {
			return middleware.EncryptionConfig{}, fmt.Errorf("store.fallback_keys[%d]: %w", i, err)
		}
		out.FallbackKeys = append(out.FallbackKeys, key)
	}
	return out, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("not base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}
