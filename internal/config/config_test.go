package config_test

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/quoteflow/internal/config"
	"github.com/aretw0/quoteflow/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_Layers(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := writeFile(t, dir, "custom.yaml", `
api:
  base_url: https://pricing.example.com/api
  timeout: 10s
store:
  driver: sqlite
  path: quotes.db
session:
  max_skips: 8
`)
	writeFile(t, dir, ".env", "QUOTEFLOW_HTTP_ADDR=:9000\nQUOTEFLOW_LOG_LEVEL=warn\n")
	t.Setenv("QUOTEFLOW_LOG_LEVEL", "debug")
	t.Setenv("QUOTEFLOW_SESSION_LOCK_TTL", "1m")
	t.Setenv("QUOTEFLOW_STORE_FALLBACK_KEYS", "a,b")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://pricing.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, 8, cfg.Session.MaxSkips)
	assert.Equal(t, ":9000", cfg.HTTP.Addr, ".env applies")
	assert.Equal(t, "debug", cfg.Log.Level, "process environment wins over .env")
	assert.Equal(t, time.Minute, cfg.Session.LockTTL)
	assert.Equal(t, []string{"a", "b"}, cfg.Store.FallbackKeys)
	assert.Equal(t, "text", cfg.Log.Format, "untouched defaults survive")
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	_, err := config.Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err, "an explicit file must exist")

	bad := writeFile(t, dir, "bad.yaml", "store: [")
	_, err = config.Load(bad)
	assert.Error(t, err)

	t.Setenv("QUOTEFLOW_STORE_DRIVER", "mongo")
	_, err = config.Load("")
	assert.ErrorContains(t, err, "mongo")
}

func TestOpenStore(t *testing.T) {
	logger := logging.NewNop()

	t.Run("file with encryption", func(t *testing.T) {
		key := base64.StdEncoding.EncodeToString(make([]byte, 32))
		b, err := config.OpenStore(config.StoreConfig{
			Driver: "file", Path: t.TempDir(), EncryptionKey: key, MaskPII: true,
		}, logger)
		require.NoError(t, err)
		defer b.Close()
		assert.Nil(t, b.Locker)

		ctx := t.Context()
		require.NoError(t, b.Store.Put(ctx, "api", []byte(`{"contact":{"email":"a@b.c"}}`)))
		got, err := b.Store.Get(ctx, "api")
		require.NoError(t, err)
		assert.JSONEq(t, `{"contact":{"email":"***"}}`, string(got))
	})

	t.Run("sqlite", func(t *testing.T) {
		b, err := config.OpenStore(config.StoreConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "q.db")}, logger)
		require.NoError(t, err)
		assert.NoError(t, b.Close())
	})

	t.Run("bad key", func(t *testing.T) {
		_, err := config.OpenStore(config.StoreConfig{Driver: "memory", EncryptionKey: "short"}, logger)
		assert.Error(t, err)
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := config.OpenStore(config.StoreConfig{Driver: "tape"}, logger)
		assert.Error(t, err)
	})
}
