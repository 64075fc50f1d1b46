// Package config loads the quoteflow command configuration.
//
// Values are layered, later layers winning: built-in defaults, a YAML file,
// a .env file, then QUOTEFLOW_* environment variables. Command flags are applied
// on top by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable. api.base_url is read from QUOTEFLOW_API_BASE_URL.
const EnvPrefix = "QUOTEFLOW_"

// DefaultFile is read when no explicit path is given. It may be absent.
const DefaultFile = "quoteflow.yaml"

// Config is the full command configuration.
type Config struct {
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	API     APIConfig     `mapstructure:"api" yaml:"api"`
	HTTP    HTTPConfig    `mapstructure:"http" yaml:"http"`
	Store   StoreConfig   `mapstructure:"store" yaml:"store"`
	Session SessionConfig `mapstructure:"session" yaml:"session"`
}

// LogConfig selects the log level and handler.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // text or json
}

// APIConfig points at the remote pricing API.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// HTTPConfig configures the serve command listeners.
type HTTPConfig struct {
	Addr        string `mapstructure:"addr" yaml:"addr"`
	MetricsAddr string `mapstructure:"metrics_addr" yaml:"metrics_addr"`
}

// StoreConfig selects the blob store backing the answers.
type StoreConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"` // memory, file, redis, badger or sqlite
	Path   string `mapstructure:"path" yaml:"path"`

	RedisAddr     string        `mapstructure:"redis_addr" yaml:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password" yaml:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db" yaml:"redis_db"`
	TTL           time.Duration `mapstructure:"ttl" yaml:"ttl"`

	// EncryptionKey is a base64 AES-256 key. Empty disables encryption at rest.
	EncryptionKey string `mapstructure:"encryption_key" yaml:"encryption_key"`
	// FallbackKeys decrypt blobs written before a key rotation.
	FallbackKeys []string `mapstructure:"fallback_keys" yaml:"fallback_keys"`
	// MaskPII replaces contact details with a mask before they reach the store.
	MaskPII bool `mapstructure:"mask_pii" yaml:"mask_pii"`
}

// SessionConfig tunes the session manager and the engine.
type SessionConfig struct {
	LockTTL  time.Duration `mapstructure:"lock_ttl" yaml:"lock_ttl"`
	MaxSkips int           `mapstructure:"max_skips" yaml:"max_skips"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log:     LogConfig{Level: "info", Format: "text"},
		API:     APIConfig{BaseURL: "http://localhost:3000/api", Timeout: 30 * time.Second},
		HTTP:    HTTPConfig{Addr: ":8080"},
		Store:   StoreConfig{Driver: "file", Path: ".quoteflow", RedisAddr: "localhost:6379"},
		Session: SessionConfig{LockTTL: 30 * time.Second, MaxSkips: 16},
	}
}

// Load reads path (or DefaultFile when path is empty) and the environment.
// A missing default file is not an error; a missing explicit file is.
func Load(path string) (Config, error) {
	values, err := toMap(Default())
	if err != nil {
		return Config{}, err
	}

	file := path
	if file == "" {
		file = DefaultFile
	}
	fromFile, err := readFile(file)
	switch {
	case errors.Is(err, fs.ErrNotExist) && path == "":
	case err != nil:
		return Config{}, err
	default:
		merge(values, fromFile)
	}

	env, err := readEnv()
	if err != nil {
		return Config{}, err
	}
	for key, v := range env {
		setPath(values, strings.Split(key, "."), v)
	}

	return decode(values)
}

func readFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return out, nil
}

// readEnv collects QUOTEFLOW_* variables from .env and the process environment.
// The process environment wins over .env.
func readEnv() (map[string]string, error) {
	vars := map[string]string{}
	dotenv, err := godotenv.Read()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read .env: %w", err)
	}
	for k, v := range dotenv {
		vars[k] = v
	}
	for _, kv := range os.Environ() {
		k, v, _ := strings.Cut(kv, "=")
		vars[k] = v
	}

	out := map[string]string{}
	for _, key := range knownKeys() {
		name := EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if v, ok := vars[name]; ok {
			out[key] = v
		}
	}
	return out, nil
}

// knownKeys lists every dotted key of Config.
func knownKeys() []string {
	m, _ := toMap(Default())
	var keys []string
	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		for k, v := range m {
			if sub, ok := v.(map[string]any); ok {
				walk(prefix+k+".", sub)
				continue
			}
			keys = append(keys, prefix+k)
		}
	}
	walk("", m)
	return keys
}

// toMap flattens c into nested maps keyed by the mapstructure tags.
func toMap(c Config) (map[string]any, error) {
	var out map[string]any
	if err := mapstructure.Decode(c, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func merge(dst, src map[string]any) {
	for k, v := range src {
		if sub, ok := v.(map[string]any); ok {
			if existing, ok := dst[k].(map[string]any); ok {
				merge(existing, sub)
				continue
			}
		}
		dst[k] = v
	}
}

func setPath(m map[string]any, segs []string, v any) {
	for _, s := range segs[:len(segs)-1] {
		next, ok := m[s].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[s] = next
		}
		m = next
	}
	m[segs[len(segs)-1]] = v
}

func decode(values map[string]any) (Config, error) {
	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(values); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects unusable settings.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case "memory", "file", "redis", "badger", "sqlite":
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	return nil
}
