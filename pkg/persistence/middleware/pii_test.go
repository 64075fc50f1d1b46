package middleware_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/quoteflow/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPIIMiddleware_Masking(t *testing.T) {
	underlying := NewMockStore()
	store := middleware.NewPIIMiddleware(middleware.DefaultPIIPatterns)(underlying)
	ctx := context.Background()

	in := []byte(`{"contact":{"name":"Jane Doe","email":"jane@example.com","phone":null},"selectedPricing":{"planName":"1 Year"},"scenario":{"name":"scenario1"}}`)
	require.NoError(t, store.Put(ctx, "api", in))

	var stored map[string]any
	require.NoError(t, json.Unmarshal(underlying.data["api"], &stored))

	contact := stored["contact"].(map[string]any)
	assert.Equal(t, middleware.Mask, contact["name"])
	assert.Equal(t, middleware.Mask, contact["email"])
	assert.Nil(t, contact["phone"], "null values stay null")

	pricing := stored["selectedPricing"].(map[string]any)
	assert.Equal(t, "1 Year", pricing["planName"], "anchored patterns must not match planName")

	scenario := stored["scenario"].(map[string]any)
	assert.Equal(t, "scenario1", scenario["name"], "only the contact section is masked")
}

func TestPIIMiddleware_NonJSONPassThrough(t *testing.T) {
	underlying := NewMockStore()
	store := middleware.NewPIIMiddleware(middleware.DefaultPIIPatterns)(underlying)

	require.NoError(t, store.Put(context.Background(), "raw", []byte("not json")))
	assert.Equal(t, "not json", string(underlying.data["raw"]))
}

func TestChain_MasksBeforeEncrypting(t *testing.T) {
	underlying := NewMockStore()
	key := generateKey(t)
	store := middleware.Chain(underlying,
		middleware.NewPIIMiddleware(middleware.DefaultPIIPatterns),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}),
	)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "api", []byte(`{"contact":{"email":"jane@example.com"}}`)))

	out, err := store.Get(ctx, "api")
	require.NoError(t, err)
	assert.JSONEq(t, `{"contact":{"email":"***"}}`, string(out))
}
