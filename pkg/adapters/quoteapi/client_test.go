package quoteapi_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/quoteflow/pkg/adapters/quoteapi"
	"github.com/aretw0/quoteflow/pkg/domain"
	"github.com/aretw0/quoteflow/pkg/ports"
	"github.com/aretw0/quoteflow/pkg/quote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupAddresses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/addresses", r.URL.Path)
		switch r.URL.Query().Get("postcode") {
		case "SW1A1AA":
			w.Write([]byte(`[{"id":"A1","postcode":"SW1A1AA","fullAddress":"10 Downing St"}]`))
		case "ZZ11ZZ":
			w.Write([]byte(`null`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"postcode not found"}`))
		}
	}))
	defer srv.Close()

	c := quoteapi.New(srv.URL + "/")

	addrs, err := c.LookupAddresses(context.Background(), "SW1A1AA")
	require.NoError(t, err)
	require.Len(t, addrs, 1)
	assert.Equal(t, "10 Downing St", addrs[0].FullAddress)

	addrs, err = c.LookupAddresses(context.Background(), "ZZ11ZZ")
	require.NoError(t, err)
	assert.Empty(t, addrs)
	assert.NotNil(t, addrs)

	_, err = c.LookupAddresses(context.Background(), "AB12CD")
	var apiErr *quote.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "postcode not found", apiErr.Message)
}

func TestSubmitQuote(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		w.Write([]byte(`{"btPricing":{"etherway":[]}}`))
	}))
	defer srv.Close()

	raw, err := quoteapi.New(srv.URL).SubmitQuote(context.Background(), map[string]any{
		"circuit": map[string]any{"serviceType": "single"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"btPricing":{"etherway":[]}}`, string(raw))
	assert.Equal(t, map[string]any{"circuit": map[string]any{"serviceType": "single"}}, got)
}

func TestErrorPayloads(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
		issues  []string
	}{
		{"message", 400, `{"message":"bad bandwidth"}`, "bad bandwidth", []string{}},
		{"error string", 500, `{"error":"upstream timeout"}`, "upstream timeout", []string{}},
		{
			"nested issues", 422,
			`{"error":{"issues":[{"path":["circuit","bandwidth"],"message":"required"},"term missing"]}}`,
			"", []string{"circuit.bandwidth: required", "term missing"},
		},
		{"not json", 502, `<html>bad gateway</html>`, "Bad Gateway", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := quoteapi.New(srv.URL).SubmitQuote(context.Background(), map[string]any{})
			var apiErr *quote.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.message, apiErr.Message)
			assert.Equal(t, tt.issues, apiErr.Issues)
		})
	}
}

func TestSubmitQuote_MalformedSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"btPricing":`))
	}))
	defer srv.Close()

	_, err := quoteapi.New(srv.URL).SubmitQuote(context.Background(), map[string]any{})
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestSendLead(t *testing.T) {
	var got ports.Lead
	status := http.StatusCreated
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/lead", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(status)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := quoteapi.New(srv.URL)
	require.NoError(t, c.SendLead(context.Background(), ports.Lead{"Email": "a@b.c"}))
	assert.Equal(t, "a@b.c", got["Email"])

	status = http.StatusBadGateway
	assert.Error(t, c.SendLead(context.Background(), ports.Lead{}))
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := quoteapi.New(url).LookupAddresses(context.Background(), "SW1A1AA")
	assert.ErrorIs(t, err, domain.ErrUpstream)
}
