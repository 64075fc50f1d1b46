package http_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/quoteflow"
	quotehttp "github.com/aretw0/quoteflow/pkg/adapters/http"
	"github.com/aretw0/quoteflow/pkg/adapters/memory"
	"github.com/aretw0/quoteflow/pkg/domain"
	"github.com/aretw0/quoteflow/pkg/observability"
	"github.com/aretw0/quoteflow/pkg/quote"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAPI struct {
	quoteErr error
}

func (s *stubAPI) LookupAddresses(_ context.Context, postcode string) ([]domain.Address, error) {
	return []domain.Address{{ID: "A1", Postcode: postcode}}, nil
}

func (s *stubAPI) SubmitQuote(context.Context, map[string]any) (json.RawMessage, error) {
	if s.quoteErr != nil {
		return nil, s.quoteErr
	}
	return json.RawMessage(`{"etherway": [
		{"name": "3 Year connection", "priceType": "nonRecurring", "price": {"dutyFreeAmount": {"value": 0}}},
		{"name": "3 Year rental", "priceType": "recurring", "recurringChargePeriod": "month", "price": {"dutyFreeAmount": {"value": 45000}}}
	]}`), nil
}

func newServer(t *testing.T, api *stubAPI, opts ...quotehttp.Option) *httptest.Server {
	t.Helper()
	svc := quoteflow.New(memory.NewStore(), api)
	srv := httptest.NewServer(quotehttp.NewHandler(svc, opts...))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func createSession(t *testing.T, srv *httptest.Server) quoteflow.View {
	t.Helper()
	resp, body := do(t, srv, http.MethodPost, "/sessions", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var view quoteflow.View
	require.NoError(t, json.Unmarshal(body, &view))
	return view
}

func answer(t *testing.T, srv *httptest.Server, id string, step domain.StepID, value any) quoteflow.Transition {
	t.Helper()
	resp, body := do(t, srv, http.MethodPost, "/sessions/"+id+"/answers", quotehttp.AnswerRequest{Step: step, Value: value})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var tr quoteflow.Transition
	require.NoError(t, json.Unmarshal(body, &tr))
	return tr
}

func TestSessionLifecycle(t *testing.T) {
	srv := newServer(t, &stubAPI{})
	view := createSession(t, srv)
	assert.Equal(t, domain.StepServiceType, view.Current)

	tr := answer(t, srv, view.ID, view.Current, "dual")
	assert.Equal(t, domain.StepPreferredIPAccess, tr.To)

	resp, body := do(t, srv, http.MethodGet, "/sessions/"+view.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var resumed quoteflow.View
	require.NoError(t, json.Unmarshal(body, &resumed))
	assert.Equal(t, domain.StepPreferredIPAccess, resumed.Current)

	resp, _ = do(t, srv, http.MethodPost, "/sessions/"+view.ID+"/navigate",
		quotehttp.NavigateRequest{Step: resumed.Current, Direction: domain.Backward})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = do(t, srv, http.MethodPost, "/sessions/"+view.ID+"/reset", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &resumed))
	assert.Equal(t, domain.StepServiceType, resumed.Current)

	resp, _ = do(t, srv, http.MethodDelete, "/sessions/"+view.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodGet, "/sessions/"+view.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAnswer_InvalidInput(t *testing.T) {
	srv := newServer(t, &stubAPI{})
	view := createSession(t, srv)

	resp, body := do(t, srv, http.MethodPost, "/sessions/"+view.ID+"/answers",
		quotehttp.AnswerRequest{Step: view.Current, Value: "triple"})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var errResp quotehttp.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Equal(t, domain.PathServiceType, errResp.Field)
	assert.Equal(t, view.Current, errResp.Current)
}

func TestBadRequests(t *testing.T) {
	srv := newServer(t, &stubAPI{})
	view := createSession(t, srv)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"unknown direction", http.MethodPost, "/sessions/" + view.ID + "/navigate",
			map[string]string{"step": string(view.Current), "direction": "sideways"}, http.StatusBadRequest},
		{"unknown step", http.MethodPost, "/sessions/" + view.ID + "/answers",
			quotehttp.AnswerRequest{Step: "nope", Value: "x"}, http.StatusConflict},
		{"bad postcode", http.MethodGet, "/addresses?postcode=nope", nil, http.StatusUnprocessableEntity},
		{"quote without answers", http.MethodPost, "/sessions/" + view.ID + "/quote", nil, http.StatusUnprocessableEntity},
		{"pricing without quote", http.MethodPost, "/sessions/" + view.ID + "/pricing",
			quotehttp.PricingRequest{Category: "etherway", Plan: "3 Year"}, http.StatusUnprocessableEntity},
		{"unknown session", http.MethodPost, "/sessions/missing/answers",
			quotehttp.AnswerRequest{Step: domain.StepServiceType, Value: "single"}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, srv, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode, string(body))
		})
	}

	t.Run("malformed body", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/sessions/"+view.ID+"/answers", "application/json", strings.NewReader("{"))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func completeWizard(t *testing.T, srv *httptest.Server, id string) {
	t.Helper()
	current := domain.StepServiceType
	for _, v := range []any{"single", "BT", "1000BASE-T", "500 Mbit/s", "/29", false, "36 Months"} {
		tr := answer(t, srv, id, current, v)
		current = tr.To
	}
	resp, body := do(t, srv, http.MethodPost, "/sessions/"+id+"/address", domain.Address{ID: "A1", Postcode: "EC1A 1BB"})
	require.Equal(t, http.StatusNoContent, resp.StatusCode, string(body))
}

func TestQuoteJourney(t *testing.T) {
	srv := newServer(t, &stubAPI{})
	view := createSession(t, srv)
	completeWizard(t, srv, view.ID)

	resp, body := do(t, srv, http.MethodPost, "/sessions/"+view.ID+"/quote", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var q quote.Quote
	require.NoError(t, json.Unmarshal(body, &q))
	require.NotNil(t, q.Scenario)
	assert.Equal(t, quote.ScenarioSingleBT, q.Scenario.Name)

	resp, body = do(t, srv, http.MethodPost, "/sessions/"+view.ID+"/pricing",
		quotehttp.PricingRequest{Category: domain.CategoryEtherway, Plan: "3 Year"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var sel domain.SelectedPricing
	require.NoError(t, json.Unmarshal(body, &sel))
	assert.EqualValues(t, 45000, sel.MonthlyRental)

	resp, body = do(t, srv, http.MethodPost, "/sessions/"+view.ID+"/contact",
		map[string]string{"name": "Grace Hopper", "email": "grace@example.com", "phone": "+447700900123"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, body = do(t, srv, http.MethodPost, "/sessions/"+view.ID+"/contact",
		map[string]string{"name": "Grace Hopper", "email": "not-an-email", "phone": "+447700900123"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, string(body))
}

func TestQuote_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		want   string
	}{
		{"api error", &quote.APIError{Status: 400, Message: "bad bandwidth"}, http.StatusBadGateway, "bad bandwidth"},
		{"api issues", &quote.APIError{Status: 400, Issues: []string{"a: missing"}}, http.StatusBadGateway, "a: missing"},
		{"transport", fmt.Errorf("POST /quote: %w", domain.ErrUpstream), http.StatusBadGateway, "upstream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, &stubAPI{quoteErr: tt.err})
			view := createSession(t, srv)
			completeWizard(t, srv, view.ID)

			resp, body := do(t, srv, http.MethodPost, "/sessions/"+view.ID+"/quote", nil)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Contains(t, string(body), tt.want)
		})
	}
}

type busyService struct {
	quotehttp.Service
}

func (busyService) SubmitQuote(context.Context, string) (*quote.Quote, error) {
	return nil, domain.ErrSubmissionInProgress
}

func TestQuote_InFlight(t *testing.T) {
	srv := httptest.NewServer(quotehttp.NewHandler(busyService{}))
	defer srv.Close()

	resp, _ := do(t, srv, http.MethodPost, "/sessions/any/quote", nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestGetGraph(t *testing.T) {
	srv := newServer(t, &stubAPI{})

	resp, body := do(t, srv, http.MethodGet, "/graph", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var steps []map[string]any
	require.NoError(t, json.Unmarshal(body, &steps))
	assert.Len(t, steps, 16)
	assert.Equal(t, string(domain.StepServiceType), steps[0]["id"])

	resp, body = do(t, srv, http.MethodGet, "/graph?format=mermaid", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(string(body), "graph TD"))
}

func TestHealthInfoAndCORS(t *testing.T) {
	srv := newServer(t, &stubAPI{})

	resp, body := do(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	resp, body = do(t, srv, http.MethodGet, "/info", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), strings.TrimSpace(quoteflow.Version))

	resp, _ = do(t, srv, http.MethodOptions, "/sessions", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	svc := quoteflow.New(memory.NewStore(), &stubAPI{}, quoteflow.WithLifecycleHooks(metrics.LifecycleHooks()))
	srv := httptest.NewServer(quotehttp.NewHandler(svc, quotehttp.WithMetrics(reg)))
	defer srv.Close()

	createSession(t, srv)

	resp, body := do(t, srv, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "quoteflow_step_enter_total")
}

func TestSubscribeEvents(t *testing.T) {
	srv := newServer(t, &stubAPI{})
	view := createSession(t, srv)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/sessions/"+view.ID+"/events?watch=transition", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, "event: ping", lines.Text())
	require.True(t, lines.Scan())
	assert.Equal(t, "data: connected", lines.Text())
	require.True(t, lines.Scan())
	assert.Empty(t, lines.Text())

	answer(t, srv, view.ID, view.Current, "single")

	var got []string
	for lines.Scan() {
		if lines.Text() == "" {
			if len(got) > 0 {
				break
			}
			continue
		}
		got = append(got, lines.Text())
	}
	require.Len(t, got, 2)
	assert.Equal(t, "event: transition", got[0])
	assert.Contains(t, got[1], `"to":"quotePreferredIpAccess"`)

	t.Run("unknown session", func(t *testing.T) {
		resp, _ := do(t, srv, http.MethodGet, "/sessions/missing/events", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
