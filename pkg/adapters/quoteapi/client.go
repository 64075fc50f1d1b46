// Package quoteapi is the HTTP client of the remote quote API: address lookup,
// quote pricing and CRM lead creation.
package quoteapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aretw0/quoteflow/internal/logging"
	"github.com/aretw0/quoteflow/pkg/domain"
	"github.com/aretw0/quoteflow/pkg/ports"
	"github.com/aretw0/quoteflow/pkg/quote"
)

// DefaultTimeout bounds every request.
const DefaultTimeout = 30 * time.Second

// maxBody caps how much of a response is read.
const maxBody = 4 << 20

// Client talks to the quote API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

var (
	_ ports.QuoteAPI = (*Client)(nil)
	_ ports.LeadSink = (*Client)(nil)
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		cl.httpClient.Timeout = d
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = logger
	}
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LookupAddresses calls GET /addresses?postcode=.
func (c *Client) LookupAddresses(ctx context.Context, postcode string) ([]domain.Address, error) {
	q := url.Values{"postcode": {postcode}}
	body, err := c.do(ctx, http.MethodGet, "/addresses?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var addrs []domain.Address
	if err := json.Unmarshal(body, &addrs); err != nil {
		return nil, fmt.Errorf("%w: invalid response from address lookup service: %w", domain.ErrUpstream, err)
	}
	if addrs == nil {
		addrs = []domain.Address{}
	}
	return addrs, nil
}

// SubmitQuote calls POST /quote and returns the raw pricing response.
func (c *Client) SubmitQuote(ctx context.Context, request map[string]any) (json.RawMessage, error) {
	body, err := c.do(ctx, http.MethodPost, "/quote", request)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: quote API returned malformed JSON", domain.ErrUpstream)
	}
	return json.RawMessage(body), nil
}

// SendLead calls POST /lead.
func (c *Client) SendLead(ctx context.Context, lead ports.Lead) error {
	_, err := c.do(ctx, http.MethodPost, "/lead", lead)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("quote API request failed", "method", method, "path", path, "error", err)
		return nil, fmt.Errorf("%s %s: %w: %w", method, path, domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", domain.ErrUpstream, err)
	}
	c.logger.Debug("quote API call", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp.StatusCode, resp.Status, body)
	}
	return body, nil
}

type errorPayload struct {
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
	Issues  []any           `json:"issues"`
}

// decodeError builds an APIError from a {message, error, issues} body.
// "error" may be a string or an object carrying its own issues.
func decodeError(code int, status string, body []byte) *quote.APIError {
	apiErr := &quote.APIError{Status: code}

	var p errorPayload
	if err := json.Unmarshal(body, &p); err == nil {
		apiErr.Message = p.Message
		apiErr.Issues = issueStrings(p.Issues)

		if len(p.Error) > 0 {
			var s string
			var nested errorPayload
			switch {
			case json.Unmarshal(p.Error, &s) == nil:
				if apiErr.Message == "" {
					apiErr.Message = s
				}
			case json.Unmarshal(p.Error, &nested) == nil:
				if apiErr.Message == "" {
					apiErr.Message = nested.Message
				}
				apiErr.Issues = append(apiErr.Issues, issueStrings(nested.Issues)...)
			}
		}
	}

	if apiErr.Message == "" && len(apiErr.Issues) == 0 {
		apiErr.Message = strings.TrimSpace(strings.TrimPrefix(status, fmt.Sprint(code)))
	}
	return apiErr
}

func issueStrings(issues []any) []string {
	out := make([]string, 0, len(issues))
	for _, issue := range issues {
		switch v := issue.(type) {
		case string:
			out = append(out, v)
		case map[string]any:
			msg, _ := v["message"].(string)
			if path, ok := v["path"].([]any); ok && len(path) > 0 {
				parts := make([]string, len(path))
				for i, p := range path {
					parts[i] = fmt.Sprint(p)
				}
				msg = strings.Join(parts, ".") + ": " + msg
			}
			if msg != "" {
				out = append(out, msg)
			}
		}
	}
	return out
}
