package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/quoteflow"
	"github.com/aretw0/quoteflow/internal/logging"
	presentation "github.com/aretw0/quoteflow/internal/presentation/graph"
	"github.com/aretw0/quoteflow/pkg/domain"
	"github.com/aretw0/quoteflow/pkg/graph"
	"github.com/aretw0/quoteflow/pkg/ports"
	"github.com/aretw0/quoteflow/pkg/quote"
	"github.com/aretw0/quoteflow/pkg/validation"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBody bounds request bodies. Answers and contact forms are tiny.
const maxBody = 64 << 10

// Service is the quote wizard as seen by the HTTP layer.
type Service interface {
	Graph() *graph.Graph
	CreateSession(ctx context.Context) (quoteflow.View, error)
	Resume(ctx context.Context, id string) (quoteflow.View, error)
	DeleteSession(ctx context.Context, id string) error
	Answer(ctx context.Context, id string, step domain.StepID, raw any) (quoteflow.Transition, error)
	Navigate(ctx context.Context, id string, step domain.StepID, dir domain.Direction) (quoteflow.Transition, error)
	Reset(ctx context.Context, id string) (quoteflow.View, error)
	LookupAddresses(ctx context.Context, postcode string) ([]domain.Address, error)
	SelectAddress(ctx context.Context, id string, addr domain.Address) error
	SubmitQuote(ctx context.Context, id string) (*quote.Quote, error)
	SelectPricing(ctx context.Context, id, category, plan string) (domain.SelectedPricing, error)
	SubmitContact(ctx context.Context, id string, contact validation.Contact) (ports.Lead, error)
}

var _ Service = (*quoteflow.Service)(nil)

// Server routes HTTP requests to the Service.
type Server struct {
	Service  Service
	Streams  *StreamManager
	logger   *slog.Logger
	gatherer prometheus.Gatherer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics exposes the gatherer on GET /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// NewHandler creates the HTTP handler for svc.
func NewHandler(svc Service, opts ...Option) http.Handler {
	s := &Server{
		Service: svc,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/graph", s.GetGraph)
	r.Get("/addresses", s.LookupAddresses)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Post("/sessions", s.CreateSession)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", s.GetSession)
		r.Delete("/", s.DeleteSession)
		r.Get("/events", s.SubscribeEvents)
		r.Post("/answers", s.Answer)
		r.Post("/navigate", s.Navigate)
		r.Post("/reset", s.Reset)
		r.Post("/address", s.SelectAddress)
		r.Post("/quote", s.SubmitQuote)
		r.Post("/pricing", s.SelectPricing)
		r.Post("/contact", s.SubmitContact)
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AnswerRequest is the body of POST /sessions/{id}/answers.
type AnswerRequest struct {
	Step  domain.StepID `json:"step"`
	Value any           `json:"value"`
}

// NavigateRequest is the body of POST /sessions/{id}/navigate.
type NavigateRequest struct {
	Step      domain.StepID    `json:"step"`
	Direction domain.Direction `json:"direction"`
}

// PricingRequest is the body of POST /sessions/{id}/pricing.
type PricingRequest struct {
	Category string `json:"category"`
	Plan     string `json:"plan"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string        `json:"error"`
	Field   string        `json:"field,omitempty"`
	Issues  []string      `json:"issues,omitempty"`
	Current domain.StepID `json:"current,omitempty"`
}

// CreateSession handles POST /sessions.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	view, err := s.Service.CreateSession(r.Context())
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	s.writeJSON(w, http.StatusCreated, view)
}

// GetSession handles GET /sessions/{id}. The current step is rebuilt from the answers.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	view, err := s.Service.Resume(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Service.DeleteSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Answer handles POST /sessions/{id}/answers.
func (s *Server) Answer(w http.ResponseWriter, r *http.Request) {
	var body AnswerRequest
	if !s.decode(w, r, &body) {
		return
	}
	id := chi.URLParam(r, "id")
	tr, err := s.Service.Answer(r.Context(), id, body.Step, body.Value)
	if err != nil {
		s.writeError(w, r, err, body.Step)
		return
	}
	s.Streams.Publish(id, EventTransition, tr)
	s.writeJSON(w, http.StatusOK, tr)
}

// Navigate handles POST /sessions/{id}/navigate.
func (s *Server) Navigate(w http.ResponseWriter, r *http.Request) {
	var body NavigateRequest
	if !s.decode(w, r, &body) {
		return
	}
	if body.Direction == "" {
		body.Direction = domain.Forward
	}
	if !body.Direction.Valid() {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "direction must be next or prev", Current: body.Step})
		return
	}
	id := chi.URLParam(r, "id")
	tr, err := s.Service.Navigate(r.Context(), id, body.Step, body.Direction)
	if err != nil {
		s.writeError(w, r, err, body.Step)
		return
	}
	s.Streams.Publish(id, EventTransition, tr)
	s.writeJSON(w, http.StatusOK, tr)
}

// Reset handles POST /sessions/{id}/reset.
func (s *Server) Reset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	view, err := s.Service.Reset(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	s.Streams.Publish(id, EventReset, view)
	s.writeJSON(w, http.StatusOK, view)
}

// LookupAddresses handles GET /addresses?postcode=.
func (s *Server) LookupAddresses(w http.ResponseWriter, r *http.Request) {
	addrs, err := s.Service.LookupAddresses(r.Context(), r.URL.Query().Get("postcode"))
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	s.writeJSON(w, http.StatusOK, addrs)
}

// SelectAddress handles POST /sessions/{id}/address.
func (s *Server) SelectAddress(w http.ResponseWriter, r *http.Request) {
	var addr domain.Address
	if !s.decode(w, r, &addr) {
		return
	}
	if err := s.Service.SelectAddress(r.Context(), chi.URLParam(r, "id"), addr); err != nil {
		s.writeError(w, r, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SubmitQuote handles POST /sessions/{id}/quote.
func (s *Server) SubmitQuote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	q, err := s.Service.SubmitQuote(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	s.Streams.Publish(id, EventQuote, q)
	s.writeJSON(w, http.StatusOK, q)
}

// SelectPricing handles POST /sessions/{id}/pricing.
func (s *Server) SelectPricing(w http.ResponseWriter, r *http.Request) {
	var body PricingRequest
	if !s.decode(w, r, &body) {
		return
	}
	sel, err := s.Service.SelectPricing(r.Context(), chi.URLParam(r, "id"), body.Category, body.Plan)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	s.writeJSON(w, http.StatusOK, sel)
}

// SubmitContact handles POST /sessions/{id}/contact.
func (s *Server) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var contact validation.Contact
	if !s.decode(w, r, &contact) {
		return
	}
	id := chi.URLParam(r, "id")
	if _, err := s.Service.SubmitContact(r.Context(), id, contact); err != nil {
		s.writeError(w, r, err, "")
		return
	}
	s.Streams.Publish(id, EventReset, map[string]string{"reason": "submitted"})
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "submitted"})
}

// GetGraph handles GET /graph. ?format=mermaid returns a flowchart instead of JSON.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	steps := s.Service.Graph().Describe()
	if r.URL.Query().Get("format") == "mermaid" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(presentation.GenerateMermaid(steps, nil)))
		return
	}
	s.writeJSON(w, http.StatusOK, steps)
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "quoteflow-http",
		"version": strings.TrimSpace(quoteflow.Version),
	})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(dst); err != nil {
		s.logger.Warn("invalid request body", "path", r.URL.Path, "error", err)
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

// writeError maps domain errors to status codes. current is echoed back so the
// client stays on the step it was showing.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, current domain.StepID) {
	resp := ErrorResponse{Error: err.Error(), Current: current}
	status := http.StatusInternalServerError

	var (
		inputErr *validation.InputError
		apiErr   *quote.APIError
	)
	switch {
	case errors.As(err, &inputErr):
		status = http.StatusUnprocessableEntity
		resp.Error = inputErr.Message
		resp.Field = inputErr.Field
	case errors.Is(err, domain.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrNavigationCycle), errors.Is(err, domain.ErrStepNotFound):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrSubmissionInProgress):
		status = http.StatusTooManyRequests
	case errors.As(err, &apiErr):
		status = http.StatusBadGateway
		resp.Error = apiErr.Message
		resp.Issues = apiErr.Issues
		if resp.Error == "" {
			resp.Error = apiErr.Error()
		}
	case errors.Is(err, domain.ErrUpstream):
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	s.writeJSON(w, status, resp)
}
