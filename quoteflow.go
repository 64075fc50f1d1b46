package quoteflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/quoteflow/internal/logging"
	"github.com/aretw0/quoteflow/internal/runtime"
	"github.com/aretw0/quoteflow/pkg/domain"
	"github.com/aretw0/quoteflow/pkg/graph"
	"github.com/aretw0/quoteflow/pkg/ports"
	"github.com/aretw0/quoteflow/pkg/quote"
	"github.com/aretw0/quoteflow/pkg/session"
	"github.com/aretw0/quoteflow/pkg/validation"
)

// Transition is the outcome of answering or navigating.
type Transition = runtime.Transition

// View is what a client needs to render a session.
type View struct {
	ID      string          `json:"id"`
	Current domain.StepID   `json:"current"`
	Step    *graph.StepInfo `json:"step,omitempty"`
	Answers map[string]any  `json:"answers"`
	Quote   *quote.Quote    `json:"quote,omitempty"`
}

// Service ties the engine, the session manager and the quote flow together.
type Service struct {
	graph    *graph.Graph
	engine   *runtime.Engine
	sessions *session.Manager
	flow     *quote.Flow
	logger   *slog.Logger

	hooks      domain.LifecycleHooks
	quoteHooks quote.Hooks
	maxSkips   int
	locker     ports.DistributedLocker
	lockTTL    time.Duration
	leads      ports.LeadSink
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets a custom structured logger for every component.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithLifecycleHooks registers engine observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Service) {
		s.hooks = hooks
	}
}

// WithQuoteHooks registers quote API observability hooks.
func WithQuoteHooks(hooks quote.Hooks) Option {
	return func(s *Service) {
		s.quoteHooks = hooks
	}
}

// WithMaxSkips overrides the skip-chain ceiling of the engine.
func WithMaxSkips(n int) Option {
	return func(s *Service) {
		s.maxSkips = n
	}
}

// WithLocker serialises sessions across replicas.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(s *Service) {
		s.locker = locker
	}
}

// WithLockTTL bounds how long a distributed session lock is held.
func WithLockTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.lockTTL = ttl
	}
}

// WithLeadSink forwards contact submissions.
func WithLeadSink(sink ports.LeadSink) Option {
	return func(s *Service) {
		s.leads = sink
	}
}

// WithGraph replaces the quote graph, mostly for tests.
func WithGraph(g *graph.Graph) Option {
	return func(s *Service) {
		s.graph = g
	}
}

// New creates a service persisting sessions in blobs and pricing through api.
func New(blobs ports.BlobStore, api ports.QuoteAPI, opts ...Option) *Service {
	s := &Service{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.graph == nil {
		s.graph = graph.Quote()
	}

	engineOpts := []runtime.Option{
		runtime.WithLogger(s.logger),
		runtime.WithLifecycleHooks(s.hooks),
	}
	if s.maxSkips > 0 {
		engineOpts = append(engineOpts, runtime.WithMaxSkips(s.maxSkips))
	}
	s.engine = runtime.NewEngine(s.graph, engineOpts...)

	sessionOpts := []session.Option{session.WithLogger(s.logger)}
	if s.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(s.locker), session.WithLockTTL(s.lockTTL))
	}
	s.sessions = session.NewManager(blobs, sessionOpts...)

	flowOpts := []quote.Option{quote.WithLogger(s.logger), quote.WithHooks(s.quoteHooks)}
	if s.leads != nil {
		flowOpts = append(flowOpts, quote.WithLeadSink(s.leads))
	}
	s.flow = quote.NewFlow(api, flowOpts...)
	return s
}

// Graph returns the step graph.
func (s *Service) Graph() *graph.Graph { return s.graph }

// Engine returns the navigation engine.
func (s *Service) Engine() *runtime.Engine { return s.engine }

// Sessions returns the session manager.
func (s *Service) Sessions() *session.Manager { return s.sessions }

// Flow returns the quote flow.
func (s *Service) Flow() *quote.Flow { return s.flow }

func (s *Service) view(id string, current domain.StepID, sess *session.Session) View {
	v := View{
		ID:      id,
		Current: current,
		Answers: sess.Answers.Tree(),
		Quote:   sess.Quote(),
	}
	if step, ok := s.graph.Lookup(current); ok {
		info := step.Describe(sess.Answers)
		v.Step = &info
	}
	return v
}

// CreateSession starts a session at the first step.
func (s *Service) CreateSession(ctx context.Context) (View, error) {
	id, err := s.sessions.Create(ctx)
	if err != nil {
		return View{}, err
	}
	return s.Resume(ctx, id)
}

// Resume reconstructs the step to show from the session answers.
func (s *Service) Resume(ctx context.Context, id string) (View, error) {
	var v View
	err := s.sessions.WithSession(ctx, id, func(ctx context.Context, sess *session.Session) error {
		v = s.view(id, s.engine.Resume(ctx, sess.Answers), sess)
		return nil
	})
	return v, err
}

// Show describes step under the session answers, for clients that track the
// current step themselves. An unknown step is an error.
func (s *Service) Show(ctx context.Context, id string, step domain.StepID) (View, error) {
	if _, ok := s.graph.Lookup(step); !ok {
		return View{}, &runtime.StepNotFoundError{StepID: step}
	}
	var v View
	err := s.sessions.WithSession(ctx, id, func(ctx context.Context, sess *session.Session) error {
		v = s.view(id, step, sess)
		return nil
	})
	return v, err
}

// Answer records raw as the answer of step and moves forward.
func (s *Service) Answer(ctx context.Context, id string, step domain.StepID, raw any) (Transition, error) {
	var tr Transition
	err := s.sessions.WithSession(ctx, id, func(ctx context.Context, sess *session.Session) error {
		var err error
		tr, err = s.engine.Answer(ctx, sess.Answers, step, raw)
		return err
	})
	return tr, err
}

// Navigate moves from step in dir using the recorded answers.
func (s *Service) Navigate(ctx context.Context, id string, step domain.StepID, dir domain.Direction) (Transition, error) {
	var tr Transition
	err := s.sessions.WithSession(ctx, id, func(ctx context.Context, sess *session.Session) error {
		var err error
		if dir == domain.Backward {
			tr, err = s.engine.Back(ctx, sess.Answers, step)
		} else {
			tr, err = s.engine.Next(ctx, sess.Answers, step)
		}
		return err
	})
	return tr, err
}

// Reset clears the answers and pricing of a session.
func (s *Service) Reset(ctx context.Context, id string) (View, error) {
	var v View
	err := s.sessions.WithSession(ctx, id, func(ctx context.Context, sess *session.Session) error {
		sess.Answers.ResetToDefault(ctx)
		sess.SetQuote(nil)
		v = s.view(id, s.engine.Start(ctx), sess)
		return nil
	})
	return v, err
}

// DeleteSession forgets a session.
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	return s.sessions.Delete(ctx, id)
}

// LookupAddresses lists the addresses of a postcode.
func (s *Service) LookupAddresses(ctx context.Context, postcode string) ([]domain.Address, error) {
	return s.flow.LookupAddresses(ctx, postcode)
}

// SelectAddress sets the quote location of a session.
func (s *Service) SelectAddress(ctx context.Context, id string, addr domain.Address) error {
	return s.sessions.WithSession(ctx, id, func(ctx context.Context, sess *session.Session) error {
		return s.flow.SelectAddress(ctx, sess.Answers, addr)
	})
}

// SubmitQuote prices the session answers. A second submission for the same session
// while one is in flight fails with domain.ErrSubmissionInProgress instead of queueing.
func (s *Service) SubmitQuote(ctx context.Context, id string) (*quote.Quote, error) {
	release, err := s.flow.Reserve(id)
	if err != nil {
		return nil, err
	}
	defer release()

	var q *quote.Quote
	err = s.sessions.WithSession(ctx, id, func(ctx context.Context, sess *session.Session) error {
		var err error
		q, err = s.flow.Quote(ctx, sess.Answers)
		if err != nil {
			return err
		}
		sess.SetQuote(q)
		return nil
	})
	return q, err
}

// SelectPricing picks a plan of the last quote.
func (s *Service) SelectPricing(ctx context.Context, id, category, plan string) (domain.SelectedPricing, error) {
	var sel domain.SelectedPricing
	err := s.sessions.WithSession(ctx, id, func(ctx context.Context, sess *session.Session) error {
		var err error
		sel, err = s.flow.SelectPricing(ctx, sess.Answers, sess.Quote(), category, plan)
		return err
	})
	return sel, err
}

// SubmitContact sends the lead and starts the session over.
func (s *Service) SubmitContact(ctx context.Context, id string, contact validation.Contact) (ports.Lead, error) {
	var lead ports.Lead
	err := s.sessions.WithSession(ctx, id, func(ctx context.Context, sess *session.Session) error {
		var err error
		lead, err = s.flow.SubmitContact(ctx, sess.Answers, contact)
		if err != nil {
			return err
		}
		sess.SetQuote(nil)
		return nil
	})
	return lead, err
}
