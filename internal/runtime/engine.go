package runtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/quoteflow/internal/logging"
	"github.com/aretw0/quoteflow/pkg/domain"
	"github.com/aretw0/quoteflow/pkg/graph"
	"github.com/aretw0/quoteflow/pkg/validation"
)

// DefaultMaxSkips bounds a single skip chain.
const DefaultMaxSkips = 16

// Engine resolves transitions over a step graph.
type Engine struct {
	graph    *graph.Graph
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	maxSkips int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithMaxSkips overrides the skip-chain ceiling. Values below 1 are ignored.
func WithMaxSkips(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxSkips = n
		}
	}
}

// NewEngine creates an engine over g.
func NewEngine(g *graph.Graph, opts ...Option) *Engine {
	e := &Engine{
		graph:    g,
		logger:   logging.NewNop(),
		maxSkips: DefaultMaxSkips,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Graph returns the graph the engine walks.
func (e *Engine) Graph() *graph.Graph {
	return e.graph
}

// Start returns the initial step.
func (e *Engine) Start(ctx context.Context) domain.StepID {
	first := e.graph.First()
	e.emitEnter(ctx, first, "", "")
	return first
}

// Resolve computes the step to display after leaving current in direction dir.
//
// The rule of current is evaluated with current's own answer. While the candidate's
// display condition is false, the candidate is skipped and the skipped step's own rule
// (with its own answer) picks the next candidate. An empty result with a nil error means
// there is no further step in that direction.
func (e *Engine) Resolve(ctx context.Context, answers domain.Answers, current domain.StepID, dir domain.Direction) (domain.StepID, error) {
	id, err := e.resolve(ctx, answers, current, dir)
	if err != nil {
		e.logger.Warn("navigation aborted", "from", current, "direction", dir, "error", err)
		if e.hooks.OnNavigationError != nil {
			e.hooks.OnNavigationError(ctx, &domain.NavigationErrorEvent{
				EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventNavigationError},
				From:      current,
				Direction: dir,
				Err:       err,
			})
		}
		return "", err
	}
	if id != "" {
		e.emitEnter(ctx, id, current, dir)
	}
	return id, nil
}

func (e *Engine) resolve(ctx context.Context, answers domain.Answers, current domain.StepID, dir domain.Direction) (domain.StepID, error) {
	if !dir.Valid() {
		return "", validation.Invalid("direction", "unknown direction %q: use %s or %s", dir, domain.Forward, domain.Backward)
	}

	step, ok := e.graph.Lookup(current)
	if !ok {
		return "", &StepNotFoundError{StepID: current}
	}

	candidate := step.Rule(dir).Target(step.Value(answers), answers)

	var skipped []domain.StepID
	for candidate != "" {
		next, ok := e.graph.Lookup(candidate)
		if !ok {
			return "", &StepNotFoundError{StepID: candidate, From: current}
		}
		if next.Visible(answers) {
			break
		}
		if len(skipped) >= e.maxSkips {
			return "", &NavigationCycleError{From: current, Direction: dir, Limit: e.maxSkips, Skipped: skipped}
		}
		skipped = append(skipped, candidate)
		e.emitSkip(ctx, candidate, current, dir)

		candidate = next.Rule(dir).Target(next.Value(answers), answers)
	}

	e.logger.Debug("resolved step", "from", current, "direction", dir, "to", candidate, "skipped", len(skipped))
	return candidate, nil
}

func (e *Engine) emitEnter(ctx context.Context, id, from domain.StepID, dir domain.Direction) {
	if e.hooks.OnStepEnter == nil {
		return
	}
	e.hooks.OnStepEnter(ctx, &domain.StepEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventStepEnter},
		StepID:    id,
		From:      from,
		Direction: dir,
	})
}

func (e *Engine) emitSkip(ctx context.Context, id, from domain.StepID, dir domain.Direction) {
	if e.hooks.OnStepSkip == nil {
		return
	}
	e.hooks.OnStepSkip(ctx, &domain.StepEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventStepSkip},
		StepID:    id,
		From:      from,
		Direction: dir,
	})
}
