package observability

import (
	"context"
	"errors"
	"time"

	"github.com/aretw0/quoteflow/internal/runtime"
	"github.com/aretw0/quoteflow/pkg/domain"
	"github.com/aretw0/quoteflow/pkg/quote"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of the wizard.
type Metrics struct {
	StepEnters       *prometheus.CounterVec
	StepSkips        *prometheus.CounterVec
	NavigationErrors *prometheus.CounterVec
	Quotes           *prometheus.CounterVec
	QuoteDuration    prometheus.Histogram
	Leads            *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StepEnters: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quoteflow_step_enter_total",
			Help: "Steps resolved for display.",
		}, []string{"step"}),
		StepSkips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quoteflow_step_skip_total",
			Help: "Steps skipped because their display condition was false.",
		}, []string{"step"}),
		NavigationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quoteflow_navigation_errors_total",
			Help: "Aborted transitions by kind.",
		}, []string{"kind"}),
		Quotes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quoteflow_quotes_total",
			Help: "Quote API submissions by scenario and outcome.",
		}, []string{"scenario", "outcome"}),
		QuoteDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "quoteflow_quote_duration_seconds",
			Help:    "Duration of quote API submissions.",
			Buckets: prometheus.DefBuckets,
		}),
		Leads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quoteflow_leads_total",
			Help: "CRM lead submissions by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.StepEnters, m.StepSkips, m.NavigationErrors, m.Quotes, m.QuoteDuration, m.Leads)
	return m
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func navigationErrorKind(err error) string {
	var cycle *runtime.NavigationCycleError
	var missing *runtime.StepNotFoundError
	switch {
	case errors.As(err, &cycle):
		return "cycle"
	case errors.As(err, &missing):
		return "step_not_found"
	default:
		return "other"
	}
}

// LifecycleHooks records engine events.
func (m *Metrics) LifecycleHooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(_ context.Context, e *domain.StepEvent) {
			m.StepEnters.WithLabelValues(string(e.StepID)).Inc()
		},
		OnStepSkip: func(_ context.Context, e *domain.StepEvent) {
			m.StepSkips.WithLabelValues(string(e.StepID)).Inc()
		},
		OnNavigationError: func(_ context.Context, e *domain.NavigationErrorEvent) {
			m.NavigationErrors.WithLabelValues(navigationErrorKind(e.Err)).Inc()
		},
	}
}

// QuoteHooks records quote API and CRM calls.
func (m *Metrics) QuoteHooks() quote.Hooks {
	return quote.Hooks{
		OnQuote: func(_ context.Context, scenario string, d time.Duration, err error) {
			if scenario == "" {
				scenario = "none"
			}
			m.Quotes.WithLabelValues(scenario, outcome(err)).Inc()
			m.QuoteDuration.Observe(d.Seconds())
		},
		OnLead: func(_ context.Context, err error) {
			m.Leads.WithLabelValues(outcome(err)).Inc()
		},
	}
}
