package quote

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/quoteflow/internal/logging"
	"github.com/aretw0/quoteflow/pkg/domain"
	"github.com/aretw0/quoteflow/pkg/ports"
	"github.com/aretw0/quoteflow/pkg/validation"
)

// AnswerStore is the view of the answer store the flow works on.
type AnswerStore interface {
	domain.Answers
	Set(ctx context.Context, path string, value any) error
	Cleaned() map[string]any
	Tree() map[string]any
	Snapshot() (domain.AnswerSet, error)
	ResetToDefault(ctx context.Context)
	Key() string
}

// Hooks observe collaborator calls. Any of them may be nil.
type Hooks struct {
	// OnQuote runs after every quote API call. scenario is "" when none applied or the call failed.
	OnQuote func(ctx context.Context, scenario string, duration time.Duration, err error)
	// OnLead runs after every lead submission attempt.
	OnLead func(ctx context.Context, err error)
}

// Flow drives the collaborator calls of a quote.
type Flow struct {
	addresses ports.AddressLookup
	quotes    ports.QuoteService
	leads     ports.LeadSink
	logger    *slog.Logger
	hooks     Hooks

	// in-flight submissions, keyed by answer store key
	inFlight sync.Map
}

// Option configures a Flow.
type Option func(*Flow)

// WithLogger sets the flow logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Flow) {
		f.logger = logger
	}
}

// WithHooks registers observability callbacks.
func WithHooks(hooks Hooks) Option {
	return func(f *Flow) {
		f.hooks = hooks
	}
}

// WithLeadSink sets where contact submissions are forwarded. Without one, leads are only logged.
func WithLeadSink(sink ports.LeadSink) Option {
	return func(f *Flow) {
		f.leads = sink
	}
}

// NewFlow creates a flow backed by the quote API.
func NewFlow(api ports.QuoteAPI, opts ...Option) *Flow {
	f := &Flow{
		addresses: api,
		quotes:    api,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// LookupAddresses validates and normalises the postcode before asking the API.
func (f *Flow) LookupAddresses(ctx context.Context, postcode string) ([]domain.Address, error) {
	normalised, err := validation.Postcode(postcode)
	if err != nil {
		return nil, err
	}
	addrs, err := f.addresses.LookupAddresses(ctx, normalised)
	if err != nil {
		f.logger.Warn("address lookup failed", "postcode", normalised, "error", err)
		return nil, fmt.Errorf("lookup addresses: %w", err)
	}
	f.logger.Debug("address lookup", "postcode", normalised, "results", len(addrs))
	return addrs, nil
}

// SelectAddress records the chosen address as the quote location.
func (f *Flow) SelectAddress(ctx context.Context, store AnswerStore, addr domain.Address) error {
	if addr.ID == "" {
		return validation.Invalid(domain.PathLocationID, "please select an address")
	}
	postcode, err := validation.Postcode(addr.Postcode)
	if err != nil {
		return err
	}
	for path, v := range map[string]any{
		domain.PathLocationID:          addr.ID,
		domain.PathLocationPostcode:    postcode,
		domain.PathLocationFullAddress: addr.FullAddress,
	} {
		if err := store.Set(ctx, path, v); err != nil {
			return err
		}
	}
	return nil
}

// SubmitQuote sends the cleaned answers to the quote API and returns the processed pricing.
// Only one submission per answer store may be in flight; a concurrent call fails fast
// with domain.ErrSubmissionInProgress.
func (f *Flow) SubmitQuote(ctx context.Context, store AnswerStore) (*Quote, error) {
	release, err := f.Reserve(store.Key())
	if err != nil {
		return nil, err
	}
	defer release()
	return f.Quote(ctx, store)
}

// Reserve marks a submission for key as in flight. It fails with
// domain.ErrSubmissionInProgress while an earlier reservation is held.
func (f *Flow) Reserve(key string) (release func(), err error) {
	if _, busy := f.inFlight.LoadOrStore(key, struct{}{}); busy {
		return nil, domain.ErrSubmissionInProgress
	}
	return func() { f.inFlight.Delete(key) }, nil
}

// Quote submits without taking a reservation. Callers that serialise
// submissions themselves use it together with Reserve.
func (f *Flow) Quote(ctx context.Context, store AnswerStore) (*Quote, error) {
	if v, _ := store.Get(domain.PathContractTermMonths); v == nil {
		return nil, validation.Invalid(domain.PathContractTermMonths, "please select a contract term before submitting")
	}
	if v, _ := store.Get(domain.PathLocationID); v == nil {
		return nil, validation.Invalid(domain.PathLocationID, "please select an address")
	}

	set, err := store.Snapshot()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	raw, err := f.quotes.SubmitQuote(ctx, store.Cleaned())
	var tree domain.PricingTree
	if err == nil {
		tree, err = ParsePricing(raw)
	}
	if err != nil {
		f.logger.Error("quote submission failed", "error", err)
		f.onQuote(ctx, "", time.Since(start), err)
		return nil, fmt.Errorf("submit quote: %w", err)
	}

	var scenario *Scenario
	if s, ok := DetermineScenario(set); ok {
		scenario = &s
		tree = s.Apply(tree)
	} else {
		f.logger.Warn("no pricing scenario matches the answers, prices used as returned")
	}

	q := buildQuote(tree, scenario)
	f.onQuote(ctx, scenarioName(scenario), time.Since(start), nil)
	f.logger.Info("quote received", "categories", len(q.Plans), "scenario", scenarioName(scenario))
	return q, nil
}

func (f *Flow) onQuote(ctx context.Context, scenario string, d time.Duration, err error) {
	if f.hooks.OnQuote != nil {
		f.hooks.OnQuote(ctx, scenario, d, err)
	}
}

func scenarioName(s *Scenario) string {
	if s == nil {
		return ""
	}
	return s.Name
}

// SelectPricing stores the chosen plan of q in the answers.
func (f *Flow) SelectPricing(ctx context.Context, store AnswerStore, q *Quote, category, plan string) (domain.SelectedPricing, error) {
	if q == nil {
		return domain.SelectedPricing{}, validation.Invalid(domain.PathSelectedPricing, "request a quote before choosing a plan")
	}
	p, ok := q.Plan(category, plan)
	if !ok {
		return domain.SelectedPricing{}, validation.Invalid(domain.PathSelectedPricing, "no %q plan in %q pricing", plan, category)
	}
	sel := p.Selection()
	if err := store.Set(ctx, domain.PathSelectedPricing, sel); err != nil {
		return domain.SelectedPricing{}, err
	}
	return sel, nil
}

// SubmitContact validates the contact form, forwards the lead and resets the answers.
// A failing lead sink is logged and does not fail the submission: the quote already
// went through and is not rolled back.
func (f *Flow) SubmitContact(ctx context.Context, store AnswerStore, contact validation.Contact) (ports.Lead, error) {
	contact = contact.Normalize()
	if err := validation.ValidateContact(contact); err != nil {
		return nil, err
	}

	for path, v := range map[string]any{
		domain.PathContactName:  contact.Name,
		domain.PathContactEmail: contact.Email,
		domain.PathContactPhone: contact.Phone,
	} {
		if err := store.Set(ctx, path, v); err != nil {
			return nil, err
		}
	}

	set, err := store.Snapshot()
	if err != nil {
		return nil, err
	}
	lead := FormatLead(set, store.Cleaned())

	if f.leads == nil {
		f.logger.Warn("no lead sink configured, lead dropped", "plan", lead["Selected_Plan"])
	} else {
		err := f.leads.SendLead(ctx, lead)
		if f.hooks.OnLead != nil {
			f.hooks.OnLead(ctx, err)
		}
		if err != nil {
			f.logger.Error("lead submission failed", "error", err)
		} else {
			f.logger.Info("lead submitted", "plan", lead["Selected_Plan"])
		}
	}

	store.ResetToDefault(ctx)
	return lead, nil
}
