package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/quoteflow"
	"github.com/aretw0/quoteflow/internal/logging"
	"github.com/aretw0/quoteflow/pkg/domain"
	"github.com/aretw0/quoteflow/pkg/ports"
	"github.com/aretw0/quoteflow/pkg/quote"
	"github.com/aretw0/quoteflow/pkg/validation"
)

// Service is the part of quoteflow.Service the runner drives.
type Service interface {
	CreateSession(ctx context.Context) (quoteflow.View, error)
	Resume(ctx context.Context, id string) (quoteflow.View, error)
	Show(ctx context.Context, id string, step domain.StepID) (quoteflow.View, error)
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

// Commands recognised at any question.
const (
	CmdBack  = ":back"
	CmdReset = ":reset"
	CmdQuit  = ":quit"
)

// ErrQuit is returned by a prompt when the user typed :quit.
var ErrQuit = errors.New("quit requested")

// ErrInputTimeout is returned when a prompt waited longer than the input timeout.
var ErrInputTimeout = errors.New("timed out waiting for input")

// Result describes how a run ended.
type Result struct {
	SessionID string
	// Resumed is true when an existing session was continued.
	Resumed bool
	// Completed is true when a lead was sent.
	Completed bool
	Lead      ports.Lead
}

// Runner walks a session through the questions, the address lookup, the quote and the contact form.
type Runner struct {
	Service Service

	// Handler is the strategy for IO. If nil, a text or JSON handler on stdio is used.
	Handler IOHandler

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	Headless     bool
	Renderer     ContentRenderer
	InputTimeout time.Duration

	signals *SignalManager
}

// NewRunner creates a Runner over svc.
func NewRunner(svc Service, opts ...Option) *Runner {
	r := &Runner{Service: svc, Logger: logging.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	if r.Logger == nil {
		r.Logger = logging.NewNop()
	}
	return r
}

func (r *Runner) resolveHandler() IOHandler {
	if r.Handler != nil {
		return r.Handler
	}
	if r.Headless {
		r.Handler = NewJSONHandler(os.Stdin, os.Stdout)
	} else {
		r.Handler = NewTextHandler(os.Stdin, os.Stdout, WithTextHandlerRenderer(r.Renderer))
	}
	return r.Handler
}

// LoadOrStart resumes the session id, or creates a new session when id is
// empty or unknown.
func LoadOrStart(ctx context.Context, svc Service, id string) (quoteflow.View, bool, error) {
	if id != "" {
		view, err := svc.Resume(ctx, id)
		if err == nil {
			return view, true, nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return quoteflow.View{}, false, err
		}
	}
	view, err := svc.CreateSession(ctx)
	return view, false, err
}

// Run drives the session until a lead is sent, the user quits, input ends or
// ctx is cancelled. Answers are saved as they are given, so quitting is not an error.
func (r *Runner) Run(ctx context.Context, sessionID string) (Result, error) {
	handler := r.resolveHandler()
	r.signals = NewSignalManager(ctx)
	defer r.signals.Stop()

	view, resumed, err := LoadOrStart(ctx, r.Service, sessionID)
	if err != nil {
		return Result{SessionID: sessionID}, err
	}
	res := Result{SessionID: view.ID, Resumed: resumed}
	log := r.Logger.With("session_id", view.ID)

	if resumed {
		_ = handler.SystemOutput(ctx, fmt.Sprintf("Resuming session %s at %s.", view.ID, view.Current))
	} else {
		_ = handler.SystemOutput(ctx, fmt.Sprintf("Started session %s.", view.ID))
	}
	log.Debug("runner started", "resumed", resumed, "step", view.Current)

	err = r.walk(ctx, handler, &res, view)
	switch {
	case err == nil:
		res.Completed = true
		log.Info("lead sent")
		return res, nil
	case errors.Is(err, ErrQuit), errors.Is(err, io.EOF), errors.Is(err, context.Canceled):
		_ = handler.SystemOutput(context.Background(),
			fmt.Sprintf("Progress saved. Resume with: quoteflow resume %s", res.SessionID))
		log.Info("runner stopped", "reason", err)
		return res, nil
	default:
		log.Error("runner failed", "error", err)
		return res, err
	}
}

func (r *Runner) walk(ctx context.Context, h IOHandler, res *Result, view quoteflow.View) error {
	for {
		if err := r.questions(ctx, h, res.SessionID, view.Current); err != nil {
			return err
		}
		if err := r.address(ctx, h, res.SessionID); err != nil {
			return err
		}
		q, err := r.Service.SubmitQuote(ctx, res.SessionID)
		if err != nil {
			if !r.recoverable(ctx, h, err) {
				return err
			}
			// Quote failures send the user back to the last question to adjust.
			view, err = r.Service.Resume(ctx, res.SessionID)
			if err != nil {
				return err
			}
			continue
		}
		if err := r.choosePlan(ctx, h, res.SessionID, q); err != nil {
			return err
		}
		lead, err := r.contact(ctx, h, res.SessionID)
		if err != nil {
			return err
		}
		res.Lead = lead
		return h.Output(ctx, Screen{
			Kind:      ScreenLead,
			SessionID: res.SessionID,
			Markdown:  LeadMarkdown(lead),
			Data:      lead,
		})
	}
}

// prompt reads one line under the signal context and the input timeout.
func (r *Runner) prompt(ctx context.Context, h IOHandler) (string, error) {
	if r.signals == nil {
		r.signals = NewSignalManager(ctx)
	}
	in := r.signals.Context()
	var cancel context.CancelFunc = func() {}
	if r.InputTimeout > 0 {
		in, cancel = context.WithTimeout(in, r.InputTimeout)
	}
	defer cancel()

	text, err := h.Input(in)
	if err != nil {
		r.signals.CheckRace()
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return "", ErrInputTimeout
		}
		if r.signals.Context().Err() != nil {
			return "", context.Canceled
		}
		return "", err
	}
	if strings.EqualFold(strings.TrimSpace(text), CmdQuit) {
		return "", ErrQuit
	}
	return text, nil
}

// recoverable reports err to the user when they can fix it by answering again.
func (r *Runner) recoverable(ctx context.Context, h IOHandler, err error) bool {
	var inputErr *validation.InputError
	var apiErr *quote.APIError
	switch {
	case errors.As(err, &inputErr):
		_ = h.SystemOutput(ctx, inputErr.Message)
	case errors.As(err, &apiErr):
		msg := apiErr.Message
		if len(apiErr.Issues) > 0 {
			msg += ": " + strings.Join(apiErr.Issues, "; ")
		}
		_ = h.SystemOutput(ctx, msg)
	case errors.Is(err, domain.ErrUpstream), errors.Is(err, domain.ErrSubmissionInProgress):
		_ = h.SystemOutput(ctx, err.Error())
	default:
		return false
	}
	return true
}

func (r *Runner) questions(ctx context.Context, h IOHandler, id string, current domain.StepID) error {
	for {
		view, err := r.Service.Show(ctx, id, current)
		if err != nil {
			return err
		}
		if err := h.Output(ctx, QuestionScreen(view)); err != nil {
			return err
		}
		text, err := r.prompt(ctx, h)
		if err != nil {
			return err
		}

		var tr quoteflow.Transition
		switch cmd := strings.ToLower(strings.TrimSpace(text)); cmd {
		case CmdBack:
			tr, err = r.Service.Navigate(ctx, id, current, domain.Backward)
		case CmdReset:
			var v quoteflow.View
			v, err = r.Service.Reset(ctx, id)
			tr = quoteflow.Transition{From: current, To: v.Current}
		case "":
			tr, err = r.Service.Navigate(ctx, id, current, domain.Forward)
		default:
			tr, err = r.Service.Answer(ctx, id, current, text)
		}
		if err != nil {
			if r.recoverable(ctx, h, err) {
				continue
			}
			return err
		}
		if tr.Terminal {
			return nil
		}
		current = tr.To
	}
}

func (r *Runner) address(ctx context.Context, h IOHandler, id string) error {
	for {
		view, err := r.Service.Show(ctx, id, domain.StepContractTerms)
		if err != nil {
			return err
		}
		existing, _ := lookupPath(view.Answers, domain.PathLocationPostcode)
		if err := h.Output(ctx, PostcodeScreen(id, existing)); err != nil {
			return err
		}
		text, err := r.prompt(ctx, h)
		if err != nil {
			return err
		}
		if strings.TrimSpace(text) == "" {
			if existing != nil && existing != "" {
				return nil
			}
			_ = h.SystemOutput(ctx, "A postcode is required.")
			continue
		}

		addrs, err := r.Service.LookupAddresses(ctx, text)
		if err != nil {
			if r.recoverable(ctx, h, err) {
				continue
			}
			return err
		}
		if len(addrs) == 0 {
			_ = h.SystemOutput(ctx, "No addresses found for that postcode.")
			continue
		}

		addr, ok, err := r.pickAddress(ctx, h, id, addrs)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if err := r.Service.SelectAddress(ctx, id, addr); err != nil {
			if r.recoverable(ctx, h, err) {
				continue
			}
			return err
		}
		return nil
	}
}

// pickAddress asks for a number from the list. An empty line goes back to the postcode.
func (r *Runner) pickAddress(ctx context.Context, h IOHandler, id string, addrs []domain.Address) (domain.Address, bool, error) {
	for {
		if err := h.Output(ctx, AddressScreen(id, addrs)); err != nil {
			return domain.Address{}, false, err
		}
		text, err := r.prompt(ctx, h)
		if err != nil {
			return domain.Address{}, false, err
		}
		if strings.TrimSpace(text) == "" {
			return domain.Address{}, false, nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil || n < 1 || n > len(addrs) {
			_ = h.SystemOutput(ctx, fmt.Sprintf("Enter a number between 1 and %d.", len(addrs)))
			continue
		}
		return addrs[n-1], true, nil
	}
}

func (r *Runner) choosePlan(ctx context.Context, h IOHandler, id string, q *quote.Quote) error {
	choices := PlanChoices(q)
	if len(choices) == 0 {
		return errors.New("quote has no plans")
	}
	for {
		if err := h.Output(ctx, QuoteScreen(id, q)); err != nil {
			return err
		}
		text, err := r.prompt(ctx, h)
		if err != nil {
			return err
		}
		n, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil || n < 1 || n > len(choices) {
			_ = h.SystemOutput(ctx, fmt.Sprintf("Enter a plan number between 1 and %d.", len(choices)))
			continue
		}
		p := choices[n-1]
		if _, err := r.Service.SelectPricing(ctx, id, p.Category, p.Name); err != nil {
			if r.recoverable(ctx, h, err) {
				continue
			}
			return err
		}
		return nil
	}
}

func (r *Runner) contact(ctx context.Context, h IOHandler, id string) (ports.Lead, error) {
	fields := []struct {
		name  string
		label string
	}{
		{"name", "Your name"},
		{"email", "Email address"},
		{"phone", "Phone number"},
	}
	for {
		var c validation.Contact
		for _, f := range fields {
			if err := h.Output(ctx, ContactScreen(id, f.name, f.label)); err != nil {
				return nil, err
			}
			text, err := r.prompt(ctx, h)
			if err != nil {
				return nil, err
			}
			switch f.name {
			case "name":
				c.Name = text
			case "email":
				c.Email = text
			case "phone":
				c.Phone = text
			}
		}
		lead, err := r.Service.SubmitContact(ctx, id, c)
		if err != nil {
			if r.recoverable(ctx, h, err) {
				continue
			}
			return nil, err
		}
		return lead, nil
	}
}
