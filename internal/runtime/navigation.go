package runtime

import (
	"context"

	"github.com/aretw0/quoteflow/pkg/domain"
	"github.com/aretw0/quoteflow/pkg/validation"
)

// AnswerStore is the read/write view the engine needs to record answers.
type AnswerStore interface {
	domain.Answers
	Set(ctx context.Context, path string, value any) error
}

// Transition is the outcome of answering a step or going back.
// On any error To equals From: the user stays on the current step.
type Transition struct {
	From     domain.StepID `json:"from"`
	To       domain.StepID `json:"to"`
	Value    any           `json:"value,omitempty"`
	Terminal bool          `json:"terminal"`
}

// Answer extracts and validates raw input for step, records it and resolves the next step.
// Terminal is set when step has no further step, which for the quote graph means the
// answers are complete and ready to be submitted.
func (e *Engine) Answer(ctx context.Context, store AnswerStore, step domain.StepID, raw any) (Transition, error) {
	stay := Transition{From: step, To: step}

	s, ok := e.graph.Lookup(step)
	if !ok {
		return stay, &StepNotFoundError{StepID: step}
	}
	if !s.Visible(store) {
		return stay, validation.Invalid(string(step), "this question does not apply to the current answers")
	}

	value, err := s.Extract(raw)
	if err != nil {
		return stay, err
	}
	if err := s.Validate(value, store); err != nil {
		return stay, err
	}
	if err := store.Set(ctx, s.AnswerPath, value); err != nil {
		return stay, err
	}
	stay.Value = value

	next, err := e.Resolve(ctx, store, step, domain.Forward)
	if err != nil {
		return stay, err
	}
	if next == "" {
		return Transition{From: step, To: step, Value: value, Terminal: true}, nil
	}
	return Transition{From: step, To: next, Value: value}, nil
}

// Next moves forward from step using the answer already recorded for it.
// A missing or invalid answer blocks the move with an input error.
func (e *Engine) Next(ctx context.Context, answers domain.Answers, step domain.StepID) (Transition, error) {
	stay := Transition{From: step, To: step}

	s, ok := e.graph.Lookup(step)
	if !ok {
		return stay, &StepNotFoundError{StepID: step}
	}
	value := s.Value(answers)
	if err := s.Validate(value, answers); err != nil {
		return stay, err
	}
	stay.Value = value

	next, err := e.Resolve(ctx, answers, step, domain.Forward)
	if err != nil {
		return stay, err
	}
	if next == "" {
		stay.Terminal = true
		return stay, nil
	}
	return Transition{From: step, To: next, Value: value}, nil
}

// Back resolves the previous step. At the first step it stays put.
func (e *Engine) Back(ctx context.Context, answers domain.Answers, step domain.StepID) (Transition, error) {
	stay := Transition{From: step, To: step}

	prev, err := e.Resolve(ctx, answers, step, domain.Backward)
	if err != nil {
		return stay, err
	}
	if prev == "" {
		return stay, nil
	}
	return Transition{From: step, To: prev}, nil
}

// Resume reconstructs the step to show for a reloaded session.
//
// Steps are scanned in declaration order and the last one whose answer is meaningfully
// set is remembered. An answer is meaningfully set when the step is visible under the
// current answers, the value is neither null nor empty, and it passes the step's own
// validation (so a zero user count or an out-of-range bandwidth does not count, while a
// boolean false does). The result is the step after that one, falling back to the step
// itself when forward resolution dead-ends, and to the first step when nothing is set.
func (e *Engine) Resume(ctx context.Context, answers domain.Answers) domain.StepID {
	latest := e.LastCompleted(answers)
	if latest == "" {
		return e.Start(ctx)
	}

	next, err := e.Resolve(ctx, answers, latest, domain.Forward)
	if err != nil || next == "" {
		return latest
	}
	return next
}

// LastCompleted returns the latest step with a meaningfully set answer, or "".
func (e *Engine) LastCompleted(answers domain.Answers) domain.StepID {
	var latest domain.StepID
	for _, s := range e.graph.Steps() {
		if !s.Visible(answers) {
			continue
		}
		v := s.Value(answers)
		if v == nil {
			continue
		}
		if str, ok := v.(string); ok && str == "" {
			continue
		}
		if s.Validate(v, answers) != nil {
			continue
		}
		latest = s.ID
	}
	return latest
}
