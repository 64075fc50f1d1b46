package graph

import "github.com/aretw0/quoteflow/pkg/domain"

// StepBuilder provides a fluent API for configuring a step.
type StepBuilder struct {
	step    Step
	builder *Builder
}

// Add finishes this step and starts the next one.
func (s *StepBuilder) Add(id domain.StepID) *StepBuilder {
	return s.builder.Add(id)
}

// Build builds the whole graph.
func (s *StepBuilder) Build() (*Graph, error) {
	return s.builder.Build()
}

// MustBuild builds the whole graph, panicking on error.
func (s *StepBuilder) MustBuild() *Graph {
	return s.builder.MustBuild()
}

// Label sets the human-readable title.
func (s *StepBuilder) Label(label string) *StepBuilder {
	s.step.Label = label
	return s
}

// Selection stores a choice among options at path. No options means any non-empty text.
func (s *StepBuilder) Selection(path string, options ...string) *StepBuilder {
	s.step.Kind = KindSelection
	s.step.AnswerPath = path
	s.step.Options = options
	return s
}

// Dropdown is a Selection rendered as a list.
func (s *StepBuilder) Dropdown(path string, options ...string) *StepBuilder {
	s.step.Kind = KindDropdown
	s.step.AnswerPath = path
	s.step.Options = options
	return s
}

// OptionsFrom derives the valid choices from earlier answers.
func (s *StepBuilder) OptionsFrom(fn func(domain.Answers) []string) *StepBuilder {
	s.step.OptionsFunc = fn
	return s
}

// YesNo stores a boolean at path.
func (s *StepBuilder) YesNo(path string) *StepBuilder {
	s.step.Kind = KindYesNo
	s.step.AnswerPath = path
	return s
}

// Number stores a bounded integer at path.
func (s *StepBuilder) Number(path string, min, max int) *StepBuilder {
	s.step.Kind = KindNumber
	s.step.AnswerPath = path
	s.step.Min = &min
	s.step.Max = &max
	return s
}

// ContractTerm stores a term in months at path. Terms must be at least one month.
func (s *StepBuilder) ContractTerm(path string, options ...string) *StepBuilder {
	one := 1
	s.step.Kind = KindContractTerm
	s.step.AnswerPath = path
	s.step.Options = options
	s.step.Min = &one
	return s
}

// Optional allows the step to be left unanswered.
func (s *StepBuilder) Optional() *StepBuilder {
	s.step.Required = false
	return s
}

// When sets the display condition.
func (s *StepBuilder) When(cond Condition) *StepBuilder {
	s.step.Condition = cond
	return s
}

// Next sets a constant forward target. An empty id makes the step terminal.
func (s *StepBuilder) Next(target domain.StepID) *StepBuilder {
	s.step.Next = Rule{To: target}
	return s
}

// NextFunc sets a dynamic forward rule and the targets it may return.
func (s *StepBuilder) NextFunc(fn Resolver, targets ...domain.StepID) *StepBuilder {
	s.step.Next = Rule{Resolve: fn, Targets: targets}
	return s
}

// Prev sets a constant backward target. An empty id marks the initial step.
func (s *StepBuilder) Prev(target domain.StepID) *StepBuilder {
	s.step.Prev = Rule{To: target}
	return s
}

// PrevFunc sets a dynamic backward rule and the targets it may return.
func (s *StepBuilder) PrevFunc(fn Resolver, targets ...domain.StepID) *StepBuilder {
	s.step.Prev = Rule{Resolve: fn, Targets: targets}
	return s
}

// Terminal clears the forward rule.
func (s *StepBuilder) Terminal() *StepBuilder {
	s.step.Next = Rule{}
	return s
}
