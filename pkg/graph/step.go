package graph

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/aretw0/quoteflow/pkg/domain"
	"github.com/aretw0/quoteflow/pkg/validation"
)

// Kind is the value-extraction rule of a step.
type Kind string

const (
	KindSelection    Kind = "selection"
	KindDropdown     Kind = "dropdown"
	KindYesNo        Kind = "yesno"
	KindNumber       Kind = "number"
	KindContractTerm Kind = "contractTerm"
)

// Condition decides whether a step is relevant for the current answers.
// Conditions are evaluated fresh on every traversal and must not cache.
type Condition func(domain.Answers) bool

// Resolver picks a target from the step's own answer value.
// The answers are passed for rules that depend on upstream choices.
// Returning "" means "no step in this direction".
type Resolver func(value any, answers domain.Answers) domain.StepID

// Rule is a navigation edge: a constant target, a resolver, or neither (null).
type Rule struct {
	To      domain.StepID
	Resolve Resolver
	// Targets lists what Resolve may return. Used for linting and drawing only.
	Targets []domain.StepID
}

// Dynamic reports whether the rule depends on answers.
func (r Rule) Dynamic() bool {
	return r.Resolve != nil
}

// Target evaluates the rule.
func (r Rule) Target(value any, answers domain.Answers) domain.StepID {
	if r.Resolve != nil {
		return r.Resolve(value, answers)
	}
	return r.To
}

// PossibleTargets returns every declared target of the rule.
func (r Rule) PossibleTargets() []domain.StepID {
	if r.Resolve != nil {
		return slices.Clone(r.Targets)
	}
	if r.To == "" {
		return nil
	}
	return []domain.StepID{r.To}
}

// Step is one wizard screen.
type Step struct {
	ID         domain.StepID
	Label      string
	Kind       Kind
	AnswerPath string
	Required   bool
	Options    []string
	// OptionsFunc overrides Options when the valid choices depend on earlier answers.
	OptionsFunc func(domain.Answers) []string
	Min, Max    *int
	Condition   Condition
	Next, Prev  Rule
}

// Visible evaluates the display condition. Steps without one are always shown.
func (s *Step) Visible(answers domain.Answers) bool {
	if s.Condition == nil {
		return true
	}
	return s.Condition(answers)
}

// Rule returns the navigation rule for dir.
func (s *Step) Rule(dir domain.Direction) Rule {
	if dir == domain.Backward {
		return s.Prev
	}
	return s.Next
}

// Value reads the step's answer.
func (s *Step) Value(answers domain.Answers) any {
	if s.AnswerPath == "" {
		return nil
	}
	v, _ := answers.Get(s.AnswerPath)
	return v
}

// AllowedOptions returns the choices valid under the current answers.
func (s *Step) AllowedOptions(answers domain.Answers) []string {
	if s.OptionsFunc != nil && answers != nil {
		return s.OptionsFunc(answers)
	}
	return s.Options
}

// Extract turns raw user input into the step's typed value.
// Strings are trimmed, choices are matched loosely against the options,
// yes/no accepts y/yes/true/1 and n/no/false/0, and contract terms accept text like "36 Months".
func (s *Step) Extract(raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}

	switch s.Kind {
	case KindYesNo:
		return extractBool(s, raw)
	case KindNumber:
		return extractInt(s, raw)
	case KindContractTerm:
		return extractTerm(s, raw)
	default:
		str, ok := raw.(string)
		if !ok {
			return nil, validation.Invalid(s.field(), "expected text, got %T", raw)
		}
		str = strings.TrimSpace(str)
		if str == "" {
			return nil, nil
		}
		if m, ok := matchOption(str, s.Options); ok {
			return m, nil
		}
		return str, nil
	}
}

// Validate checks an extracted value against the step's rules.
func (s *Step) Validate(value any, answers domain.Answers) error {
	if isEmpty(value) {
		if s.Required {
			return validation.Invalid(s.field(), "this field is required")
		}
		return nil
	}

	switch s.Kind {
	case KindYesNo:
		if _, ok := value.(bool); !ok {
			return validation.Invalid(s.field(), "expected yes or no")
		}
	case KindNumber, KindContractTerm:
		n, ok := value.(int)
		if !ok {
			return validation.Invalid(s.field(), "please enter a valid number")
		}
		if s.Min != nil && n < *s.Min {
			return validation.Invalid(s.field(), "value must be at least %d", *s.Min)
		}
		if s.Max != nil && n > *s.Max {
			return validation.Invalid(s.field(), "value must not exceed %d", *s.Max)
		}
		if s.Kind == KindContractTerm && len(s.Options) > 0 && !offersTerm(s.Options, n) {
			return validation.Invalid(s.field(), "a %d month term is not offered, choose one of %s", n, strings.Join(s.Options, ", "))
		}
	default:
		str, ok := value.(string)
		if !ok {
			return validation.Invalid(s.field(), "expected text")
		}
		opts := s.AllowedOptions(answers)
		if len(opts) > 0 && !slices.Contains(opts, str) {
			return validation.Invalid(s.field(), "%q is not one of %s", str, strings.Join(opts, ", "))
		}
	}
	return nil
}

func (s *Step) field() string {
	if s.AnswerPath != "" {
		return s.AnswerPath
	}
	return string(s.ID)
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	str, ok := v.(string)
	return ok && str == ""
}

func compact(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

func matchOption(in string, options []string) (string, bool) {
	c := compact(in)
	for _, o := range options {
		if compact(o) == c {
			return o, true
		}
	}
	return "", false
}

func extractBool(s *Step, raw any) (any, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "y", "yes", "true", "1":
			return true, nil
		case "n", "no", "false", "0":
			return false, nil
		case "":
			return nil, nil
		}
	}
	return nil, validation.Invalid(s.field(), "expected yes or no, got %v", raw)
}

func extractInt(s *Step, raw any) (any, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v == float64(int(v)) {
			return int(v), nil
		}
	case string:
		str := strings.TrimSpace(v)
		if str == "" {
			return nil, nil
		}
		if n, err := strconv.Atoi(str); err == nil {
			return n, nil
		}
	case fmt.Stringer:
		if n, err := strconv.Atoi(v.String()); err == nil {
			return n, nil
		}
	}
	return nil, validation.Invalid(s.field(), "please enter a valid number")
}

func extractTerm(s *Step, raw any) (any, error) {
	str, ok := raw.(string)
	if !ok {
		return extractInt(s, raw)
	}
	if strings.TrimSpace(str) == "" {
		return nil, nil
	}
	n, ok := termMonths(str)
	if !ok {
		return nil, validation.Invalid(s.field(), "unrecognised contract term %q", str)
	}
	return n, nil
}

// termMonths parses "36", "36 Months" or "3 Years" into months.
func termMonths(str string) (int, bool) {
	fields := strings.Fields(str)
	if len(fields) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, false
	}
	if len(fields) > 1 && strings.HasPrefix(strings.ToLower(fields[1]), "year") {
		n *= 12
	}
	return n, true
}

func offersTerm(options []string, months int) bool {
	for _, o := range options {
		if n, ok := termMonths(o); ok && n == months {
			return true
		}
	}
	return false
}
