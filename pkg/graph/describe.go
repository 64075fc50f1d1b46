package graph

import "github.com/aretw0/quoteflow/pkg/domain"

// StepInfo is the serialisable description of a step.
type StepInfo struct {
	ID          domain.StepID   `json:"id"`
	Label       string          `json:"label"`
	Kind        Kind            `json:"kind"`
	AnswerPath  string          `json:"answerPath"`
	Required    bool            `json:"required"`
	Options     []string        `json:"options,omitempty"`
	Min         *int            `json:"min,omitempty"`
	Max         *int            `json:"max,omitempty"`
	Conditional bool            `json:"conditional"`
	Next        []domain.StepID `json:"next,omitempty"`
	Prev        []domain.StepID `json:"prev,omitempty"`
}

// Describe returns the description of s. With non-nil answers, options reflect them.
func (s *Step) Describe(answers domain.Answers) StepInfo {
	return StepInfo{
		ID:          s.ID,
		Label:       s.Label,
		Kind:        s.Kind,
		AnswerPath:  s.AnswerPath,
		Required:    s.Required,
		Options:     s.AllowedOptions(answers),
		Min:         s.Min,
		Max:         s.Max,
		Conditional: s.Condition != nil,
		Next:        s.Next.PossibleTargets(),
		Prev:        s.Prev.PossibleTargets(),
	}
}

// Describe returns every step in declaration order.
func (g *Graph) Describe() []StepInfo {
	out := make([]StepInfo, 0, g.Len())
	for _, s := range g.Steps() {
		out = append(out, s.Describe(nil))
	}
	return out
}
