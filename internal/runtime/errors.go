package runtime

import (
	"fmt"
	"strings"

	"github.com/aretw0/quoteflow/pkg/domain"
)

// StepNotFoundError is returned when navigation lands on an undeclared step.
type StepNotFoundError struct {
	StepID domain.StepID
	// From is the step the transition started at.
	From domain.StepID
}

func (e *StepNotFoundError) Error() string {
	if e.From == "" || e.From == e.StepID {
		return fmt.Sprintf("step %q not found", e.StepID)
	}
	return fmt.Sprintf("step %q not found (navigating from %q)", e.StepID, e.From)
}

func (e *StepNotFoundError) Unwrap() error {
	return domain.ErrStepNotFound
}

// NavigationCycleError is returned when a skip chain exceeds the ceiling.
type NavigationCycleError struct {
	From      domain.StepID
	Direction domain.Direction
	Limit     int
	Skipped   []domain.StepID
}

func (e *NavigationCycleError) Error() string {
	chain := make([]string, len(e.Skipped))
	for i, id := range e.Skipped {
		chain[i] = string(id)
	}
	return fmt.Sprintf("navigation cycle from %q (%s): more than %d skips [%s]",
		e.From, e.Direction, e.Limit, strings.Join(chain, " -> "))
}

func (e *NavigationCycleError) Unwrap() error {
	return domain.ErrNavigationCycle
}
