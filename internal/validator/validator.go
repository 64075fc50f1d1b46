package validator

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/quoteflow/pkg/domain"
	"github.com/aretw0/quoteflow/pkg/graph"
)

// Issue is one problem found in a step graph.
type Issue struct {
	Step    domain.StepID
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Step, i.Message)
}

// Lint inspects g without evaluating any condition or resolver. Dynamic rules
// are checked through the targets they declare.
//
// It reports targets that do not exist, dynamic rules with no declared targets,
// steps unreachable from the first step, steps that cannot reach a terminal step,
// and back links to steps that never lead forward to the step.
func Lint(g *graph.Graph) []Issue {
	var issues []Issue
	steps := g.Steps()

	for _, s := range steps {
		for _, dir := range []domain.Direction{domain.Forward, domain.Backward} {
			rule := s.Rule(dir)
			if rule.Dynamic() && len(rule.Targets) == 0 {
				issues = append(issues, Issue{s.ID, fmt.Sprintf("dynamic %s rule declares no targets", dir)})
			}
			for _, t := range rule.PossibleTargets() {
				if _, ok := g.Lookup(t); !ok {
					issues = append(issues, Issue{s.ID, fmt.Sprintf("%s target %q does not exist", dir, t)})
				}
			}
		}
	}

	reached := walk(g, []domain.StepID{g.First()}, func(s *graph.Step) []domain.StepID {
		return s.Next.PossibleTargets()
	})
	for _, s := range steps {
		if !reached[s.ID] {
			issues = append(issues, Issue{s.ID, "unreachable from " + string(g.First())})
		}
	}

	// Reverse edges, so terminal reachability is a walk back from the terminal steps.
	incoming := make(map[domain.StepID][]domain.StepID)
	var terminals []domain.StepID
	for _, s := range steps {
		targets := s.Next.PossibleTargets()
		if len(targets) == 0 && !s.Next.Dynamic() {
			terminals = append(terminals, s.ID)
		}
		for _, t := range targets {
			incoming[t] = append(incoming[t], s.ID)
		}
	}
	if len(terminals) == 0 {
		issues = append(issues, Issue{g.First(), "graph has no terminal step"})
	}
	finishing := walk(g, terminals, func(s *graph.Step) []domain.StepID {
		return incoming[s.ID]
	})
	for _, s := range steps {
		if reached[s.ID] && !finishing[s.ID] {
			issues = append(issues, Issue{s.ID, "never reaches a terminal step"})
		}
	}

	for _, s := range steps {
		for _, p := range s.Prev.PossibleTargets() {
			prev, ok := g.Lookup(p)
			if !ok {
				continue
			}
			if !slices.Contains(prev.Next.PossibleTargets(), s.ID) {
				issues = append(issues, Issue{s.ID, fmt.Sprintf("back target %q never leads forward here", p)})
			}
		}
	}
	return issues
}

func walk(g *graph.Graph, from []domain.StepID, edges func(*graph.Step) []domain.StepID) map[domain.StepID]bool {
	seen := make(map[domain.StepID]bool)
	queue := slices.Clone(from)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if seen[id] {
			continue
		}
		step, ok := g.Lookup(id)
		if !ok {
			continue
		}
		seen[id] = true
		for _, t := range edges(step) {
			if !seen[t] {
				queue = append(queue, t)
			}
		}
	}
	return seen
}

// ValidateGraph returns an error listing every issue Lint finds, or nil.
func ValidateGraph(g *graph.Graph) error {
	issues := Lint(g)
	if len(issues) == 0 {
		return nil
	}
	lines := make([]string, len(issues))
	for i, is := range issues {
		lines[i] = is.String()
	}
	return fmt.Errorf("found %d errors:\n- %s", len(issues), strings.Join(lines, "\n- "))
}
