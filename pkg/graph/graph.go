package graph

import (
	"errors"
	"fmt"
	"slices"

	"github.com/aretw0/quoteflow/pkg/domain"
)

// Graph is an immutable set of steps in declaration order.
// Declaration order is also the resume priority order: later steps are more specific.
type Graph struct {
	steps map[domain.StepID]*Step
	order []domain.StepID
}

// Lookup finds a step by id.
func (g *Graph) Lookup(id domain.StepID) (*Step, bool) {
	s, ok := g.steps[id]
	return s, ok
}

// First returns the initial step.
func (g *Graph) First() domain.StepID {
	return g.order[0]
}

// Order returns step ids in declaration order.
func (g *Graph) Order() []domain.StepID {
	return slices.Clone(g.order)
}

// Steps returns steps in declaration order.
func (g *Graph) Steps() []*Step {
	out := make([]*Step, len(g.order))
	for i, id := range g.order {
		out[i] = g.steps[id]
	}
	return out
}

// Len returns the number of steps.
func (g *Graph) Len() int {
	return len(g.order)
}

// Builder manages the graph construction.
type Builder struct {
	steps map[domain.StepID]*StepBuilder
	order []domain.StepID
}

// New creates a new graph builder.
func New() *Builder {
	return &Builder{
		steps: make(map[domain.StepID]*StepBuilder),
	}
}

// Add starts a new step. If the step already exists, it returns the existing builder.
func (b *Builder) Add(id domain.StepID) *StepBuilder {
	if sb, ok := b.steps[id]; ok {
		return sb
	}
	sb := &StepBuilder{
		step:    Step{ID: id, Kind: KindSelection, Required: true},
		builder: b,
	}
	b.steps[id] = sb
	b.order = append(b.order, id)
	return sb
}

// Build freezes the graph. Targets are not checked here; see internal/validator.
func (b *Builder) Build() (*Graph, error) {
	if len(b.order) == 0 {
		return nil, errors.New("graph has no steps")
	}

	g := &Graph{
		steps: make(map[domain.StepID]*Step, len(b.order)),
		order: slices.Clone(b.order),
	}
	for _, id := range b.order {
		if id == "" {
			return nil, fmt.Errorf("step #%d has an empty id", len(g.steps)+1)
		}
		step := b.steps[id].step
		g.steps[id] = &step
	}
	return g, nil
}

// MustBuild is Build for static graphs known to be well formed.
func (b *Builder) MustBuild() *Graph {
	g, err := b.Build()
	if err != nil {
		panic(err)
	}
	return g
}
