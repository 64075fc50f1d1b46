package validator

import (
	"testing"

	"github.com/aretw0/quoteflow/pkg/domain"
	"github.com/aretw0/quoteflow/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateGraph_QuoteGraph(t *testing.T) {
	assert.NoError(t, ValidateGraph(graph.Quote()))
}

func TestLint(t *testing.T) {
	tests := []struct {
		name  string
		build func() *graph.Graph
		want  []Issue
	}{
		{
			name: "valid chain",
			build: func() *graph.Graph {
				return graph.New().
					Add("a").Next("b").
					Add("b").Prev("a").Terminal().
					MustBuild()
			},
		},
		{
			name: "broken link",
			build: func() *graph.Graph {
				return graph.New().
					Add("a").Next("ghost").
					MustBuild()
			},
			want: []Issue{
				{"a", `next target "ghost" does not exist`},
				{"a", "never reaches a terminal step"},
				{"a", "graph has no terminal step"},
			},
		},
		{
			name: "unreachable step",
			build: func() *graph.Graph {
				return graph.New().
					Add("a").Terminal().
					Add("orphan").Terminal().
					MustBuild()
			},
			want: []Issue{{"orphan", "unreachable from a"}},
		},
		{
			name: "dynamic rule without targets",
			build: func() *graph.Graph {
				return graph.New().
					Add("a").NextFunc(func(any, domain.Answers) domain.StepID { return "b" }).
					Add("b").Terminal().
					MustBuild()
			},
			want: []Issue{
				{"a", "dynamic next rule declares no targets"},
				{"b", "unreachable from a"},
				{"a", "never reaches a terminal step"},
			},
		},
		{
			name: "inconsistent back link",
			build: func() *graph.Graph {
				return graph.New().
					Add("a").Next("c").
					Add("b").Prev("a").Next("c").
					Add("c").Prev("b").Terminal().
					MustBuild()
			},
			want: []Issue{
				{"b", "unreachable from a"},
				{"b", `back target "a" never leads forward here`},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := Lint(tt.build())
			assert.ElementsMatch(t, tt.want, issues)
		})
	}
}

func TestValidateGraph_ListsIssues(t *testing.T) {
	g := graph.New().Add("a").Next("ghost").MustBuild()
	err := ValidateGraph(g)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "found 3 errors")
	assert.Contains(t, err.Error(), `a: next target "ghost" does not exist`)
}
