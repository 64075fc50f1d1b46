/*
Package graph declares the wizard's step graph.

A Graph is a static, immutable table of Steps. Each step knows where its answer lives in the
answer tree, how to turn raw user input into a typed value, how to validate that value, when it
is relevant (its display condition) and where to go next or back. Navigation rules are either
constant targets or resolver functions of the step's own answer, so edges are only known at
traversal time.

Graphs are built with a fluent Builder:

	g, err := graph.New().
		Add("color").Selection("prefs.color", "red", "blue").Next("size").
		Add("size").Number("prefs.size", 1, 10).Prev("color").
		Build()

The navigation engine in internal/runtime walks these graphs; this package holds no traversal logic.
*/
package graph
