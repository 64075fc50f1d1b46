package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/quoteflow/pkg/domain"
	stepgraph "github.com/aretw0/quoteflow/pkg/graph"
)

// GraphOverlay contains session state to visualize on the graph.
type GraphOverlay struct {
	VisitedSteps []domain.StepID
	CurrentStep  domain.StepID
}

// GenerateMermaid produces a Mermaid flowchart from step descriptions.
// Shapes follow the step kind:
// - First step: ((Circle))
// - Yes/no: {Rhombus}
// - Numbers and terms: [/Parallelogram/]
// - Choices: [Rectangle]
// Conditional steps get a dashed border. Answer-dependent next rules are drawn
// as dotted arrows to every declared target. Steps without a next rule end the flow.
func GenerateMermaid(steps []stepgraph.StepInfo, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	var conditional []string
	for i, step := range steps {
		safeID := sanitizeMermaidID(string(step.ID))

		opener, closer := "[", "]"
		switch {
		case i == 0:
			opener, closer = "((", "))"
		case step.Kind == stepgraph.KindYesNo:
			opener, closer = "{", "}"
		case step.Kind == stepgraph.KindNumber || step.Kind == stepgraph.KindContractTerm:
			opener, closer = "[/", "/]"
		}

		label := strings.ReplaceAll(step.Label, "\"", "'")
		if label == "" {
			label = string(step.ID)
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, label, closer)
		if step.Conditional {
			conditional = append(conditional, safeID)
		}

		arrow := "-->"
		if len(step.Next) > 1 {
			arrow = "-.->"
		}
		for _, to := range step.Next {
			fmt.Fprintf(&sb, "    %s %s %s\n", safeID, arrow, sanitizeMermaidID(string(to)))
		}
		if len(step.Next) == 0 {
			fmt.Fprintf(&sb, "    %s --> done((\"Quote\"))\n", safeID)
		}
	}

	if len(conditional) > 0 {
		sb.WriteString("\n    classDef conditional stroke-dasharray: 5 5;\n")
		fmt.Fprintf(&sb, "    class %s conditional;\n", strings.Join(conditional, ","))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text for contrast on light fills in both themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.VisitedSteps {
			safeID := sanitizeMermaidID(string(id))
			if !seen[safeID] && safeID != "" {
				seen[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}

		if overlay.CurrentStep != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(string(overlay.CurrentStep)))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_").Replace(id)
}
