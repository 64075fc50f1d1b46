package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/quoteflow/internal/cli"
	presentation "github.com/aretw0/quoteflow/internal/presentation/graph"
	"github.com/aretw0/quoteflow/pkg/graph"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the wizard step graph",
	Long: `Prints the step graph as a Mermaid diagram (graph TD) or as JSON.
With --session, answered steps and the current step are highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		sessionID, _ := cmd.Flags().GetString("session")

		g := graph.Quote()
		steps := g.Describe()

		switch format {
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(steps)
		case "mermaid":
		default:
			return fmt.Errorf("unknown format %q: use mermaid or json", format)
		}

		var overlay *presentation.GraphOverlay
		if sessionID != "" {
			a, err := cli.NewApp(cfg, logger, cli.AppOptions{})
			if err != nil {
				return err
			}
			defer a.Close()
			view, err := a.Service.Resume(cmd.Context(), sessionID)
			if err != nil {
				return err
			}
			overlay = &presentation.GraphOverlay{CurrentStep: view.Current}
			for _, s := range steps {
				if answered(view.Answers, s.AnswerPath) && s.ID != view.Current {
					overlay.VisitedSteps = append(overlay.VisitedSteps, s.ID)
				}
			}
		}

		fmt.Print(presentation.GenerateMermaid(steps, overlay))
		return nil
	},
}

func answered(tree map[string]any, path string) bool {
	var cur any = tree
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return false
		}
		cur = m[part]
	}
	return cur != nil && cur != ""
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("format", "f", "mermaid", "Output format: mermaid or json")
	graphCmd.Flags().String("session", "", "Highlight the progress of this session")
}
