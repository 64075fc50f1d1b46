package main

import (
	"fmt"

	"github.com/aretw0/quoteflow/internal/validator"
	"github.com/aretw0/quoteflow/pkg/graph"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the step graph for consistency",
	Long:  `Reports dangling targets, unreachable steps, steps that never finish and back links that do not match.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validator.ValidateGraph(graph.Quote()); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Println("Graph is valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
