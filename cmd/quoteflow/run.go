package main

import (
	"github.com/aretw0/quoteflow/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the quote wizard in the terminal",
	Long: `Asks the wizard questions one at a time, then looks up the site address,
shows the quote and sends the lead.

Answers are saved as you go. Type :quit to stop and resume later with
"quoteflow resume <session-id>".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("session")
		return runWizard(cmd, id)
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume <session-id>",
	Short: "Continue a saved wizard session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWizard(cmd, args[0])
	},
}

func runWizard(cmd *cobra.Command, sessionID string) error {
	jsonMode, _ := cmd.Flags().GetBool("json")
	noBanner, _ := cmd.Flags().GetBool("no-banner")

	app, err := cli.NewApp(cfg, logger, cli.AppOptions{})
	if err != nil {
		return err
	}
	defer app.Close()

	_, err = cli.RunSession(cmd.Context(), app, logger, cli.RunOptions{
		SessionID: sessionID,
		JSON:      jsonMode,
		NoBanner:  noBanner,
	})
	return err
}

func init() {
	for _, c := range []*cobra.Command{runCmd, resumeCmd} {
		c.Flags().Bool("json", false, "Speak JSON lines on stdin/stdout instead of prompts")
		c.Flags().Bool("no-banner", false, "Do not print the banner")
		rootCmd.AddCommand(c)
	}
	runCmd.Flags().String("session", "", "Resume this session if it exists")

	// The wizard is the default action.
	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
