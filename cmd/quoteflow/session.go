package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/quoteflow/internal/cli"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage saved wizard sessions",
	Long:  `List, inspect and remove sessions kept in the configured store.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List saved sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cli.NewApp(cfg, logger, cli.AppOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		ids, err := a.Service.Sessions().List(cmd.Context())
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}
		if len(ids) == 0 {
			fmt.Println("No saved sessions found.")
			return nil
		}
		fmt.Println("Saved Sessions:")
		for _, id := range ids {
			fmt.Println("- " + id)
		}
		return nil
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Print the answers, resume step and quote of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cli.NewApp(cfg, logger, cli.AppOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		view, err := a.Service.Resume(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("load session %q: %w", args[0], err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove one or more sessions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cli.NewApp(cfg, logger, cli.AppOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		var errs []error
		for _, id := range args {
			if err := a.Service.DeleteSession(cmd.Context(), id); err != nil {
				errs = append(errs, fmt.Errorf("remove %q: %w", id, err))
				continue
			}
			fmt.Printf("Removed session '%s'\n", id)
		}
		return errors.Join(errs...)
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd, sessionInspectCmd, sessionRmCmd)
}
