package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/quoteflow/internal/config"
	"github.com/aretw0/quoteflow/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "quoteflow",
	Short: "Quoteflow is a circuit and security quote wizard",
	Long: `Quoteflow walks a customer through the questions needed to price a leased
line and its security add-ons, fetches the quote and hands the lead to sales.

It runs as an interactive terminal wizard, an HTTP API or an MCP server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		applyFlags(cmd, &loaded)
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded

		level := logging.ParseLevel(cfg.Log.Level)
		if cfg.Log.Format == "json" {
			logger = logging.NewJSON(os.Stderr, level)
		} else {
			logger = logging.New(level)
		}
		slog.SetDefault(logger)
		return nil
	},
}

// applyFlags lets explicit flags win over the file and the environment.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		c.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		c.Log.Format, _ = flags.GetString("log-format")
	}
	if flags.Changed("api-url") {
		c.API.BaseURL, _ = flags.GetString("api-url")
	}
	if flags.Changed("store") {
		c.Store.Driver, _ = flags.GetString("store")
	}
	if flags.Changed("store-path") {
		c.Store.Path, _ = flags.GetString("store-path")
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Config file (default "+config.DefaultFile+" if present)")
	pf.String("log-level", "info", "Log level: debug, info, warn or error")
	pf.String("log-format", "text", "Log format: text or json")
	pf.String("api-url", "", "Base URL of the pricing API")
	pf.String("store", "", "Answer store: memory, file, redis, badger or sqlite")
	pf.String("store-path", "", "Directory or file of the file, badger and sqlite stores")
}
