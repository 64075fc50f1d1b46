package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/quoteflow/internal/cli"
	quotehttp "github.com/aretw0/quoteflow/pkg/adapters/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the wizard as a JSON API. Sessions live in the configured store, so
several replicas can share a redis store.

Metrics are exposed on /metrics, or on a separate listener when --metrics-addr is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			cfg.HTTP.Addr, _ = cmd.Flags().GetString("addr")
		}
		if cmd.Flags().Changed("metrics-addr") {
			cfg.HTTP.MetricsAddr, _ = cmd.Flags().GetString("metrics-addr")
		}

		a, err := cli.NewApp(cfg, logger, cli.AppOptions{Metrics: true, LogSteps: true})
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		servers := []*http.Server{{
			Addr: cfg.HTTP.Addr,
			Handler: quotehttp.NewHandler(a.Service,
				quotehttp.WithLogger(logger),
				quotehttp.WithMetrics(a.Registry),
			),
			ReadHeaderTimeout: 10 * time.Second,
		}}
		if cfg.HTTP.MetricsAddr != "" {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{}))
			servers = append(servers, &http.Server{
				Addr:              cfg.HTTP.MetricsAddr,
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
			})
		}

		g, gctx := errgroup.WithContext(ctx)
		for _, srv := range servers {
			g.Go(func() error {
				logger.Info("listening", "addr", srv.Addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
		}
		g.Go(func() error {
			<-gctx.Done()
			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			var errs []error
			for _, srv := range servers {
				if err := srv.Shutdown(shutdownCtx); err != nil {
					logger.Warn("graceful shutdown did not complete", "addr", srv.Addr, "error", err)
					errs = append(errs, srv.Close())
				}
			}
			return errors.Join(errs...)
		})

		if err := g.Wait(); err != nil {
			return err
		}
		logger.Info("server stopped gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address of the API listener")
	serveCmd.Flags().String("metrics-addr", "", "Separate address for /metrics")
}
