package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/quoteflow"
	"github.com/aretw0/quoteflow/internal/presentation/tui"
	"github.com/aretw0/quoteflow/pkg/runner"
	"golang.org/x/term"
)

// RunOptions configures a terminal session.
type RunOptions struct {
	// SessionID resumes a saved session. Empty or unknown ids start a new one.
	SessionID string
	// JSON speaks JSON lines instead of rendered prompts.
	JSON     bool
	NoBanner bool

	// In and Out default to the process stdio.
	In  io.Reader
	Out io.Writer
}

// RunSession drives one wizard session on the terminal.
func RunSession(ctx context.Context, app *App, logger *slog.Logger, opts RunOptions) (runner.Result, error) {
	in, out := opts.In, opts.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}

	runnerOpts := []runner.Option{runner.WithLogger(logger)}
	if opts.JSON {
		runnerOpts = append(runnerOpts, runner.WithInputHandler(runner.NewJSONHandler(in, out)))
	} else {
		runnerOpts = append(runnerOpts, runner.WithInputHandler(runner.NewTextHandler(in, out,
			runner.WithTextHandlerRenderer(tui.NewRenderer()))))
		if !opts.NoBanner && isTerminal(out) {
			tui.PrintBanner(out, quoteflow.Version)
		}
	}

	res, err := runner.NewRunner(app.Service, runnerOpts...).Run(ctx, opts.SessionID)
	if err != nil {
		return res, fmt.Errorf("session %s: %w", res.SessionID, err)
	}
	logger.Debug("session finished", "session_id", res.SessionID, "completed", res.Completed)
	return res, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
