package runner

import (
	"log/slog"
	"time"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithHeadless makes the default handler speak JSON lines instead of text.
func WithHeadless(headless bool) Option {
	return func(r *Runner) {
		r.Headless = headless
	}
}

// WithRenderer configures the markdown renderer of the default text handler.
func WithRenderer(renderer ContentRenderer) Option {
	return func(r *Runner) {
		r.Renderer = renderer
	}
}

// WithInputTimeout bounds how long a single prompt waits. Zero waits forever.
func WithInputTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.InputTimeout = d
	}
}
