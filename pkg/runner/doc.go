/*
Package runner drives a quote session from a terminal or a pipe.

The runner walks the wizard questions, looks up the site address, shows the
quoted plans and collects the contact details. Every answer goes through the
quoteflow service, so a run interrupted at any point can be resumed later
with the same session ID.

# Key Components

  - Runner: the interactive loop over a Service.
  - IOHandler: decouples how screens are shown and input is read.
  - TextHandler: markdown screens and a "> " prompt for interactive use.
  - JSONHandler: one JSON object per screen for scripted use.

# Commands

While answering, ":back" returns to the previous question, ":reset" clears
every answer and ":quit" stops the run. An empty line keeps the current answer.

# Usage

	r := runner.NewRunner(svc,
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout,
			runner.WithTextHandlerRenderer(tui.NewRenderer()))),
	)

	res, err := r.Run(ctx, sessionID)
	if err != nil {
		log.Fatal(err)
	}
*/
package runner
