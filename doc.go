/*
Package quoteflow is a multi-step quote configurator for leased-line circuits and
their optional security services.

The wizard is a graph of steps. Each step stores one answer in a nested answer tree,
declares how to reach the next and previous step, and may carry a display condition.
Moving between steps skips every step whose condition is false under the current
answers, so a single-circuit quote never sees the dual-circuit questions. A session
can be reloaded at any time: the step to show is reconstructed from the answers alone.

Once the last step is answered the answers are sent to the remote pricing API, the
returned options are grouped into plans, and a chosen plan plus contact details are
forwarded to the CRM as a lead.

# Usage

	blobs := memory.NewStore()
	api := quoteapi.New("https://pricing.example.com/api")

	svc := quoteflow.New(blobs, api, quoteflow.WithLeadSink(api))

	view, _ := svc.CreateSession(ctx)
	tr, err := svc.Answer(ctx, view.ID, view.Current, "single")

Sessions persist in any ports.BlobStore: memory, file, Redis, Badger or SQLite.
The same service backs the HTTP API, the MCP server and the terminal wizard of the
quoteflow command.
*/
package quoteflow
