package quoteflow

import _ "embed"

// Version is the release version of quoteflow.
//
//go:embed VERSION
var Version string
