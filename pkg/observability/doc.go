/*
Package observability provides tools for monitoring the quote wizard.

It turns engine lifecycle hooks and quote flow hooks into structured log lines and
Prometheus metrics.
*/
package observability
