/*
Package observability provides tools for monitoring plan execution.

It turns the runner's lifecycle hooks into structured log lines (LogHooks) and
Prometheus metrics (Metrics), and combines several hook sets into one
(MultiHooks).
*/
package observability
