/*
Package observability turns engine lifecycle hooks into Prometheus metrics
and structured log lines.

Hooks run on the engine goroutine, so every hook here only increments
counters or writes a log record and never blocks.
*/
package observability
