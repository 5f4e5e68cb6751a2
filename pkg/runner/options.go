package runner

import (
	"log/slog"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.Logger = logger
		}
	}
}

// WithSignals makes SIGINT and SIGTERM stop the run.
func WithSignals(enabled bool) Option {
	return func(r *Runner) {
		r.HandleSignals = enabled
	}
}

// WithKeepOpen keeps the engine running after the programs finish.
func WithKeepOpen(keep bool) Option {
	return func(r *Runner) {
		r.KeepOpen = keep
	}
}
