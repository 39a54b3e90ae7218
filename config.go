package kflow

import (
	"log/slog"

	"github.com/go-logr/logr"
)

// Option is a function that configures an Environment
type Option func(*Environment)

// WithDefaultParallelism sets the parallelism of operators that do not ask
// for their own.
var WithDefaultParallelism = func(n int) Option {
	return func(e *Environment) {
		e.parallelism = n
	}
}

// WithDefaultMaxParallelism sets the key-group count of operators that do
// not ask for their own. 0 derives it from each operator's parallelism.
var WithDefaultMaxParallelism = func(n int) Option {
	return func(e *Environment) {
		e.maxParallelism = n
	}
}

// WithLog sets the logger for the environment
var WithLog = func(log *slog.Logger) Option {
	return func(e *Environment) {
		e.log = log
	}
}

// WithLogr sets a logr logger for the environment
var WithLogr = func(log logr.Logger) Option {
	return func(e *Environment) {
		e.log = slog.New(logr.ToSlogHandler(log))
	}
}

// NullWriter is a writer that discards all data
type NullWriter struct{}

func (NullWriter) Write(p []byte) (int, error) { return len(p), nil }

// NullLogger creates a logger that discards all output
func NullLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(NullWriter{}, nil))
}
