// Package log builds the loggers used by kflow programs.
//
// The library itself logs through log/slog (see kflow.WithLog and
// kflow.WithLogr). Programs pick one of the factories here and hand the
// result to the environment.
package log

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zerologr"
	"github.com/lmittmann/tint"
	"github.com/rs/zerolog"
)

// Output is the destination used by the factories: plain stderr when
// running under Kubernetes, stdout otherwise.
func Output() io.Writer {
	if inCluster() {
		return os.Stderr
	}
	return os.Stdout
}

func inCluster() bool {
	return os.Getenv("KUBERNETES_SERVICE_HOST") != ""
}

// New returns a zerolog logger. Outside Kubernetes it writes human
// readable console output, inside JSON lines.
func New() *zerolog.Logger {
	return NewWithWriter(Output(), inCluster())
}

func NewWithWriter(w io.Writer, json bool) *zerolog.Logger {
	output := w
	if !json {
		output = zerolog.ConsoleWriter{Out: w, TimeFormat: "2006-01-02T15:04:05.999Z07:00"}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano

	logger := zerolog.New(output).With().Timestamp().Logger()
	return &logger
}

// Logr bridges a zerolog logger to logr, for kflow.WithLogr.
func Logr(l *zerolog.Logger) logr.Logger {
	return zerologr.New(l)
}

// NewSlog returns a colored slog logger at the given level. Inside
// Kubernetes it falls back to JSON.
func NewSlog(level slog.Level) *slog.Logger {
	return NewSlogWithWriter(Output(), level, inCluster())
}

func NewSlogWithWriter(w io.Writer, level slog.Level, json bool) *slog.Logger {
	if json {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(tint.NewHandler(w, &tint.Options{Level: level, TimeFormat: time.Kitchen, NoColor: !isTerminal(w)}))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
