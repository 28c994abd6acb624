// Package cli implements the acknowledge command-line interface.
//
// The root command reads a Cargo.toml, runs the acknowledgement pipeline
// and writes ACKNOWLEDGEMENTS.md. The CLI is built using cobra, with every
// flag also settable through ACKNOWLEDGE_* environment variables or
// ~/.config/acknowledge/config.yaml (via viper). A .env file in the working
// directory is loaded at startup.
//
// # Commands
//
//   - acknowledge [path]: Generate the acknowledgements file
//   - cache clear, cache path: Maintain the lookup and contributor cache
//   - serve: Run the HTTP API
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// logs every pipeline stage and repository fetch. Loggers are passed
// through context.Context.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
)

// newLogger returns a logger writing to w with "15:04:05.00" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext falls back to log.Default when ctx carries no logger.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
