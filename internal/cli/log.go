// Package cli implements the taskweb command-line interface.
//
// # Commands
//
//   - render: lay out an input document and write svg, html, png, pdf, dot
//     or json artifacts, optionally re-rendering whenever the input changes
//   - levels: print the level assignment and detected cycles as a table
//   - palette: print the link type colours
//   - view: explore the diagram in the terminal (drag, click, reset)
//   - serve: run the HTTP API
//   - cache: inspect and clear the artifact cache
//   - config: show, locate or initialise the config file
//
// # Logging
//
// All commands log through one charmbracelet logger; --verbose (-v)
// switches it to debug level. The logger is passed through
// context.Context so helpers can log without extra parameters.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, e.g. "Rendered 3 artifacts (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default() if none
// is attached.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
