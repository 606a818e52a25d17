// Package cli implements the panecraft command-line interface.
//
// Commands edit a design file (a JSON tree of layouts and widgets), preview
// it in the terminal, generate a ratatui program from it, sync it with a
// project store and run the HTTP API. The CLI is built using cobra and logs
// via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - new, add, delete, move, set, constraint, resize: Edit a design file
//   - show, preview, graph: Inspect a design as an outline, a terminal
//     mock-up or a Graphviz diagram
//   - edit: Interactive editor
//   - generate: Write main.rs and Cargo.toml
//   - project, login, logout, whoami: Saved projects and the local session
//   - serve: Run the HTTP API
//   - cache: Manage the generated-artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
//
// # Example
//
//	c := cli.New(os.Stderr, cli.LogInfo)
//	if err := c.RootCommand().ExecuteContext(ctx); err != nil {
//	    os.Exit(1)
//	}
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates the command logger. Timestamps look like
// "14:32:01.45"; at debug level every line also carries its caller.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		ReportCaller:    level <= log.DebugLevel,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times a command made of several steps.
type progress struct {
	logger *log.Logger
	start  time.Time
	last   time.Time
}

func newProgress(l *log.Logger) *progress {
	now := time.Now()
	return &progress{logger: l, start: now, last: now}
}

// step logs the end of one step at debug level with the time since the
// previous step.
func (p *progress) step(msg string, keyvals ...any) {
	now := time.Now()
	p.logger.Debug(msg, append(keyvals, "took", now.Sub(p.last).Round(time.Millisecond))...)
	p.last = now
}

// done logs msg with the total elapsed time, e.g.
// "Generated dashboard (12ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger attaches l to ctx for helpers that only receive a context.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
