// Package log provides rokt's structured logging: a global zerolog.Logger
// plus a small composable Context builder for the correlation fields the
// request pipeline actually carries — component, per-connection id,
// dataset name, and command verb/status (see SPEC_FULL.md §7).
package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the global logger instance, configured once by Init.
var Logger zerolog.Logger

// Level is a logging verbosity threshold.
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// Config holds logging configuration.
type Config struct {
	Level      Level
	JSONOutput bool
	Output     io.Writer
}

// Init configures the global Logger. JSONOutput selects zerolog's native
// JSON encoder; otherwise output goes through a human-readable console
// writer, matching the two modes an operator actually chooses between at
// startup (a terminal during development, a log collector in production).
func Init(cfg Config) {
	var level zerolog.Level
	switch cfg.Level {
	case DebugLevel:
		level = zerolog.DebugLevel
	case InfoLevel:
		level = zerolog.InfoLevel
	case WarnLevel:
		level = zerolog.WarnLevel
	case ErrorLevel:
		level = zerolog.ErrorLevel
	default:
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	if cfg.JSONOutput {
		Logger = zerolog.New(output).With().Timestamp().Logger()
	} else {
		Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	}
}

// Context accumulates the structured fields a log line ends up carrying.
// Every accepted connection, dataset lookup, and executed command adds
// its own field to the same chain rather than each call site building an
// independent child logger, so a single request's log lines share the
// fields that tie them together (§7's "per-request correlation id...
// carried through the task and into its log lines").
type Context struct {
	ctx zerolog.Context
}

// Component starts a Context tagged with the originating package or
// subsystem, e.g. "pipeline", "storage", "config", "main".
func Component(component string) Context {
	return Context{ctx: Logger.With().Str("component", component)}
}

// Conn tags the context with the per-connection correlation id generated
// once when a connection is accepted (google/uuid) and threaded through
// that connection's task. The id appears only in log lines, never in the
// wire envelope (§7).
func (c Context) Conn(connID string) Context {
	return Context{ctx: c.ctx.Str("conn_id", connID)}
}

// Dataset tags the context with the dataset name a storage operation
// targets.
func (c Context) Dataset(name string) Context {
	return Context{ctx: c.ctx.Str("dataset", name)}
}

// Command tags the context with a command's leading keyword and the
// status code of the envelope it produced — the pairing §7 requires on
// the one log line a completed command emits.
func (c Context) Command(verb string, status int) Context {
	return Context{ctx: c.ctx.Str("verb", verb).Int("status", status)}
}

// Logger finalizes the accumulated fields into a usable zerolog.Logger.
func (c Context) Logger() zerolog.Logger {
	return c.ctx.Logger()
}
