/*
PURPOSE:
  Provides a structured logger for codefix-bench.
  Wraps slog for consistent output.

REQUIREMENTS:
  User-specified:
  - "Sane" CLI output. Not spammy.

  Implementation-discovered:
  - Needs to support Info/Error levels, Debug behind --verbose.
  - Logs go to stderr so stdout stays clean for results and progress.

ARCHITECTURE INTEGRATION:
  - Used everywhere.

ERROR HANDLING:
  - N/A

IMPLEMENTATION RULES:
  - Use `log/slog` (Go 1.21+).

USAGE:
  output.Logger.Info("message", "key", "value")

SELF-HEALING INSTRUCTIONS:
  - Ensure Go 1.21+ is used.

RELATED FILES:
  - internal/cli/root.go (flags that call Configure)

MAINTENANCE:
  - None.
*/

package output

import (
	"io"
	"log/slog"
	"os"
)

var Logger *slog.Logger

var logWriter io.Writer = os.Stderr

func init() {
	Logger = slog.New(slog.NewTextHandler(logWriter, nil))
}

// LogWriter returns the destination of the current handler, for components
// (like HTTP access logs) that write plain lines next to Logger.
func LogWriter() io.Writer {
	return logWriter
}

// SetLogger allows overriding the default logger (e.g. for testing or config changes)
func SetLogger(l *slog.Logger) {
	Logger = l
}

// Configure replaces Logger with a text or JSON handler writing to w.
func Configure(w io.Writer, verbose, jsonFormat bool) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}

	var h slog.Handler
	if jsonFormat {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	logWriter = w
	SetLogger(slog.New(h))
}

// Discard silences logging, mostly for tests and the terminal UI.
func Discard() {
	logWriter = io.Discard
	SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
