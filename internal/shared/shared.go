// package shared defines shared helpers
package shared

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// LoggerOpts controls the level and output format of a logger built by [NewLogger].
type LoggerOpts struct {
	Level  string // debug, info, warn, error (default info)
	Format string // text or json (default text)
	Caller bool   // report the calling file:line
}

// NewLogger creates a new [log.Logger] instance with the specified [io.Writer], with timestamps enabled.
//
// The writer defaults to [os.Stderr]. A nil opts yields an info-level text logger.
func NewLogger(w io.Writer, opts *LoggerOpts) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	if opts == nil {
		opts = &LoggerOpts{}
	}

	logOpts := log.Options{ReportTimestamp: true, ReportCaller: opts.Caller, Level: ParseLevel(opts.Level)}
	if strings.EqualFold(opts.Format, "json") {
		logOpts.Formatter = log.JSONFormatter
	}
	return log.NewWithOptions(w, logOpts)
}

// WithLogger creates a child [log.Logger] with the specified key-value pairs added to all log entries.
func WithLogger(l *log.Logger, kv ...any) *log.Logger {
	return l.With(kv...)
}

// ParseLevel maps a level name to a [log.Level], falling back to [log.InfoLevel].
func ParseLevel(s string) log.Level {
	if s == "" {
		return log.InfoLevel
	}
	lvl, err := log.ParseLevel(strings.ToLower(s))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// GenerateID generates a new v4 [uuid.UUID] as a string
func GenerateID() string {
	return uuid.New().String()
}
