// Package logging builds the process-wide structured logger used by every
// pipeline component. Log output goes to stderr so a CSV run can still pipe
// stdout cleanly.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/shivam060404/News-Aggregation-System/internal/config"
)

// New returns a logger writing to stderr in the configured format. At debug
// level the handler also records source file positions.
func New(cfg config.LoggingConfig) (*slog.Logger, error) {
	return NewWithWriter(os.Stderr, cfg)
}

// NewWithWriter is New with an explicit destination, for tests and callers
// that capture log output.
func NewWithWriter(w io.Writer, cfg config.LoggingConfig) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.Level <= slog.LevelDebug,
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q (want json or text)", cfg.Format)
	}

	return slog.New(handler), nil
}
