package main

import (
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
)

// newLogger builds the process-wide *slog.Logger: a text handler for an
// interactive terminal, a JSON handler otherwise, matching onedrive-go's
// isatty-based choice of output formatting. An explicit format
// ("text"/"json") or FITSYNC_LOG_FORMAT overrides the detection.
func newLogger(format string, verbose bool) *slog.Logger {
	if format == "" {
		format = os.Getenv("FITSYNC_LOG_FORMAT")
	}
	if format == "" {
		if isatty.IsTerminal(os.Stdout.Fd()) {
			format = "text"
		} else {
			format = "json"
		}
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
