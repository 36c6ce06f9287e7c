package telemetry

import (
	"log/slog"
	"os"
)

// InitSlog installs the default logger, `verbose` turns on debug output
// (which also enables request dumps in restyutil).
func InitSlog(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}
