package logger

import (
	"log/slog"
	"os"
)

// New returns the process-wide structured logger. JSON output keeps log
// shippers happy; clinical text must never appear in log attributes.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
