// Package obs contains observability utilities such as logging.
package obs

import (
	"log/slog"
	"os"
)

// InitLogger configures the process-wide structured logger with a JSON
// handler and returns it.
func InitLogger() *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}
