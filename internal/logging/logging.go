package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Init installs the default logger. An explicit level wins over LOG_LEVEL;
// with neither set only errors are shown.
func Init(level string) {
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}

	logger := slog.New(
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: ParseLevel(level),
		}),
	)
	slog.SetDefault(logger)
}

// ParseLevel maps a level name to a slog level, defaulting to error.
func ParseLevel(l string) slog.Level {
	switch strings.ToLower(l) {
	case "dev", "development", "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
